package handlers

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"deckpress/internal/middleware"
	"deckpress/internal/models"
	"deckpress/internal/session"
	"deckpress/internal/store"
)

// otpIssuer is the issuer shown in authenticator apps.
const otpIssuer = "DeckPress"

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions  *session.Store
	userStore *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, userStore *store.UserStore) *Auth {
	return &Auth{
		sessions:  sessions,
		userStore: userStore,
	}
}

// otpSetup is returned while a user still has to scan their secret.
type otpSetup struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
	QRCode string `json:"qr_png"` // base64 PNG
}

type authResponse struct {
	User        *models.User `json:"user"`
	OTPVerified bool         `json:"otp_verified"`
	OTPSetup    *otpSetup    `json:"otp_setup,omitempty"`
}

// newOTPSetup builds the provisioning URL and QR code for secret.
func newOTPSetup(email, secret string) (*otpSetup, error) {
	u := fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s",
		otpIssuer, url.PathEscape(email), secret, otpIssuer)
	png, err := qrcode.Encode(u, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("qr code: %w", err)
	}
	return &otpSetup{Secret: secret, URL: u, QRCode: base64.StdEncoding.EncodeToString(png)}, nil
}

// startSession creates a session that still needs the OTP step.
func (a *Auth) startSession(w http.ResponseWriter, r *http.Request, user *models.User) error {
	_, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		OTPVerified: false,
	})
	return err
}

// Register creates an editor account with a fresh TOTP secret and logs
// the user in pending OTP confirmation.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if msg := validateCredentials(req.Email, req.Password, req.DisplayName); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	existing, err := a.userStore.FindByEmail(req.Email)
	if err != nil {
		internalError(w, "register lookup failed", err)
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "An account with this email already exists.")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      otpIssuer,
		AccountName: req.Email,
	})
	if err != nil {
		internalError(w, "totp generate failed", err)
		return
	}

	user, err := a.userStore.Create(req.Email, req.Password, strings.TrimSpace(req.DisplayName), models.RoleEditor, key.Secret())
	if err != nil {
		internalError(w, "create user failed", err)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		internalError(w, "qr code generation failed", err)
		return
	}

	if err := a.startSession(w, r, user); err != nil {
		internalError(w, "session create failed", err)
		return
	}

	slog.Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, authResponse{
		User: user,
		OTPSetup: &otpSetup{
			Secret: key.Secret(),
			URL:    key.URL(),
			QRCode: base64.StdEncoding.EncodeToString(qrPNG),
		},
	})
}

// Login checks the password and opens a session awaiting the OTP code.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.userStore.FindByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		internalError(w, "login lookup failed", err)
		return
	}
	if user == nil || !a.userStore.CheckPassword(user, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}

	if err := a.startSession(w, r, user); err != nil {
		internalError(w, "session create failed", err)
		return
	}

	resp := authResponse{User: user}
	// Users who never confirmed a code get their secret again.
	if user.NeedsOTPSetup() && user.TOTPSecret != nil {
		setup, err := newOTPSetup(user.Email, *user.TOTPSecret)
		if err != nil {
			internalError(w, "otp setup failed", err)
			return
		}
		resp.OTPSetup = setup
	}
	writeJSON(w, http.StatusOK, resp)
}

// VerifyOTP validates the TOTP code and completes authentication. The
// first valid code also enables OTP on the account.
func (a *Auth) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil {
		internalError(w, "user lookup for otp failed", fmt.Errorf("user %s: %v", sess.UserID, err))
		return
	}
	if user.TOTPSecret == nil {
		writeError(w, http.StatusConflict, "No one-time password is configured for this account.")
		return
	}
	if !totp.Validate(strings.TrimSpace(req.Code), *user.TOTPSecret) {
		writeError(w, http.StatusUnauthorized, "Invalid code. Please try again.")
		return
	}

	if !user.TOTPEnabled {
		if err := a.userStore.EnableTOTP(user.ID); err != nil {
			internalError(w, "enable totp failed", err)
			return
		}
		user.TOTPEnabled = true
	}

	sess.OTPVerified = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		internalError(w, "session update failed", err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{User: user, OTPVerified: true})
}

// ResetPassword sets a new password for a user who proves possession of
// their authenticator. It needs no session.
func (a *Auth) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"new_password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validatePassword(req.NewPassword); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	user, err := a.userStore.FindByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		internalError(w, "reset lookup failed", err)
		return
	}
	// Same answer for unknown users and wrong codes.
	if user == nil || !user.TOTPEnabled || user.TOTPSecret == nil ||
		!totp.Validate(strings.TrimSpace(req.Code), *user.TOTPSecret) {
		writeError(w, http.StatusUnauthorized, "Invalid email or code.")
		return
	}

	if err := a.userStore.UpdatePassword(user.ID, req.NewPassword); err != nil {
		internalError(w, "password update failed", err)
		return
	}
	// Existing sessions were opened with the old password.
	revoked, err := a.sessions.DestroyUser(r.Context(), user.ID)
	if err != nil {
		slog.Warn("session revoke failed", "user_id", user.ID, "error", err)
	}
	slog.Info("password reset", "user_id", user.ID, "sessions_revoked", revoked)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the current session.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.SessionFromCtx(r.Context()))
}

// CSRFToken hands the per-browser token to the client so it can echo it
// in the X-CSRF-Token header.
func CSRFToken(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"token": middleware.CSRFTokenFromCtx(r.Context())})
}

package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"deckpress/internal/models"
)

// Validation limits for account and presentation fields.
const (
	maxTitleLen       = 300
	maxAuthorLen      = 200
	maxBandTextLen    = 500
	maxEmailLen       = 254
	maxDisplayNameLen = 100
	minPasswordLen    = 8
	maxPasswordLen    = 72 // bcrypt ignores anything longer
	maxMessageLen     = 1_000
	maxFilenameLen    = 200
)

// validateCredentials checks registration inputs and returns the first
// error found.
func validateCredentials(email, password, displayName string) string {
	if msg := validateEmail(email); msg != "" {
		return msg
	}
	if msg := validatePassword(password); msg != "" {
		return msg
	}
	if strings.TrimSpace(displayName) == "" {
		return "Display name is required."
	}
	if utf8.RuneCountInString(displayName) > maxDisplayNameLen {
		return "Display name is too long (max 100 characters)."
	}
	return ""
}

func validateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "Email is required."
	}
	if len(email) > maxEmailLen {
		return "Email is too long."
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return "Email is not valid."
	}
	return ""
}

func validatePassword(password string) string {
	n := utf8.RuneCountInString(password)
	if n < minPasswordLen {
		return "Password must be at least 8 characters."
	}
	if len(password) > maxPasswordLen {
		return "Password is too long (max 72 bytes)."
	}
	return ""
}

// validateTitle checks a presentation title. Empty titles are allowed
// and fall back to the template name.
func validateTitle(title string) string {
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	return ""
}

// validateMeta checks the user-editable document meta.
func validateMeta(m models.Meta) string {
	if msg := validateTitle(m.Title); msg != "" {
		return msg
	}
	if utf8.RuneCountInString(m.Author) > maxAuthorLen {
		return "Author is too long (max 200 characters)."
	}
	switch m.SlideSize {
	case "", "16:9", "4:3":
	default:
		return "Slide size must be 16:9 or 4:3."
	}
	if utf8.RuneCountInString(m.Header.Text) > maxBandTextLen ||
		utf8.RuneCountInString(m.Footer.Text) > maxBandTextLen {
		return "Header and footer text is limited to 500 characters."
	}
	return ""
}

// validateFilename checks the optional export filename.
func validateFilename(name string) string {
	if utf8.RuneCountInString(name) > maxFilenameLen {
		return "Filename is too long (max 200 characters)."
	}
	return ""
}

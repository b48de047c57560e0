// Package router sets up all HTTP routes and middleware chains for the
// DeckPress API. Routes are grouped into public, session-only and fully
// authenticated groups with matching middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"deckpress/internal/handlers"
	"deckpress/internal/middleware"
)

// Options configures the router.
type Options struct {
	Sessions middleware.SessionGetter
	Auth     *handlers.Auth
	Decks    *handlers.Decks

	// AuthLimiter throttles the credential endpoints. Nil disables it.
	AuthLimiter *middleware.RateLimiter

	// SecureCookies marks the CSRF cookie Secure (production).
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(opts.Sessions))

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	// Health check: no auth, no CSRF.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewCSRF(opts.SecureCookies))

		r.Get("/auth/csrf", handlers.CSRFToken)
		r.Get("/shared/{hash}", opts.Decks.Shared)

		// Credential endpoints, rate limited per client IP.
		r.Group(func(r chi.Router) {
			if opts.AuthLimiter != nil {
				r.Use(opts.AuthLimiter.Middleware)
			}
			r.Post("/auth/register", opts.Auth.Register)
			r.Post("/auth/login", opts.Auth.Login)
			r.Post("/auth/reset-password", opts.Auth.ResetPassword)
		})

		// Session present, OTP not yet verified.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			if opts.AuthLimiter != nil {
				r.With(opts.AuthLimiter.Middleware).Post("/auth/verify-otp", opts.Auth.VerifyOTP)
			} else {
				r.Post("/auth/verify-otp", opts.Auth.VerifyOTP)
			}
			r.Post("/auth/logout", opts.Auth.Logout)
			r.Get("/auth/me", opts.Auth.Me)
		})

		// Fully authenticated API.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.RequireOTP)

			d := opts.Decks
			r.Get("/templates", d.Templates)
			r.Get("/formats", d.Formats)

			r.Get("/me/recent", d.Recent)
			r.Get("/me/favorites", d.Favorites)
			r.Put("/me/favorites/{id}", d.AddFavorite)
			r.Delete("/me/favorites/{id}", d.RemoveFavorite)

			r.Route("/presentations", func(r chi.Router) {
				r.Get("/", d.List)
				r.Post("/", d.Create)
				r.Post("/import", d.Import)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", d.Get)
					r.Delete("/", d.Delete)
					r.Patch("/meta", d.UpdateMeta)

					// Slides
					r.Post("/slides", d.AddSlide)
					r.Post("/slides/reorder", d.ReorderSlides)
					r.Patch("/slides/{index}", d.UpdateSlide)
					r.Delete("/slides/{index}", d.DeleteSlide)
					r.Post("/slides/{index}/duplicate", d.DuplicateSlide)
					r.Post("/slides/{index}/layout", d.ApplyLayout)
					r.Post("/slides/{index}/copy", d.CopySlide)
					r.Post("/slides/{index}/select", d.SelectSlide)
					r.Put("/slides/{index}/animations", d.SetAnimation)
					r.Delete("/slides/{index}/animations/{target}", d.RemoveAnimation)

					// History
					r.Post("/paste", d.Paste)
					r.Post("/undo", d.Undo)
					r.Post("/redo", d.Redo)
					r.Post("/commit", d.Commit)

					// Persistence
					r.Post("/save", d.Save)
					r.Get("/revisions", d.ListRevisions)
					r.Post("/revisions/{rid}/restore", d.RestoreRevision)

					r.Get("/export/{format}", d.Export)
					r.Post("/share", d.Share)
				})
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"not found"}`))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	w.Write([]byte(`{"error":"method not allowed"}`))
}

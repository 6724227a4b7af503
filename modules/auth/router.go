package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/memberboard/handler"
	"github.com/dmitrymomot/memberboard/pkg/binder"
)

// Handler returns the HTTP surface of the auth module, intended to be
// mounted under /auth.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()

	r.Post("/register", handler.Wrap(s.handleRegister,
		handler.WithBinder(binder.JSON()),
		handler.WithErrorHandler(errorResponse),
	))

	// Confirmation links arrive as GET with a query token; API clients may
	// also POST the token in the body. One handler serves both.
	r.HandleFunc("/confirm-email", handler.Wrap(s.handleConfirmEmail,
		handler.WithBinder(binder.JSON()),
		handler.WithBinder(binder.Query()),
		handler.WithErrorHandler(errorResponse),
	))

	r.Post("/resend-confirmation", handler.Wrap(s.handleResendConfirmation,
		handler.WithBinder(binder.JSON()),
		handler.WithErrorHandler(errorResponse),
	))

	r.Post("/login", handler.Wrap(s.handleLogin,
		handler.WithBinder(binder.JSON()),
		handler.WithErrorHandler(errorResponse),
	))

	r.Post("/password-reset", handler.Wrap(s.handleRequestPasswordReset,
		handler.WithBinder(binder.JSON()),
		handler.WithErrorHandler(errorResponse),
	))

	r.Post("/password-reset/confirm", handler.Wrap(s.handleCompletePasswordReset,
		handler.WithBinder(binder.JSON()),
		handler.WithErrorHandler(errorResponse),
	))

	return r
}

// MeHandler serves the authenticated user profile. It must be mounted
// behind Middleware and RequireMember.
func (s *Service) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := CurrentUser(r.Context())
		if !ok {
			writeUnauthorized(w, "authentication required")
			return
		}
		_ = handler.JSON(user.Public()).Render(w, r)
	}
}

// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/meethub/internal/app/system/auth"
	"github.com/dalemusser/meethub/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes returns the subrouter mounted under /api/users. Registration sits
// behind the login limiter; reads are open.
func Routes(h *Handler, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{username}", h.Get)
	r.With(limiter.Middleware).Post("/", h.Register)
	return r
}

// LoginRoutes returns the subrouter mounted under /api/login.
func LoginRoutes(h *Handler, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()
	r.With(limiter.Middleware).Post("/", h.Login)
	return r
}

// MeRoutes returns the subrouter mounted under /api/me.
func MeRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.With(auth.RequireSignedIn).Get("/", h.Me)
	return r
}

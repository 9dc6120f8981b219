// internal/app/features/meetings/routes.go
package meetings

import (
	"github.com/dalemusser/meethub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the subrouter mounted under /api/meetings. Reads are open;
// every mutation requires a signed-in caller and checks identity before any
// store access.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{meetingID}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Post("/", h.Create)
		r.Delete("/{meetingID}", h.Delete)
		r.Post("/{meetingID}/comments", h.AddComment)
		r.Delete("/{meetingID}/comments/{commentID}", h.RemoveComment)
	})

	return r
}

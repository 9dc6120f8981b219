// internal/app/features/uploads/routes.go
package uploads

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the subrouter mounted under /api/uploads.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Ingest)
	return r
}

// FileRoutes returns the subrouter mounted under /files for retrieving
// stored artifacts.
func FileRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{filename}", func(w http.ResponseWriter, req *http.Request) {
		h.ServeFile(w, req, chi.URLParam(req, "filename"))
	})
	return r
}

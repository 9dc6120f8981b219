// internal/app/features/uploads/handler.go
package uploads

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/dalemusser/meethub/internal/app/system/apierr"
	"github.com/dalemusser/meethub/internal/app/system/timeouts"
	uploadstore "github.com/dalemusser/meethub/internal/app/system/uploads"
	"go.uber.org/zap"
)

type Handler struct {
	Store *uploadstore.Store
	Log   *zap.Logger
}

// NewHandler constructs an uploads Handler over the given store.
func NewHandler(store *uploadstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Log: logger}
}

type uploadResponse struct {
	Filename string `json:"filename"`
}

// Ingest handles POST /api/uploads.
//
// The multipart body is walked part by part and the first file part is
// streamed straight into the store, so request size never dictates memory
// use. Anonymous-callable.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	mr, err := r.MultipartReader()
	if err != nil {
		apierr.Write(w, apierr.Validation("expected a multipart upload"), h.Log)
		return
	}

	part, err := nextFilePart(mr)
	if err != nil {
		apierr.Write(w, apierr.Validation("multipart body has no file part"), h.Log)
		return
	}
	defer part.Close()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	stored, err := h.Store.Save(ctx, part.FileName(), part)
	if err != nil {
		apierr.Write(w, apierr.Storage("failed to store upload", err), h.Log)
		return
	}
	apierr.WriteJSON(w, http.StatusCreated, uploadResponse{Filename: stored})
}

// ServeFile handles GET /files/{filename}, streaming a stored artifact back
// to the client.
func (h *Handler) ServeFile(w http.ResponseWriter, r *http.Request, filename string) {
	path, err := h.Store.Path(filename)
	if err != nil {
		apierr.Write(w, apierr.NotFound("file not found"), h.Log)
		return
	}
	if _, err := os.Stat(path); err != nil {
		apierr.Write(w, apierr.NotFound("file not found"), h.Log)
		return
	}
	http.ServeFile(w, r, path)
}

// nextFilePart advances the multipart reader to the first part that carries
// a filename, skipping plain form fields.
func nextFilePart(mr *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, errors.New("no file part in multipart body")
		}
		if err != nil {
			return nil, err
		}
		if part.FileName() != "" {
			return part, nil
		}
		part.Close()
	}
}

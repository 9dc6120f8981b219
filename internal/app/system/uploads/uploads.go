// Package uploads persists uploaded image streams to the local uploads
// directory.
//
// A stored artifact is named <unix-millis>_<original-filename>. The incoming
// stream is copied straight to disk, never buffered whole in memory, via a
// uuid-suffixed staging file that is fsynced and renamed into place only
// after the copy completes. Any failure mid-copy removes the staging file,
// so a partial upload is never visible under its final name.
//
// Two uploads of the same filename landing in the same millisecond produce
// the same stored name; the later rename wins and overwrites the earlier
// artifact. Callers that need stronger uniqueness must vary the filename.
package uploads

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store writes upload streams into a fixed directory.
type Store struct {
	dir string
	log *zap.Logger
}

// New creates the uploads directory if needed and returns a Store over it.
func New(dir string, logger *zap.Logger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("uploads dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{dir: dir, log: logger}, nil
}

// Dir returns the directory uploads are stored in.
func (s *Store) Dir() string { return s.dir }

// Save streams r to disk and returns the stored filename. The copy is
// awaited to completion; a read or write failure removes the partial
// artifact and surfaces the error.
func (s *Store) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	base := sanitizeFilename(filename)
	if base == "" {
		return "", fmt.Errorf("invalid filename %q", filename)
	}
	stored := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), base)

	// Stage under a throwaway name so a crashed copy never leaves a
	// half-written file that looks complete.
	staging := filepath.Join(s.dir, stored+"."+uuid.New().String()[:8]+".part")
	f, err := os.OpenFile(staging, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}

	written, err := io.Copy(f, &ctxReader{ctx: ctx, r: r})
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if rmErr := os.Remove(staging); rmErr != nil {
			s.log.Warn("failed to remove partial upload",
				zap.String("path", staging),
				zap.Error(rmErr))
		}
		return "", fmt.Errorf("write upload stream: %w", err)
	}

	final := filepath.Join(s.dir, stored)
	if err := os.Rename(staging, final); err != nil {
		_ = os.Remove(staging)
		return "", fmt.Errorf("finalize upload: %w", err)
	}

	s.log.Info("upload stored",
		zap.String("filename", stored),
		zap.Int64("bytes", written))
	return stored, nil
}

// Path resolves a stored filename to its on-disk path. It rejects names
// that escape the uploads directory.
func (s *Store) Path(name string) (string, error) {
	base := sanitizeFilename(name)
	if base == "" || base != name {
		return "", fmt.Errorf("invalid stored filename %q", name)
	}
	return filepath.Join(s.dir, base), nil
}

// sanitizeFilename reduces a client-supplied filename to a bare base name.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = filepath.Base(filepath.ToSlash(name))
	if name == "." || name == ".." || name == "/" || strings.ContainsAny(name, "\x00") {
		return ""
	}
	return name
}

// ctxReader fails the copy as soon as the request context is done, so an
// aborted upload surfaces as an error instead of a short silent write.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

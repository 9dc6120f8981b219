// Package apierr defines the typed, user-safe error surface of the API.
//
// Handlers never write raw store/driver errors to a response. They either
// pass through an *apierr.Error built at the failure site, or wrap an
// unexpected error with Internal before rendering.
package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Kind classifies an API error. The kind is part of the public contract and
// is stable across releases; messages are not.
type Kind string

const (
	KindAuthentication Kind = "authentication_error"
	KindConflict       Kind = "conflict_error"
	KindNotFound       Kind = "not_found_error"
	KindValidation     Kind = "validation_error"
	KindStorage        Kind = "storage_error"
	KindInternal       Kind = "internal_error"
)

// Error is a typed API failure.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.Message + ": " + e.err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.err }

// Authentication builds a 401-class error (anonymous caller, bad credentials).
func Authentication(msg string) *Error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

// Conflict builds a 409-class error (uniqueness violation).
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// NotFound builds a 404-class error (absent or not owned by the caller).
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Validation builds a 422-class error for malformed or inconsistent input.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Storage wraps a file-storage failure. The cause is kept for logging but
// never rendered to the caller.
func Storage(msg string, cause error) *Error {
	return &Error{Kind: KindStorage, Message: msg, err: cause}
}

// Internal wraps an unexpected failure behind a generic message.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", err: cause}
}

// Status maps an error kind to its HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindStorage:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// envelope is the wire shape for failures: {"error":{"kind":...,"message":...}}.
type envelope struct {
	Error *Error `json:"error"`
}

// Write renders err as the JSON error envelope. Non-*Error values are logged
// and rendered as internal errors so driver details never leak.
func Write(w http.ResponseWriter, err error, log *zap.Logger) {
	var ae *Error
	if !errors.As(err, &ae) {
		ae = Internal(err)
	}
	if ae.Kind == KindInternal || ae.Kind == KindStorage {
		if log != nil {
			log.Error("request failed", zap.String("kind", string(ae.Kind)), zap.Error(err))
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ae.Status())
	_ = json.NewEncoder(w).Encode(envelope{Error: ae})
}

// WriteJSON renders v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

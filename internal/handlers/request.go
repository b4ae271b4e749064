package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/homeflix/internal/platform/api"
	"github.com/example/homeflix/internal/session"
)

const maxRequestBodyBytes = 1 << 20 // 1 MiB

// decodeJSON reads up to maxRequestBodyBytes from r.Body and decodes JSON into dst.
// On failure it writes a 400 response and returns false.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request, rid string, dst *T) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(dst); err != nil {
		api.BadRequest(w, "INVALID_JSON", "Invalid JSON", rid, nil)
		return false
	}
	return true
}

// writeSessionError maps session errors onto the HTTP envelope.
func writeSessionError(w http.ResponseWriter, rid string, err error) {
	switch {
	case errors.Is(err, session.ErrUnauthorized):
		api.Unauthorized(w, "INVALID_PASSWORD", "Invalid password", rid)
	case errors.Is(err, session.ErrNotLoggedIn):
		api.Unauthorized(w, "SESSION_EXPIRED", "Session not found", rid)
	case errors.Is(err, session.ErrNotFound):
		api.NotFound(w, "NOT_FOUND", err.Error(), rid)
	case errors.Is(err, session.ErrInvalidTab):
		api.BadRequest(w, "INVALID_TAB", err.Error(), rid, nil)
	default:
		api.Internal(w, rid)
	}
}

package handlers

import (
	"net/http"

	"github.com/example/homeflix/internal/platform/api"
	"github.com/example/homeflix/internal/platform/auth"
	"github.com/example/homeflix/internal/platform/httpserver"
	"github.com/example/homeflix/internal/session"
)

// Play resolves a title to its embeddable URL and records it in the
// caller's continue-watching list.
func Play(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		sid, _ := auth.SessionIDFromContext(r.Context())

		var ref session.PlayRef
		if !decodeJSON(w, r, rid, &ref) {
			return
		}
		if ref.Key == "" && ref.SeriesName == "" {
			api.BadRequest(w, "MISSING_REF", "key or seriesName is required", rid, nil)
			return
		}

		res, err := reg.Play(r.Context(), sid, ref)
		if err != nil {
			writeSessionError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, res)
	}
}

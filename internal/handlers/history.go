package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/homeflix/internal/platform/api"
	"github.com/example/homeflix/internal/platform/auth"
	"github.com/example/homeflix/internal/platform/httpserver"
	"github.com/example/homeflix/internal/session"
)

// AddHistory records a title in continue watching without playing it.
// Duplicates are silently absorbed; the add is insert-only.
func AddHistory(reg *session.Registry) http.HandlerFunc {
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
		if err := reg.AddHistory(r.Context(), sid, ref); err != nil {
			writeSessionError(w, rid, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// RemoveHistory deletes one continue-watching entry. The catalog record
// it pointed at is untouched.
func RemoveHistory(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		sid, _ := auth.SessionIDFromContext(r.Context())

		entryKey := chi.URLParam(r, "entryKey")
		if entryKey == "" {
			api.BadRequest(w, "MISSING_ENTRY_KEY", "entry key is required", rid, nil)
			return
		}
		if err := reg.RemoveHistory(r.Context(), sid, entryKey); err != nil {
			writeSessionError(w, rid, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/example/homeflix/internal/catalog"
	"github.com/example/homeflix/internal/platform/api"
	"github.com/example/homeflix/internal/platform/auth"
	"github.com/example/homeflix/internal/platform/httpserver"
	"github.com/example/homeflix/internal/session"
)

// CurrentView returns the render model for the caller's session.
func CurrentView(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		sid, _ := auth.SessionIDFromContext(r.Context())

		v, err := reg.View(sid)
		if err != nil {
			writeSessionError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, v)
	}
}

type switchTabRequest struct {
	Tab string `json:"tab"`
}

func SwitchTab(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		sid, _ := auth.SessionIDFromContext(r.Context())

		var req switchTabRequest
		if !decodeJSON(w, r, rid, &req) {
			return
		}
		if err := reg.SwitchTab(sid, catalog.Tab(strings.TrimSpace(req.Tab))); err != nil {
			writeSessionError(w, rid, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type openSeriesRequest struct {
	SeriesName string `json:"seriesName"`
}

func OpenSeries(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		sid, _ := auth.SessionIDFromContext(r.Context())

		var req openSeriesRequest
		if !decodeJSON(w, r, rid, &req) {
			return
		}
		if strings.TrimSpace(req.SeriesName) == "" {
			api.BadRequest(w, "MISSING_SERIES", "seriesName is required", rid, nil)
			return
		}
		if err := reg.OpenSeries(sid, req.SeriesName); err != nil {
			writeSessionError(w, rid, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func CloseSeries(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		sid, _ := auth.SessionIDFromContext(r.Context())

		if err := reg.CloseSeries(sid); err != nil {
			writeSessionError(w, rid, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

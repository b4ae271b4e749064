package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/homeflix/internal/catalog"
	"github.com/example/homeflix/internal/platform/api"
	"github.com/example/homeflix/internal/platform/httpserver"
	"github.com/example/homeflix/internal/rtstore"
	"github.com/example/homeflix/internal/session"
)

type addItemRequest struct {
	Title        string `json:"title"`
	Type         string `json:"type"`
	Genre        string `json:"genre"`
	Description  string `json:"desc"`
	ThumbnailURL string `json:"thumbnail"`
	VideoURL     string `json:"video"`
	DownloadURL  string `json:"downloadUrl"`
	IsMultiAudio bool   `json:"isMultiAudio"`
	SeriesName   string `json:"seriesName"`
	Season       int    `json:"season"`
	Episode      int    `json:"episode"`
	EpisodeTitle string `json:"epTitle"`
}

type addItemResponse struct {
	Key string `json:"key"`
}

// AddItem appends a movie or episode record to the catalog collection.
// The response returns the generated key; the visible catalog updates
// on the next push.
func AddItem(store rtstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var req addItemRequest
		if !decodeJSON(w, r, rid, &req) {
			return
		}
		req.Title = strings.TrimSpace(req.Title)
		req.SeriesName = strings.TrimSpace(req.SeriesName)

		kind := catalog.Kind(req.Type)
		if kind != catalog.KindMovie && kind != catalog.KindEpisode {
			api.BadRequest(w, "INVALID_TYPE", "type must be movie or series", rid, nil)
			return
		}
		if req.Title == "" {
			api.BadRequest(w, "MISSING_TITLE", "title is required", rid, nil)
			return
		}
		if req.VideoURL == "" {
			api.BadRequest(w, "MISSING_VIDEO", "video is required", rid, nil)
			return
		}
		if kind == catalog.KindEpisode && req.SeriesName == "" {
			api.BadRequest(w, "MISSING_SERIES", "seriesName is required for episodes", rid, nil)
			return
		}

		item := catalog.Item{
			Title:        req.Title,
			Kind:         kind,
			Genre:        strings.TrimSpace(req.Genre),
			Description:  req.Description,
			ThumbnailURL: req.ThumbnailURL,
			VideoURL:     req.VideoURL,
			DownloadURL:  req.DownloadURL,
			IsMultiAudio: req.IsMultiAudio,
			SeriesName:   req.SeriesName,
			Season:       req.Season,
			Episode:      req.Episode,
			EpisodeTitle: strings.TrimSpace(req.EpisodeTitle),
		}
		key, err := store.Append(r.Context(), rtstore.CollectionItems, item)
		if err != nil {
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusCreated, addItemResponse{Key: key})
	}
}

// DeleteItem removes one catalog record. Missing keys are a no-op, so
// a retried delete stays 204.
func DeleteItem(store rtstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		key := chi.URLParam(r, "key")
		if key == "" {
			api.BadRequest(w, "MISSING_KEY", "item key is required", rid, nil)
			return
		}
		if err := store.Remove(r.Context(), rtstore.CollectionItems+"/"+key); err != nil {
			api.Internal(w, rid)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteSeries removes every episode record sharing the series name.
func DeleteSeries(store rtstore.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		seriesName := chi.URLParam(r, "seriesName")
		if seriesName == "" {
			api.BadRequest(w, "MISSING_SERIES", "series name is required", rid, nil)
			return
		}

		snap, err := store.Snapshot(r.Context(), rtstore.CollectionItems)
		if err != nil {
			api.Internal(w, rid)
			return
		}
		removed := 0
		for _, it := range session.DecodeItems(snap, log) {
			if it.SeriesName != seriesName {
				continue
			}
			if err := store.Remove(r.Context(), rtstore.CollectionItems+"/"+it.Key); err != nil {
				log.Warn("series delete: remove failed", zap.String("key", it.Key), zap.Error(err))
				continue
			}
			removed++
		}
		log.Info("series deleted", zap.String("series", seriesName), zap.Int("episodes", removed))
		w.WriteHeader(http.StatusNoContent)
	}
}

package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/example/homeflix/internal/blob"
	"github.com/example/homeflix/internal/platform/api"
	"github.com/example/homeflix/internal/platform/httpserver"
)

const maxThumbnailBytes = 8 << 20 // 8 MiB

type uploadResponse struct {
	URL string `json:"url"`
}

// UploadThumbnail stores a multipart "thumbnail" part and returns its
// public URL for use in a subsequent item submission. A failed upload
// aborts only this request; nothing else is rolled back.
func UploadThumbnail(store blob.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		r.Body = http.MaxBytesReader(w, r.Body, maxThumbnailBytes)
		file, header, err := r.FormFile("thumbnail")
		if err != nil {
			api.BadRequest(w, "MISSING_FILE", "multipart field 'thumbnail' is required", rid, nil)
			return
		}
		defer func() { _ = file.Close() }()

		handle, err := store.Upload(r.Context(), "thumbnails", header.Filename, file)
		if err != nil {
			log.Warn("thumbnail upload failed", zap.String("filename", header.Filename), zap.Error(err))
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusCreated, uploadResponse{URL: store.PublicURL(handle)})
	}
}

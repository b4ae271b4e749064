package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/homeflix/internal/blob"
	"github.com/example/homeflix/internal/platform/auth"
	"github.com/example/homeflix/internal/platform/httpserver"
	"github.com/example/homeflix/internal/rtstore"
	"github.com/example/homeflix/internal/session"
	"github.com/example/homeflix/internal/tokens"
)

// Deps bundles everything the API routes need.
type Deps struct {
	Registry *session.Registry
	Store    rtstore.Store
	Blobs    blob.Store
	Tokens   tokens.Service
	Verifier auth.JWTVerifier
	Log      *zap.Logger
	// LoginLimit, if set, throttles password guessing on the login route.
	LoginLimit *httpserver.RateLimiter
}

// Mount registers the /v1 API on r. Viewer routes require a session
// token; content and member management additionally require the admin
// role.
func Mount(r chi.Router, d Deps) {
	login := http.Handler(Login(d.Registry, d.Tokens))
	if d.LoginLimit != nil {
		login = d.LoginLimit.Middleware(login)
	}
	r.Method(http.MethodPost, "/v1/auth/login", login)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(d.Verifier))

		r.Post("/v1/auth/logout", Logout(d.Registry))

		r.Get("/v1/view", CurrentView(d.Registry))
		r.Post("/v1/view/tab", SwitchTab(d.Registry))
		r.Post("/v1/view/series/open", OpenSeries(d.Registry))
		r.Post("/v1/view/series/close", CloseSeries(d.Registry))

		r.Post("/v1/play", Play(d.Registry))
		r.Post("/v1/history", AddHistory(d.Registry))
		r.Delete("/v1/history/{entryKey}", RemoveHistory(d.Registry))

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)

			r.Post("/v1/items", AddItem(d.Store))
			r.Delete("/v1/items/{key}", DeleteItem(d.Store))
			r.Delete("/v1/series/{seriesName}", DeleteSeries(d.Store, d.Log))

			r.Get("/v1/members", ListMembers(d.Registry))
			r.Post("/v1/members", AddMember(d.Registry, d.Store))
			r.Patch("/v1/members/{key}", UpdateMember(d.Registry, d.Store))

			r.Post("/v1/uploads/thumbnail", UploadThumbnail(d.Blobs, d.Log))
		})
	})
}

// MountBlobs serves uploaded blobs under /blobs/.
func MountBlobs(r chi.Router, local *blob.Local) {
	r.Handle("/blobs/*", http.StripPrefix("/blobs/", local.Handler()))
}

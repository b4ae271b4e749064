package handlers

import (
	"net/http"
	"time"

	"github.com/example/homeflix/internal/member"
	"github.com/example/homeflix/internal/platform/api"
	"github.com/example/homeflix/internal/platform/auth"
	"github.com/example/homeflix/internal/platform/httpserver"
	"github.com/example/homeflix/internal/session"
	"github.com/example/homeflix/internal/tokens"
)

type loginRequest struct {
	Password string `json:"password"`
}

type memberResponse struct {
	Key  string      `json:"key,omitempty"`
	Name string      `json:"name"`
	Role member.Role `json:"role"`
}

type loginResponse struct {
	Token     string         `json:"token"`
	ExpiresAt string         `json:"expires_at"`
	Member    memberResponse `json:"member"`
}

// Login gates on the shared password list; the issued token carries the
// opaque session id and role.
func Login(reg *session.Registry, tok tokens.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var req loginRequest
		if !decodeJSON(w, r, rid, &req) {
			return
		}
		if req.Password == "" {
			api.BadRequest(w, "MISSING_PASSWORD", "Password is required", rid, nil)
			return
		}

		sid, m, err := reg.Login(r.Context(), req.Password)
		if err != nil {
			writeSessionError(w, rid, err)
			return
		}

		signed, exp, err := tok.NewSessionToken(sid, string(m.Role), time.Time{})
		if err != nil {
			reg.Logout(sid)
			api.Internal(w, rid)
			return
		}

		api.WriteJSON(w, http.StatusOK, loginResponse{
			Token:     signed,
			ExpiresAt: exp.UTC().Format(time.RFC3339),
			Member:    memberResponse{Key: m.Key, Name: m.Name, Role: m.Role},
		})
	}
}

func Logout(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, _ := auth.SessionIDFromContext(r.Context())
		reg.Logout(sid)
		w.WriteHeader(http.StatusNoContent)
	}
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/homeflix/internal/member"
	"github.com/example/homeflix/internal/platform/api"
	"github.com/example/homeflix/internal/platform/httpserver"
	"github.com/example/homeflix/internal/rtstore"
	"github.com/example/homeflix/internal/session"
)

// memberRecord is the admin-facing member row. It includes the
// plaintext password: the members modal displays it so the admin can
// hand it out. History is deliberately omitted.
type memberRecord struct {
	Key      string      `json:"key"`
	Name     string      `json:"name"`
	Password string      `json:"password"`
	Role     member.Role `json:"role"`
}

// ListMembers returns the synced user set.
func ListMembers(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		members := reg.Members()
		out := make([]memberRecord, 0, len(members))
		for _, m := range members {
			out = append(out, memberRecord{Key: m.Key, Name: m.Name, Password: m.Password, Role: m.Role})
		}
		api.WriteJSON(w, http.StatusOK, out)
	}
}

type addMemberRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// AddMember appends a viewer record. Passwords double as the login
// identity, so a duplicate would shadow an existing member and is
// rejected.
func AddMember(reg *session.Registry, store rtstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var req addMemberRequest
		if !decodeJSON(w, r, rid, &req) {
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" || req.Password == "" {
			api.BadRequest(w, "MISSING_FIELDS", "name and password are required", rid, nil)
			return
		}
		if member.FindByPassword(reg.Members(), req.Password) != nil {
			api.Conflict(w, "PASSWORD_TAKEN", "Password already in use", rid, nil)
			return
		}

		m := member.Member{Name: req.Name, Password: req.Password, Role: member.RoleViewer}
		key, err := store.Append(r.Context(), rtstore.CollectionUsers, m)
		if err != nil {
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusCreated, memberRecord{Key: key, Name: m.Name, Password: m.Password, Role: m.Role})
	}
}

type updateMemberRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

// UpdateMember patches name and/or password through a partial path
// update; the member's history subtree is untouched.
func UpdateMember(reg *session.Registry, store rtstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		key := chi.URLParam(r, "key")

		if member.FindByKey(reg.Members(), key) == nil {
			api.NotFound(w, "MEMBER_NOT_FOUND", "No such member", rid)
			return
		}

		var req updateMemberRequest
		if !decodeJSON(w, r, rid, &req) {
			return
		}
		partial := map[string]any{}
		if req.Name != nil {
			if strings.TrimSpace(*req.Name) == "" {
				api.BadRequest(w, "INVALID_NAME", "name must not be empty", rid, nil)
				return
			}
			partial["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Password != nil {
			if *req.Password == "" {
				api.BadRequest(w, "INVALID_PASSWORD", "password must not be empty", rid, nil)
				return
			}
			if m := member.FindByPassword(reg.Members(), *req.Password); m != nil && m.Key != key {
				api.Conflict(w, "PASSWORD_TAKEN", "Password already in use", rid, nil)
				return
			}
			partial["password"] = *req.Password
		}
		if len(partial) == 0 {
			api.BadRequest(w, "EMPTY_PATCH", "nothing to update", rid, nil)
			return
		}

		updates := map[string]any{rtstore.CollectionUsers + "/" + key: partial}
		if err := store.UpdatePaths(r.Context(), updates); err != nil {
			api.Internal(w, rid)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

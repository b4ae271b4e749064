// Package member models the synced user list. Passwords are plaintext
// by design: the list is a shared access gate, not an account system,
// and the admin members view displays them.
package member

import "github.com/example/homeflix/internal/history"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// Member is one record of the synced users collection.
type Member struct {
	Key      string                   `json:"key"` // store-assigned
	Name     string                   `json:"name"`
	Password string                   `json:"password"`
	Role     Role                     `json:"role"`
	History  map[string]history.Entry `json:"history,omitempty"`
}

// IsAdmin reports whether the member has the admin role.
func (m Member) IsAdmin() bool { return m.Role == RoleAdmin }

// FindByPassword returns the first member whose password matches, or nil.
func FindByPassword(members []Member, password string) *Member {
	for i := range members {
		if members[i].Password == password {
			return &members[i]
		}
	}
	return nil
}

// FindByKey returns the member with the given store key, or nil.
func FindByKey(members []Member, key string) *Member {
	if key == "" {
		return nil
	}
	for i := range members {
		if members[i].Key == key {
			return &members[i]
		}
	}
	return nil
}

// AnyAdmin reports whether at least one admin exists in the synced set.
func AnyAdmin(members []Member) bool {
	for _, m := range members {
		if m.IsAdmin() {
			return true
		}
	}
	return false
}

// Package rtstore defines the realtime key-value push store the app
// syncs against: append-with-generated-key, path remove, partial-path
// update, and subscriptions that deliver the entire current snapshot of
// a collection on every change (never a diff).
package rtstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Collection names used by the app.
const (
	CollectionItems = "items"
	CollectionUsers = "users"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidPath = errors.New("invalid path")
)

// Doc is a stored document plus its store-assigned key.
type Doc struct {
	Key  string
	Data json.RawMessage
}

// Snapshot is the entire contents of one collection in insertion order.
type Snapshot []Doc

// Callback receives a full collection snapshot. Callbacks of one
// subscription are serialized: each runs to completion before the next
// is dispatched.
type Callback func(Snapshot)

// Store is the push-store contract. Writes are fire-and-forget from the
// UI's point of view: the returned error covers only issuing the write;
// the subsequent snapshot push is the confirmation.
type Store interface {
	// Append stores doc under a generated key. The path is either a
	// collection name ("items") or a nested map inside a document
	// ("users/<key>/history").
	Append(ctx context.Context, path string, doc any) (string, error)
	// Remove deletes the value at a full path ("items/<key>",
	// "users/<key>/history/<entry>"). Removing a missing path is a no-op.
	Remove(ctx context.Context, path string) error
	// UpdatePaths merge-patches partial objects at each path.
	UpdatePaths(ctx context.Context, updates map[string]any) error
	// Snapshot reads the current contents of a collection.
	Snapshot(ctx context.Context, collection string) (Snapshot, error)
	// Subscribe registers cb for a collection. The current snapshot is
	// delivered first, then one per subsequent change. The returned
	// cancel func stops delivery.
	Subscribe(collection string, cb Callback) (cancel func(), err error)
	Close()
}

// splitPath breaks "users/u1/history/h2" into its segments.
func splitPath(path string) ([]string, error) {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return nil, ErrInvalidPath
	}
	segs := strings.Split(path, "/")
	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return segs, nil
}

// toMap round-trips any value through JSON into a generic map.
func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("document must be a JSON object: %w", err)
	}
	return m, nil
}

package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/homeflix/internal/catalog"
	"github.com/example/homeflix/internal/member"
	"github.com/example/homeflix/internal/platform/metrics"
	"github.com/example/homeflix/internal/rtstore"
)

// Registry owns the store subscriptions and the live sessions. It
// subscribes once per collection and fans each push out to every
// session, so a hundred clients cost two subscriptions, not two
// hundred. The registry lock serializes pushes and commands; all
// session state is mutated under it.
type Registry struct {
	store rtstore.Store
	log   *zap.Logger

	bootstrapPassword string

	mu       sync.Mutex
	sessions map[string]*Session
	items    []catalog.Item
	users    []member.Member
	cancels  []func()
}

// NewRegistry subscribes to the items and users collections. The
// initial snapshots arrive through the same callbacks as later pushes,
// so new sessions always seed from current state.
func NewRegistry(store rtstore.Store, log *zap.Logger, bootstrapPassword string) (*Registry, error) {
	r := &Registry{
		store:             store,
		log:               log,
		bootstrapPassword: bootstrapPassword,
		sessions:          make(map[string]*Session),
	}

	cancelItems, err := store.Subscribe(rtstore.CollectionItems, r.onItems)
	if err != nil {
		return nil, err
	}
	r.cancels = append(r.cancels, cancelItems)

	cancelUsers, err := store.Subscribe(rtstore.CollectionUsers, r.onUsers)
	if err != nil {
		for _, cancel := range r.cancels {
			cancel()
		}
		return nil, err
	}
	r.cancels = append(r.cancels, cancelUsers)
	return r, nil
}

func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cancel := range r.cancels {
		cancel()
	}
	r.cancels = nil
	metrics.ActiveSessions.Sub(float64(len(r.sessions)))
	r.sessions = make(map[string]*Session)
}

func (r *Registry) onItems(snap rtstore.Snapshot) {
	metrics.StorePushes.WithLabelValues(rtstore.CollectionItems).Inc()
	items := DecodeItems(snap, r.log)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = items
	for _, s := range r.sessions {
		s.applyItems(items)
	}
}

func (r *Registry) onUsers(snap rtstore.Snapshot) {
	metrics.StorePushes.WithLabelValues(rtstore.CollectionUsers).Inc()
	users := DecodeMembers(snap, r.log)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = users
	for _, s := range r.sessions {
		s.applyUsers(users)
	}
}

// Login authenticates against the current user set and, on success,
// registers a new session keyed by an opaque id. The id becomes the
// JWT subject; it deliberately is not the member key, because a
// bootstrap admin has no key until its record syncs back.
func (r *Registry) Login(ctx context.Context, password string) (string, member.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := newSession(r.store, r.log, r.bootstrapPassword)
	s.applyItems(r.items)
	s.users = r.users

	m, err := s.login(ctx, password)
	if err != nil {
		return "", member.Member{}, err
	}

	id := "sess-" + uuid.NewString()
	r.sessions[id] = s
	metrics.ActiveSessions.Inc()
	r.log.Info("session started", zap.String("session_id", id), zap.String("role", string(m.Role)))
	return id, m, nil
}

// Logout tears the session down. Unknown ids are a no-op so a retried
// logout cannot fail.
func (r *Registry) Logout(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	s.logout()
	delete(r.sessions, sessionID)
	metrics.ActiveSessions.Dec()
}

// with runs fn against the named session under the registry lock.
func (r *Registry) with(sessionID string, fn func(*Session) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return ErrNotLoggedIn
	}
	return fn(s)
}

func (r *Registry) View(sessionID string) (View, error) {
	var v View
	err := r.with(sessionID, func(s *Session) error {
		v = s.view()
		return nil
	})
	return v, err
}

func (r *Registry) SwitchTab(sessionID string, tab catalog.Tab) error {
	return r.with(sessionID, func(s *Session) error { return s.switchTab(tab) })
}

func (r *Registry) OpenSeries(sessionID, seriesName string) error {
	return r.with(sessionID, func(s *Session) error { return s.openSeriesDetail(seriesName) })
}

func (r *Registry) CloseSeries(sessionID string) error {
	return r.with(sessionID, func(s *Session) error { return s.closeSeriesDetail() })
}

func (r *Registry) Play(ctx context.Context, sessionID string, ref PlayRef) (PlayResult, error) {
	var res PlayResult
	err := r.with(sessionID, func(s *Session) error {
		var err error
		res, err = s.play(ctx, ref)
		return err
	})
	return res, err
}

func (r *Registry) AddHistory(ctx context.Context, sessionID string, ref PlayRef) error {
	return r.with(sessionID, func(s *Session) error { return s.addToHistory(ctx, ref) })
}

func (r *Registry) RemoveHistory(ctx context.Context, sessionID, entryKey string) error {
	return r.with(sessionID, func(s *Session) error { return s.removeHistory(ctx, entryKey) })
}

// Members returns the current synced user set, passwords included; the
// admin members handler is the only caller and the original members
// modal displays them.
func (r *Registry) Members() []member.Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]member.Member, len(r.users))
	copy(out, r.users)
	return out
}

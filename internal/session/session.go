// Package session holds the per-client browsing state: the mirrored
// store snapshots, the login state machine, and the derived view model
// recomputed after every push or command.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/homeflix/internal/catalog"
	"github.com/example/homeflix/internal/history"
	"github.com/example/homeflix/internal/member"
	"github.com/example/homeflix/internal/platform/metrics"
	"github.com/example/homeflix/internal/player"
	"github.com/example/homeflix/internal/rtstore"
)

var (
	ErrUnauthorized = errors.New("invalid password")
	ErrNotLoggedIn  = errors.New("not logged in")
	ErrNotFound     = errors.New("not found")
	ErrInvalidTab   = errors.New("invalid tab")
)

// Session is one client's state machine. All methods are called with
// the owning Registry's lock held, so the struct itself is unlocked.
type Session struct {
	store rtstore.Store
	log   *zap.Logger
	now   func() time.Time

	bootstrapPassword string

	items    []catalog.Item
	users    []member.Member
	entities []catalog.DisplayEntity // derived from items on every push

	loggedIn   bool
	current    member.Member
	tab        catalog.Tab
	openSeries string

	// Explicit hero selection; resolved lazily in View so a stale
	// reference degrades to the default instead of erroring.
	heroSeries string
	heroKey    string
}

func newSession(store rtstore.Store, log *zap.Logger, bootstrapPassword string) *Session {
	return &Session{
		store:             store,
		log:               log,
		now:               time.Now,
		bootstrapPassword: bootstrapPassword,
		tab:               catalog.TabAll,
	}
}

// applyItems replaces the item mirror wholesale and recomputes the
// derived entities. A series detail whose group vanished or lost its
// last episode is force-closed.
func (s *Session) applyItems(items []catalog.Item) {
	s.items = items
	s.recompute()
}

// applyUsers replaces the user mirror and rebinds the logged-in member
// to its fresh record, so history mutations land without re-login. A
// bootstrap admin has no store key until its own append comes back;
// until then it rebinds by password and role.
func (s *Session) applyUsers(users []member.Member) {
	s.users = users
	if !s.loggedIn {
		return
	}
	if m := member.FindByKey(users, s.current.Key); m != nil {
		s.current = *m
		return
	}
	if s.current.Key == "" {
		for i := range users {
			if users[i].Password == s.current.Password && users[i].Role == s.current.Role {
				s.current = users[i]
				return
			}
		}
	}
}

func (s *Session) recompute() {
	s.entities = catalog.Group(s.items)
	if s.openSeries != "" {
		g := catalog.FindGroup(s.entities, s.openSeries)
		if g == nil || len(g.Episodes) == 0 {
			s.openSeries = ""
		}
	}
	metrics.Recomputes.Inc()
}

// login transitions LoggedOut → LoggedIn. A plaintext match against the
// synced user list wins; otherwise the bootstrap path applies: when no
// admin exists yet and the bootstrap password was given, the admin
// record is appended to the store and the session proceeds as that
// keyless admin. Two racing bootstraps may both append; best effort.
func (s *Session) login(ctx context.Context, password string) (member.Member, error) {
	if m := member.FindByPassword(s.users, password); m != nil {
		s.become(*m)
		metrics.AuthEvents.WithLabelValues("login", "ok").Inc()
		return s.current, nil
	}
	if password == s.bootstrapPassword && !member.AnyAdmin(s.users) {
		admin := member.Member{Name: "Admin", Password: password, Role: member.RoleAdmin}
		if _, err := s.store.Append(ctx, rtstore.CollectionUsers, admin); err != nil {
			metrics.AuthEvents.WithLabelValues("bootstrap", "error").Inc()
			return member.Member{}, fmt.Errorf("bootstrap admin: %w", err)
		}
		s.become(admin)
		metrics.AuthEvents.WithLabelValues("bootstrap", "ok").Inc()
		s.log.Info("bootstrap admin created")
		return s.current, nil
	}
	metrics.AuthEvents.WithLabelValues("login", "rejected").Inc()
	return member.Member{}, ErrUnauthorized
}

func (s *Session) become(m member.Member) {
	s.loggedIn = true
	s.current = m
	s.tab = catalog.TabAll
	s.openSeries = ""
	s.heroSeries, s.heroKey = "", ""
}

func (s *Session) logout() {
	s.loggedIn = false
	s.current = member.Member{}
	s.tab = catalog.TabAll
	s.openSeries = ""
	s.heroSeries, s.heroKey = "", ""
	metrics.AuthEvents.WithLabelValues("logout", "ok").Inc()
}

func (s *Session) switchTab(tab catalog.Tab) error {
	if !s.loggedIn {
		return ErrNotLoggedIn
	}
	if !catalog.ValidTab(tab) {
		return fmt.Errorf("%w: %q", ErrInvalidTab, tab)
	}
	s.tab = tab
	s.recompute()
	return nil
}

func (s *Session) openSeriesDetail(seriesName string) error {
	if !s.loggedIn {
		return ErrNotLoggedIn
	}
	g := catalog.FindGroup(s.entities, seriesName)
	if g == nil || len(g.Episodes) == 0 {
		return fmt.Errorf("%w: series %q", ErrNotFound, seriesName)
	}
	s.openSeries = seriesName
	return nil
}

func (s *Session) closeSeriesDetail() error {
	if !s.loggedIn {
		return ErrNotLoggedIn
	}
	s.openSeries = ""
	return nil
}

// PlayRef addresses a playable thing: a standalone item or episode by
// store key, or a whole series by name (first episode plays).
type PlayRef struct {
	Key        string `json:"key,omitempty"`
	SeriesName string `json:"seriesName,omitempty"`
}

// PlayResult is what the client needs to start the viewer.
type PlayResult struct {
	Title       string `json:"title"`
	EmbedURL    string `json:"embedUrl"`
	Caution     bool   `json:"caution"` // multi-audio interstitial
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// play resolves the reference, marks the entity as hero, records it in
// continue watching (insert-only) and returns the embeddable URL.
func (s *Session) play(ctx context.Context, ref PlayRef) (PlayResult, error) {
	if !s.loggedIn {
		return PlayResult{}, ErrNotLoggedIn
	}
	entity, src, err := s.resolve(ref)
	if err != nil {
		return PlayResult{}, err
	}
	if entity.IsGroup() {
		s.heroSeries, s.heroKey = entity.Group.SeriesName, ""
	} else {
		s.heroSeries, s.heroKey = "", entity.Item.Key
	}
	s.addHistory(ctx, entity)
	return PlayResult{
		Title:       src.Title,
		EmbedURL:    player.EmbedURL(src.VideoURL),
		Caution:     src.IsMultiAudio,
		DownloadURL: src.DownloadURL,
	}, nil
}

// resolve maps a PlayRef onto the display entity that owns it and the
// concrete item to play. A key pointing inside a group resolves to the
// group (history tracks series, not episodes) with that episode as the
// source; a series name resolves to its first episode.
func (s *Session) resolve(ref PlayRef) (catalog.DisplayEntity, catalog.Item, error) {
	if ref.SeriesName != "" {
		g := catalog.FindGroup(s.entities, ref.SeriesName)
		if g == nil || len(g.Episodes) == 0 {
			return catalog.DisplayEntity{}, catalog.Item{}, fmt.Errorf("%w: series %q", ErrNotFound, ref.SeriesName)
		}
		return catalog.DisplayEntity{Group: g}, g.Episodes[0], nil
	}
	if it := catalog.FindItem(s.entities, ref.Key); it != nil {
		return catalog.DisplayEntity{Item: it}, *it, nil
	}
	for _, e := range s.entities {
		if !e.IsGroup() {
			continue
		}
		for _, ep := range e.Group.Episodes {
			if ep.Key == ref.Key {
				return e, ep, nil
			}
		}
	}
	return catalog.DisplayEntity{}, catalog.Item{}, fmt.Errorf("%w: key %q", ErrNotFound, ref.Key)
}

// addToHistory is the command form of the insert-only history add.
func (s *Session) addToHistory(ctx context.Context, ref PlayRef) error {
	if !s.loggedIn {
		return ErrNotLoggedIn
	}
	entity, _, err := s.resolve(ref)
	if err != nil {
		return err
	}
	s.addHistory(ctx, entity)
	return nil
}

// addHistory issues the store write for a new continue-watching entry.
// Already-present entities are skipped so a re-watch keeps its original
// timestamp. The issued entry is merged into the mirrored history right
// away: the confirming users push may lag, and a second play of the
// same title before it lands must still be deduplicated. The next push
// replaces the mirror wholesale, so the optimistic copy never outlives
// its confirmation. A keyless bootstrap admin has nowhere to write yet;
// the entry is dropped until the user record lands.
func (s *Session) addHistory(ctx context.Context, e catalog.DisplayEntity) {
	if history.Contains(s.current.History, e) {
		return
	}
	if s.current.Key == "" {
		s.log.Warn("history add skipped, user record not synced yet")
		return
	}
	entry := history.NewEntry(e, s.now())
	path := rtstore.CollectionUsers + "/" + s.current.Key + "/history"
	key, err := s.store.Append(ctx, path, entry)
	if err != nil {
		s.log.Warn("history append failed", zap.Error(err))
		return
	}
	merged := make(map[string]history.Entry, len(s.current.History)+1)
	for k, v := range s.current.History {
		merged[k] = v
	}
	merged[key] = entry
	s.current.History = merged
}

// removeHistory deletes one entry by its store key. The catalog record
// is untouched. Removing an unknown key is a no-op, matching the store.
func (s *Session) removeHistory(ctx context.Context, entryKey string) error {
	if !s.loggedIn {
		return ErrNotLoggedIn
	}
	if s.current.Key == "" || entryKey == "" {
		return nil
	}
	path := rtstore.CollectionUsers + "/" + s.current.Key + "/history/" + entryKey
	return s.store.Remove(ctx, path)
}

package rtstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store used by tests and single-node
// deployments. Documents live in mutex-guarded maps; a single dispatcher
// goroutine serializes snapshot deliveries, coalescing bursts of writes
// the way a remote push store would.
type Memory struct {
	mu    sync.RWMutex
	seq   uint64
	colls map[string]map[string]*memDoc

	notifyMu sync.Mutex
	notify   *sync.Cond
	dirty    map[string]bool
	pending  []*memSub
	subs     map[string][]*memSub
	closed   bool
}

type memDoc struct {
	seq  uint64
	data map[string]any
}

type memSub struct {
	collection string
	cb         Callback
	cancelled  bool
}

func NewMemory() *Memory {
	s := &Memory{
		colls: make(map[string]map[string]*memDoc),
		dirty: make(map[string]bool),
		subs:  make(map[string][]*memSub),
	}
	s.notify = sync.NewCond(&s.notifyMu)
	go s.dispatchLoop()
	return s
}

var _ Store = (*Memory)(nil)

// ── Writes ─────────────────────────────────────────────────────────────

func (s *Memory) Append(_ context.Context, path string, doc any) (string, error) {
	segs, err := splitPath(path)
	if err != nil {
		return "", err
	}
	m, err := toMap(doc)
	if err != nil {
		return "", err
	}
	key := uuid.NewString()

	s.mu.Lock()
	if len(segs) == 1 {
		coll := s.collection(segs[0])
		s.seq++
		coll[key] = &memDoc{seq: s.seq, data: m}
	} else {
		d, ok := s.collection(segs[0])[segs[1]]
		if !ok {
			s.mu.Unlock()
			return "", ErrNotFound
		}
		parent := navigate(d.data, segs[2:], true)
		parent[key] = m
	}
	s.mu.Unlock()

	s.markDirty(segs[0])
	return key, nil
}

func (s *Memory) Remove(_ context.Context, path string) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	switch {
	case len(segs) == 1:
		delete(s.colls, segs[0])
	case len(segs) == 2:
		delete(s.collection(segs[0]), segs[1])
	default:
		if d, ok := s.collection(segs[0])[segs[1]]; ok {
			if parent := navigate(d.data, segs[2:len(segs)-1], false); parent != nil {
				delete(parent, segs[len(segs)-1])
			}
		}
	}
	s.mu.Unlock()

	s.markDirty(segs[0])
	return nil
}

func (s *Memory) UpdatePaths(_ context.Context, updates map[string]any) error {
	touched := make(map[string]bool)

	s.mu.Lock()
	for path, partial := range updates {
		segs, err := splitPath(path)
		if err != nil || len(segs) < 2 {
			s.mu.Unlock()
			return ErrInvalidPath
		}
		m, err := toMap(partial)
		if err != nil {
			s.mu.Unlock()
			return err
		}

		coll := s.collection(segs[0])
		d, ok := coll[segs[1]]
		if !ok {
			s.seq++
			d = &memDoc{seq: s.seq, data: make(map[string]any)}
			coll[segs[1]] = d
		}
		target := navigate(d.data, segs[2:], true)
		for k, v := range m {
			target[k] = v
		}
		touched[segs[0]] = true
	}
	s.mu.Unlock()

	for c := range touched {
		s.markDirty(c)
	}
	return nil
}

// ── Reads / subscriptions ──────────────────────────────────────────────

func (s *Memory) Snapshot(_ context.Context, collection string) (Snapshot, error) {
	return s.snapshotOf(collection)
}

func (s *Memory) Subscribe(collection string, cb Callback) (func(), error) {
	sub := &memSub{collection: collection, cb: cb}

	s.notifyMu.Lock()
	s.subs[collection] = append(s.subs[collection], sub)
	s.pending = append(s.pending, sub)
	s.notifyMu.Unlock()
	s.notify.Signal()

	cancel := func() {
		s.notifyMu.Lock()
		sub.cancelled = true
		list := s.subs[collection]
		for i, x := range list {
			if x == sub {
				s.subs[collection] = append(list[:i], list[i+1:]...)
				break
			}
		}
		s.notifyMu.Unlock()
	}
	return cancel, nil
}

func (s *Memory) Close() {
	s.notifyMu.Lock()
	if !s.closed {
		s.closed = true
	}
	s.notifyMu.Unlock()
	s.notify.Signal()
}

// ── Internals ──────────────────────────────────────────────────────────

// collection returns the named collection map; caller holds s.mu.
func (s *Memory) collection(name string) map[string]*memDoc {
	c, ok := s.colls[name]
	if !ok {
		c = make(map[string]*memDoc)
		s.colls[name] = c
	}
	return c
}

// navigate walks nested maps under a document; creates missing levels
// when create is set, otherwise returns nil on a missing level.
func navigate(m map[string]any, segs []string, create bool) map[string]any {
	for _, seg := range segs {
		child, ok := m[seg].(map[string]any)
		if !ok {
			if !create {
				return nil
			}
			child = make(map[string]any)
			m[seg] = child
		}
		m = child
	}
	return m
}

func (s *Memory) snapshotOf(collection string) (Snapshot, error) {
	s.mu.RLock()
	type row struct {
		seq  uint64
		key  string
		data map[string]any
	}
	rows := make([]row, 0, len(s.colls[collection]))
	for k, d := range s.colls[collection] {
		rows = append(rows, row{seq: d.seq, key: k, data: d.data})
	}
	s.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	snap := make(Snapshot, 0, len(rows))
	for _, r := range rows {
		b, err := json.Marshal(r.data)
		if err != nil {
			return nil, err
		}
		snap = append(snap, Doc{Key: r.key, Data: b})
	}
	return snap, nil
}

func (s *Memory) markDirty(collection string) {
	s.notifyMu.Lock()
	s.dirty[collection] = true
	s.notifyMu.Unlock()
	s.notify.Signal()
}

// dispatchLoop is the single delivery goroutine: it drains pending
// initial deliveries and dirty collections, then invokes callbacks
// outside the locks so a callback may issue further writes.
func (s *Memory) dispatchLoop() {
	for {
		s.notifyMu.Lock()
		for !s.closed && len(s.dirty) == 0 && len(s.pending) == 0 {
			s.notify.Wait()
		}
		if s.closed {
			s.notifyMu.Unlock()
			return
		}
		pending := s.pending
		s.pending = nil
		dirty := s.dirty
		s.dirty = make(map[string]bool)

		targets := make(map[string][]*memSub, len(dirty))
		for c := range dirty {
			targets[c] = append([]*memSub(nil), s.subs[c]...)
		}
		s.notifyMu.Unlock()

		for _, sub := range pending {
			if dirty[sub.collection] {
				continue // the dirty delivery below covers it
			}
			s.deliver(sub)
		}
		for c, subs := range targets {
			snap, err := s.snapshotOf(c)
			if err != nil {
				continue
			}
			for _, sub := range subs {
				if !s.isCancelled(sub) {
					sub.cb(snap)
				}
			}
		}
	}
}

func (s *Memory) deliver(sub *memSub) {
	if s.isCancelled(sub) {
		return
	}
	snap, err := s.snapshotOf(sub.collection)
	if err != nil {
		return
	}
	sub.cb(snap)
}

func (s *Memory) isCancelled(sub *memSub) bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	return sub.cancelled
}

// Package history implements the continue-watching projection: a
// per-member, timestamp-ordered view of engaged titles, resolved
// against the live catalog with a stored-snapshot fallback.
package history

import (
	"sort"
	"time"

	"github.com/example/homeflix/internal/catalog"
)

// Entry is one history record stored under users/<key>/history. It
// embeds a snapshot of the watched title so the row can still render
// after the catalog record is deleted.
type Entry struct {
	SourceKey    string       `json:"sourceKey"` // item key at add time
	Title        string       `json:"title"`
	SeriesName   string       `json:"seriesName,omitempty"`
	IsGroup      bool         `json:"isGroup"`
	Kind         catalog.Kind `json:"type"`
	Genre        string       `json:"genre,omitempty"`
	Description  string       `json:"desc,omitempty"`
	ThumbnailURL string       `json:"thumbnail,omitempty"`
	VideoURL     string       `json:"video,omitempty"`
	Timestamp    int64        `json:"timestamp"` // unix millis
}

// Projected is one resolved continue-watching row.
type Projected struct {
	Entity   catalog.DisplayEntity
	EntryKey string
	// Fallback is true when the source vanished from the catalog and
	// Entity was rebuilt from the stored snapshot.
	Fallback  bool
	Timestamp int64
}

// NewEntry snapshots a display entity into a history record.
func NewEntry(e catalog.DisplayEntity, now time.Time) Entry {
	meta := e.Meta()
	entry := Entry{
		SourceKey:    meta.Key,
		Title:        meta.Title,
		Kind:         meta.Kind,
		Genre:        meta.Genre,
		Description:  meta.Description,
		ThumbnailURL: meta.ThumbnailURL,
		VideoURL:     meta.VideoURL,
		Timestamp:    now.UnixMilli(),
	}
	if e.IsGroup() {
		entry.IsGroup = true
		entry.SeriesName = e.Group.SeriesName
	}
	return entry
}

// Contains reports whether the history already holds an entry for the
// entity: group entries match by series name, standalone entries by
// title. Used to keep history insert-only; re-watching does not bump
// the stored timestamp.
func Contains(entries map[string]Entry, e catalog.DisplayEntity) bool {
	for _, h := range entries {
		if e.IsGroup() {
			if h.SeriesName == e.Group.SeriesName {
				return true
			}
			continue
		}
		if !h.IsGroup && h.Title == e.Item.Title {
			return true
		}
	}
	return false
}

// Project resolves every history entry against the live entity list and
// returns rows sorted by timestamp descending (ties broken by entry key
// for determinism). Entries whose source is still live render the live
// entity so new episodes and metadata edits show immediately; deleted
// sources fall back to the stored snapshot and never error.
func Project(entries map[string]Entry, live []catalog.DisplayEntity) []Projected {
	out := make([]Projected, 0, len(entries))
	for key, h := range entries {
		out = append(out, resolve(key, h, live))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].EntryKey < out[j].EntryKey
	})
	return out
}

func resolve(key string, h Entry, live []catalog.DisplayEntity) Projected {
	p := Projected{EntryKey: key, Timestamp: h.Timestamp}
	if h.IsGroup {
		if g := catalog.FindGroup(live, h.SeriesName); g != nil {
			p.Entity = catalog.DisplayEntity{Group: g}
			return p
		}
	} else {
		for _, e := range live {
			if !e.IsGroup() && e.Item.Title == h.Title {
				p.Entity = e
				return p
			}
		}
	}
	p.Entity = h.snapshotEntity()
	p.Fallback = true
	return p
}

// snapshotEntity rebuilds a renderable entity from the stored copy.
// A group fallback has no live episodes left; it still renders as a
// series card.
func (h Entry) snapshotEntity() catalog.DisplayEntity {
	item := catalog.Item{
		Key:          h.SourceKey,
		Title:        h.Title,
		Kind:         h.Kind,
		Genre:        h.Genre,
		Description:  h.Description,
		ThumbnailURL: h.ThumbnailURL,
		VideoURL:     h.VideoURL,
		SeriesName:   h.SeriesName,
	}
	if h.IsGroup {
		return catalog.DisplayEntity{Group: &catalog.SeriesGroup{SeriesName: h.SeriesName, Meta: item}}
	}
	return catalog.DisplayEntity{Item: &item}
}

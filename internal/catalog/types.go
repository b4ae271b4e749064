// Package catalog holds the flat media records synced from the realtime
// store and the pure transforms that derive browsable views from them.
package catalog

// Kind discriminates flat catalog records.
type Kind string

const (
	KindMovie   Kind = "movie"
	KindEpisode Kind = "series"
)

// Tab is the active navigation tab of the browse view.
type Tab string

const (
	TabAll    Tab = "all"
	TabMovies Tab = "movies"
	TabSeries Tab = "series"
)

// ValidTab reports whether t is one of the known tabs.
func ValidTab(t Tab) bool {
	switch t {
	case TabAll, TabMovies, TabSeries:
		return true
	}
	return false
}

// Item is one flat catalog record: a standalone movie, or a single
// episode of a series. Episode records share a SeriesName and carry
// their own season/episode coordinates.
type Item struct {
	Key          string `json:"key"` // store-assigned, stable
	Title        string `json:"title"`
	Kind         Kind   `json:"type"`
	Genre        string `json:"genre,omitempty"`
	Description  string `json:"desc,omitempty"`
	ThumbnailURL string `json:"thumbnail,omitempty"`
	VideoURL     string `json:"video,omitempty"`
	DownloadURL  string `json:"downloadUrl,omitempty"`
	IsMultiAudio bool   `json:"isMultiAudio,omitempty"`

	SeriesName   string `json:"seriesName,omitempty"`
	Season       int    `json:"season,omitempty"`
	Episode      int    `json:"episode,omitempty"`
	EpisodeTitle string `json:"epTitle,omitempty"`
}

// SeriesGroup is the derived aggregate of all episodes sharing a series
// name. Meta is a copy of the first-seen episode: the group inherits its
// thumbnail, genre and description. Recomputed from scratch on every
// snapshot; never mutated in place, never persisted.
type SeriesGroup struct {
	SeriesName string
	Meta       Item
	Episodes   []Item
}

// Seasons returns the distinct season numbers in ascending order.
func (g *SeriesGroup) Seasons() []int {
	seen := make(map[int]bool)
	var out []int
	for _, ep := range g.Episodes {
		if !seen[ep.Season] {
			seen[ep.Season] = true
			out = append(out, ep.Season)
		}
	}
	// Episodes are already sorted by (season, episode), so first-seen
	// order here is ascending season order.
	return out
}

// Season returns the episodes of one season, preserving episode order.
func (g *SeriesGroup) Season(n int) []Item {
	var out []Item
	for _, ep := range g.Episodes {
		if ep.Season == n {
			out = append(out, ep)
		}
	}
	return out
}

// DisplayEntity is either a standalone item or a series group; exactly
// one of the two fields is set.
type DisplayEntity struct {
	Item  *Item
	Group *SeriesGroup
}

// IsGroup reports whether the entity is a series group.
func (e DisplayEntity) IsGroup() bool { return e.Group != nil }

// DisplayTitle is the card title: the series name for groups, the item
// title otherwise.
func (e DisplayEntity) DisplayTitle() string {
	if e.Group != nil {
		return e.Group.SeriesName
	}
	return e.Item.Title
}

// Meta returns the display metadata carrier: the inherited first-seen
// episode for groups, the item itself otherwise.
func (e DisplayEntity) Meta() Item {
	if e.Group != nil {
		return e.Group.Meta
	}
	return *e.Item
}

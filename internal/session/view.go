package session

import (
	"fmt"

	"github.com/example/homeflix/internal/catalog"
	"github.com/example/homeflix/internal/history"
	"github.com/example/homeflix/internal/member"
)

// View is the plain-data render model for one client. Rebuilt on every
// GET from the current session state; nothing in it is retained.
type View struct {
	Member           MemberView     `json:"member"`
	Tab              catalog.Tab    `json:"tab"`
	Entities         []EntityView   `json:"entities"`
	GenreRows        []GenreRowView `json:"genreRows,omitempty"`
	Hero             *EntityView    `json:"hero,omitempty"`
	ContinueWatching []HistoryRow   `json:"continueWatching,omitempty"`
	SeriesDetail     *SeriesDetail  `json:"seriesDetail,omitempty"`
}

// MemberView is the logged-in member without the password.
type MemberView struct {
	Key  string      `json:"key,omitempty"`
	Name string      `json:"name"`
	Role member.Role `json:"role"`
}

// EntityView is one browse card: a movie or a collapsed series.
type EntityView struct {
	Key          string `json:"key,omitempty"` // empty for series cards
	Title        string `json:"title"`
	Type         string `json:"type"` // "movie" or "series"
	Genre        string `json:"genre,omitempty"`
	Description  string `json:"desc,omitempty"`
	ThumbnailURL string `json:"thumbnail,omitempty"`
	DownloadURL  string `json:"downloadUrl,omitempty"`
	IsMultiAudio bool   `json:"isMultiAudio,omitempty"`
	SeriesName   string `json:"seriesName,omitempty"`
	EpisodeCount int    `json:"episodeCount,omitempty"`
}

type GenreRowView struct {
	Genre    string       `json:"genre"`
	Entities []EntityView `json:"entities"`
}

// HistoryRow is one continue-watching card.
type HistoryRow struct {
	EntryKey  string     `json:"entryKey"`
	Entity    EntityView `json:"entity"`
	Timestamp int64      `json:"timestamp"`
	// Deleted marks a row rendered from the stored snapshot because
	// the source left the catalog.
	Deleted bool `json:"deleted,omitempty"`
}

// SeriesDetail is the open series modal.
type SeriesDetail struct {
	SeriesName string        `json:"seriesName"`
	Meta       EntityView    `json:"meta"`
	Seasons    []int         `json:"seasons"`
	Episodes   []EpisodeView `json:"episodes"`
}

type EpisodeView struct {
	Key          string `json:"key"`
	Season       int    `json:"season"`
	Episode      int    `json:"episode"`
	EpisodeTitle string `json:"epTitle,omitempty"`
	DownloadURL  string `json:"downloadUrl,omitempty"`
	IsMultiAudio bool   `json:"isMultiAudio,omitempty"`
}

// view assembles the render model for the current state.
func (s *Session) view() View {
	filtered := catalog.Filter(s.entities, s.tab)

	v := View{
		Member: MemberView{Key: s.current.Key, Name: s.current.Name, Role: s.current.Role},
		Tab:    s.tab,
	}
	v.Entities = make([]EntityView, 0, len(filtered))
	for _, e := range filtered {
		v.Entities = append(v.Entities, entityView(e))
	}
	for _, row := range catalog.GenreRows(filtered) {
		gr := GenreRowView{Genre: row.Genre}
		for _, e := range row.Entities {
			gr.Entities = append(gr.Entities, entityView(e))
		}
		v.GenreRows = append(v.GenreRows, gr)
	}
	v.Hero = s.hero(filtered)
	v.ContinueWatching = s.continueWatching()
	v.SeriesDetail = s.seriesDetail()
	return v
}

// hero resolves the explicit selection, or defaults to the last entity
// of the filtered list. A group hero gets the first episode's S/E
// appended to its description.
func (s *Session) hero(filtered []catalog.DisplayEntity) *EntityView {
	var e catalog.DisplayEntity
	switch {
	case s.heroSeries != "":
		if g := catalog.FindGroup(s.entities, s.heroSeries); g != nil {
			e = catalog.DisplayEntity{Group: g}
		}
	case s.heroKey != "":
		if it := catalog.FindItem(s.entities, s.heroKey); it != nil {
			e = catalog.DisplayEntity{Item: it}
		}
	}
	if e.Item == nil && e.Group == nil {
		if len(filtered) == 0 {
			return nil
		}
		e = filtered[len(filtered)-1]
	}
	h := entityView(e)
	if e.IsGroup() && len(e.Group.Episodes) > 0 {
		first := e.Group.Episodes[0]
		h.Description = fmt.Sprintf("%s S%d E%d", h.Description, first.Season, first.Episode)
	}
	return &h
}

func (s *Session) continueWatching() []HistoryRow {
	projected := history.Project(s.current.History, s.entities)
	if len(projected) == 0 {
		return nil
	}
	rows := make([]HistoryRow, 0, len(projected))
	for _, p := range projected {
		rows = append(rows, HistoryRow{
			EntryKey:  p.EntryKey,
			Entity:    entityView(p.Entity),
			Timestamp: p.Timestamp,
			Deleted:   p.Fallback,
		})
	}
	return rows
}

func (s *Session) seriesDetail() *SeriesDetail {
	if s.openSeries == "" {
		return nil
	}
	g := catalog.FindGroup(s.entities, s.openSeries)
	if g == nil {
		return nil
	}
	d := &SeriesDetail{
		SeriesName: g.SeriesName,
		Meta:       entityView(catalog.DisplayEntity{Group: g}),
		Seasons:    g.Seasons(),
	}
	for _, ep := range g.Episodes {
		d.Episodes = append(d.Episodes, EpisodeView{
			Key:          ep.Key,
			Season:       ep.Season,
			Episode:      ep.Episode,
			EpisodeTitle: ep.EpisodeTitle,
			DownloadURL:  ep.DownloadURL,
			IsMultiAudio: ep.IsMultiAudio,
		})
	}
	return d
}

func entityView(e catalog.DisplayEntity) EntityView {
	meta := e.Meta()
	v := EntityView{
		Title:        e.DisplayTitle(),
		Genre:        meta.Genre,
		Description:  meta.Description,
		ThumbnailURL: meta.ThumbnailURL,
		DownloadURL:  meta.DownloadURL,
		IsMultiAudio: meta.IsMultiAudio,
	}
	if e.IsGroup() {
		v.Type = "series"
		v.SeriesName = e.Group.SeriesName
		v.EpisodeCount = len(e.Group.Episodes)
	} else {
		v.Type = "movie"
		v.Key = e.Item.Key
	}
	return v
}

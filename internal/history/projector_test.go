package history

import (
	"testing"
	"time"

	"github.com/example/homeflix/internal/catalog"
)

func liveCatalog() []catalog.DisplayEntity {
	return catalog.Group([]catalog.Item{
		{Key: "m1", Title: "Solaris", Kind: catalog.KindMovie, Genre: "SciFi"},
		{Key: "e1", Title: "Dark", Kind: catalog.KindEpisode, SeriesName: "Dark", Season: 1, Episode: 1},
		{Key: "e2", Title: "Dark", Kind: catalog.KindEpisode, SeriesName: "Dark", Season: 1, Episode: 2},
	})
}

func groupEntry(series string, ts int64) Entry {
	return Entry{SourceKey: "e1", Title: series, SeriesName: series, IsGroup: true, Kind: catalog.KindEpisode, Timestamp: ts}
}

func movieEntry(title string, ts int64) Entry {
	return Entry{SourceKey: "m1", Title: title, Kind: catalog.KindMovie, Timestamp: ts}
}

// ─── Project ─────────────────────────────────────────────────────────────────

func TestProject_EmptyHistory(t *testing.T) {
	if got := Project(nil, liveCatalog()); len(got) != 0 {
		t.Fatalf("expected no rows, got %d", len(got))
	}
}

func TestProject_ResolvesLiveGroup(t *testing.T) {
	entries := map[string]Entry{"h1": groupEntry("Dark", 100)}
	got := Project(entries, liveCatalog())
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	row := got[0]
	if row.Fallback {
		t.Fatal("live group must not be a fallback")
	}
	if !row.Entity.IsGroup() || len(row.Entity.Group.Episodes) != 2 {
		t.Fatalf("expected the live group with 2 episodes, got %+v", row.Entity)
	}
}

func TestProject_ResolvesLiveMovieByTitle(t *testing.T) {
	entries := map[string]Entry{"h1": movieEntry("Solaris", 100)}
	got := Project(entries, liveCatalog())
	if got[0].Fallback {
		t.Fatal("live movie must not be a fallback")
	}
	if got[0].Entity.Item.Key != "m1" {
		t.Fatalf("expected resolution to the live item, got %+v", got[0].Entity)
	}
}

func TestProject_FallbackWhenDeleted(t *testing.T) {
	entry := movieEntry("Gone Movie", 100)
	entry.ThumbnailURL = "thumb"
	entries := map[string]Entry{"h1": entry}

	got := Project(entries, liveCatalog())
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	row := got[0]
	if !row.Fallback {
		t.Fatal("deleted source must resolve to the stored snapshot")
	}
	if row.Entity.Item == nil || row.Entity.Item.Title != "Gone Movie" || row.Entity.Item.ThumbnailURL != "thumb" {
		t.Fatalf("snapshot fields lost: %+v", row.Entity)
	}
}

func TestProject_GroupFallbackRendersAsSeries(t *testing.T) {
	entries := map[string]Entry{"h1": groupEntry("Vanished Show", 100)}
	got := Project(entries, liveCatalog())
	row := got[0]
	if !row.Fallback || !row.Entity.IsGroup() {
		t.Fatalf("expected series-shaped fallback, got %+v", row)
	}
	if row.Entity.Group.SeriesName != "Vanished Show" {
		t.Fatalf("expected snapshot series name, got %q", row.Entity.Group.SeriesName)
	}
}

func TestProject_SortedByTimestampDescending(t *testing.T) {
	entries := map[string]Entry{
		"old":   movieEntry("Solaris", 100),
		"newer": groupEntry("Dark", 300),
		"mid":   movieEntry("Gone", 200),
	}
	got := Project(entries, liveCatalog())
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	if got[0].EntryKey != "newer" || got[1].EntryKey != "mid" || got[2].EntryKey != "old" {
		t.Fatalf("expected newest-first order, got %q %q %q", got[0].EntryKey, got[1].EntryKey, got[2].EntryKey)
	}
}

// ─── Contains / NewEntry ─────────────────────────────────────────────────────

func TestContains_GroupMatchesBySeriesName(t *testing.T) {
	live := liveCatalog()
	entries := map[string]Entry{"h1": groupEntry("Dark", 100)}

	dark := catalog.DisplayEntity{Group: live[1].Group}
	if !Contains(entries, dark) {
		t.Fatal("expected series-name match")
	}
}

func TestContains_MovieMatchesByTitle(t *testing.T) {
	entries := map[string]Entry{"h1": movieEntry("Solaris", 100)}
	solaris := liveCatalog()[0]
	if !Contains(entries, solaris) {
		t.Fatal("expected title match")
	}
}

func TestContains_MovieDoesNotMatchGroupEntry(t *testing.T) {
	// A group entry whose series name equals a movie title must not
	// suppress the movie's own history insert.
	entries := map[string]Entry{"h1": groupEntry("Solaris", 100)}
	solaris := liveCatalog()[0]
	if Contains(entries, solaris) {
		t.Fatal("group entry must not match a standalone movie")
	}
}

func TestNewEntry_SnapshotsGroupMetadata(t *testing.T) {
	live := liveCatalog()
	now := time.UnixMilli(12345)

	e := NewEntry(catalog.DisplayEntity{Group: live[1].Group}, now)
	if !e.IsGroup || e.SeriesName != "Dark" {
		t.Fatalf("expected group entry for Dark, got %+v", e)
	}
	if e.SourceKey != "e1" {
		t.Fatalf("expected source key of first-seen episode, got %q", e.SourceKey)
	}
	if e.Timestamp != 12345 {
		t.Fatalf("expected timestamp 12345, got %d", e.Timestamp)
	}
}

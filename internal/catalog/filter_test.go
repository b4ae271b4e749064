package catalog

import "testing"

func sampleEntities() []DisplayEntity {
	return Group([]Item{
		movie("m1", "A"),
		episode("e1", "X", 1, 1),
		movie("m2", "B"),
		episode("e2", "Y", 1, 1),
	})
}

func TestFilter_AllPassesEverything(t *testing.T) {
	entities := sampleEntities()
	got := Filter(entities, TabAll)
	if len(got) != len(entities) {
		t.Fatalf("expected %d entities, got %d", len(entities), len(got))
	}
}

func TestFilter_MoviesKeepsOnlyStandaloneMovies(t *testing.T) {
	got := Filter(sampleEntities(), TabMovies)
	if len(got) != 2 {
		t.Fatalf("expected 2 movies, got %d", len(got))
	}
	for _, e := range got {
		if e.IsGroup() || e.Item.Kind != KindMovie {
			t.Fatalf("movies tab leaked non-movie entity: %+v", e)
		}
	}
	if got[0].Item.Key != "m1" || got[1].Item.Key != "m2" {
		t.Fatal("movies filter must preserve relative order")
	}
}

func TestFilter_SeriesKeepsOnlyGroups(t *testing.T) {
	got := Filter(sampleEntities(), TabSeries)
	if len(got) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(got))
	}
	for _, e := range got {
		if !e.IsGroup() {
			t.Fatalf("series tab leaked non-group entity: %+v", e)
		}
	}
	if got[0].Group.SeriesName != "X" || got[1].Group.SeriesName != "Y" {
		t.Fatal("series filter must preserve relative order")
	}
}

func TestFilter_GroupNeverClassifiedAsMovie(t *testing.T) {
	// A group whose inherited metadata says "movie" is still a series.
	ep := episode("e1", "X", 1, 1)
	ep.Kind = KindEpisode
	entities := Group([]Item{ep})
	entities[0].Group.Meta.Kind = KindMovie

	if got := Filter(entities, TabMovies); len(got) != 0 {
		t.Fatalf("group must never pass the movies filter, got %d", len(got))
	}
	if got := Filter(entities, TabSeries); len(got) != 1 {
		t.Fatalf("group must pass the series filter, got %d", len(got))
	}
}

func TestGenreRows_FirstSeenOrderSkipsEmpty(t *testing.T) {
	a := movie("1", "A")
	a.Genre = "Action"
	b := movie("2", "B")
	b.Genre = "Drama"
	c := movie("3", "C")
	c.Genre = "Action"
	d := movie("4", "D") // no genre

	rows := GenreRows(Group([]Item{a, b, c, d}))
	if len(rows) != 2 {
		t.Fatalf("expected 2 genre rows, got %d", len(rows))
	}
	if rows[0].Genre != "Action" || rows[1].Genre != "Drama" {
		t.Fatalf("expected first-seen genre order, got %q then %q", rows[0].Genre, rows[1].Genre)
	}
	if len(rows[0].Entities) != 2 || len(rows[1].Entities) != 1 {
		t.Fatalf("unexpected row sizes: %d and %d", len(rows[0].Entities), len(rows[1].Entities))
	}
}

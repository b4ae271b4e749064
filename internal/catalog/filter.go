package catalog

// Filter returns the subsequence of entities visible under the given
// tab, preserving relative order. Groups are only ever series; items are
// only ever movies, regardless of their metadata.
func Filter(entities []DisplayEntity, tab Tab) []DisplayEntity {
	if tab == TabAll || tab == "" {
		return entities
	}
	out := make([]DisplayEntity, 0, len(entities))
	for _, e := range entities {
		switch tab {
		case TabSeries:
			if e.IsGroup() {
				out = append(out, e)
			}
		case TabMovies:
			if !e.IsGroup() && e.Item.Kind == KindMovie {
				out = append(out, e)
			}
		}
	}
	return out
}

// GenreRow is one genre shelf of the browse view.
type GenreRow struct {
	Genre    string
	Entities []DisplayEntity
}

// GenreRows buckets entities by genre in first-seen genre order.
// Entities without a genre are skipped.
func GenreRows(entities []DisplayEntity) []GenreRow {
	index := make(map[string]int)
	var rows []GenreRow
	for _, e := range entities {
		genre := e.Meta().Genre
		if genre == "" {
			continue
		}
		i, ok := index[genre]
		if !ok {
			i = len(rows)
			index[genre] = i
			rows = append(rows, GenreRow{Genre: genre})
		}
		rows[i].Entities = append(rows[i].Entities, e)
	}
	return rows
}

package catalog

import "sort"

// Group collapses a flat item list into display entities: movies pass
// through in place, series episodes collapse into one SeriesGroup
// positioned where the first episode of that series appeared. Group
// metadata is inherited from the first-seen episode. Episode lists are
// sorted by (season, episode) ascending with a stable sort, so records
// with duplicate coordinates keep their input order.
//
// Episode records with an empty series name degrade to standalone
// entities. The input is never modified.
func Group(items []Item) []DisplayEntity {
	out := make([]DisplayEntity, 0, len(items))
	groups := make(map[string]*SeriesGroup)

	for i := range items {
		it := items[i]
		if it.Kind == KindEpisode && it.SeriesName != "" {
			g, ok := groups[it.SeriesName]
			if !ok {
				g = &SeriesGroup{SeriesName: it.SeriesName, Meta: it}
				groups[it.SeriesName] = g
				out = append(out, DisplayEntity{Group: g})
			}
			g.Episodes = append(g.Episodes, it)
			continue
		}
		out = append(out, DisplayEntity{Item: &it})
	}

	for _, g := range groups {
		eps := g.Episodes
		sort.SliceStable(eps, func(i, j int) bool {
			if eps[i].Season != eps[j].Season {
				return eps[i].Season < eps[j].Season
			}
			return eps[i].Episode < eps[j].Episode
		})
	}
	return out
}

// FindGroup returns the series group with the given name, or nil.
func FindGroup(entities []DisplayEntity, seriesName string) *SeriesGroup {
	for _, e := range entities {
		if e.Group != nil && e.Group.SeriesName == seriesName {
			return e.Group
		}
	}
	return nil
}

// FindItem returns the standalone entity whose item has the given store
// key, or nil.
func FindItem(entities []DisplayEntity, key string) *Item {
	for _, e := range entities {
		if e.Item != nil && e.Item.Key == key {
			return e.Item
		}
	}
	return nil
}

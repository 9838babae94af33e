package search

import (
	"cmp"
	"slices"

	"github.com/theoremus-urban-solutions/journey-planner/model"
)

// Merge deduplicates journeys by signature, drops every journey dominated
// by another on arrival, changes and departure, orders the rest by arrival,
// changes, departure and signature, and keeps at most limit of them.
func Merge(journeys []model.Journey, limit int) []model.Journey {
	seen := make(map[string]bool, len(journeys))
	unique := make([]model.Journey, 0, len(journeys))
	for _, j := range journeys {
		sig := j.Signature()
		if seen[sig] {
			continue
		}
		seen[sig] = true
		unique = append(unique, j)
	}

	out := make([]model.Journey, 0, len(unique))
	for i, j := range unique {
		dominated := false
		for k, o := range unique {
			if k != i && o.Dominates(j) {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, j)
		}
	}

	slices.SortFunc(out, func(a, b model.Journey) int {
		if c := cmp.Compare(a.ArrivalTime, b.ArrivalTime); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Changes, b.Changes); c != 0 {
			return c
		}
		if c := cmp.Compare(a.DepartureTime, b.DepartureTime); c != 0 {
			return c
		}
		return cmp.Compare(a.Signature(), b.Signature())
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

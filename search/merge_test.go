package search

import (
	"testing"

	"github.com/theoremus-urban-solutions/journey-planner/model"
)

func journey(dep, arr string, changes int, trip string) model.Journey {
	d, a := model.MustParseServiceTime(dep), model.MustParseServiceTime(arr)
	return model.NewJourney(d, changes, []model.Leg{{
		Mode: model.Tram, FromStation: "A", ToStation: "C", Departure: d, Arrival: a, TripID: trip,
	}})
}

func TestMerge(t *testing.T) {
	fast := journey("09:00", "09:25", 1, "fast")
	direct := journey("09:05", "09:50", 0, "direct")
	slow := journey("09:00", "09:55", 1, "slow")
	later := journey("09:10", "09:25", 1, "later")

	tests := []struct {
		name  string
		in    []model.Journey
		limit int
		want  []string
	}{
		{"pareto front ordered by arrival", []model.Journey{direct, fast}, 5, []string{"fast", "direct"}},
		{"duplicates removed", []model.Journey{fast, fast, direct}, 5, []string{"fast", "direct"}},
		{"dominated dropped", []model.Journey{slow, fast, direct}, 5, []string{"fast", "direct"}},
		{"later departure dominates", []model.Journey{fast, later}, 5, []string{"later"}},
		{"limit", []model.Journey{direct, fast}, 1, []string{"fast"}},
		{"empty", nil, 5, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.in, tt.limit)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, got)
			}
			for i, j := range got {
				if j.Legs[0].TripID != tt.want[i] {
					t.Errorf("Position %d: expected %s, got %s", i, tt.want[i], j.Legs[0].TripID)
				}
			}
		})
	}
}

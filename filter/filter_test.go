package filter

import (
	"errors"
	"testing"
)

func TestNewGraphFilter_EmptyIsConfigurationError(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{name: "no options"},
		{name: "all lists empty", opts: []Option{Routes(), Stations(), Services(), Agencies()}},
		{name: "blank ids only", opts: []Option{Routes("", "  ")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewGraphFilter(tt.opts...)
			if !errors.Is(err, ErrEmptyFilter) {
				t.Fatalf("expected ErrEmptyFilter, got %v", err)
			}
			if f != nil {
				t.Errorf("expected nil filter on error")
			}
		})
	}
}

func TestGraphFilter_NilAllowsEverything(t *testing.T) {
	var f *GraphFilter
	if f.IsFiltered() {
		t.Error("nil filter should not report filtering")
	}
	if !f.ShouldIncludeRoute("r") || !f.ShouldIncludeStation("s") || !f.ShouldIncludeService("x") || !f.ShouldIncludeAgency("a") {
		t.Error("nil filter should allow every id")
	}
	if !f.ShouldIncludeStopCall(StopCall{RouteID: "r", StationID: "s"}) {
		t.Error("nil filter should allow every stop call")
	}
	if f.String() != "GraphFilter{none}" {
		t.Errorf("unexpected string %q", f.String())
	}
}

func TestGraphFilter_Dimensions(t *testing.T) {
	f, err := NewGraphFilter(Routes("bus1"), Stations("A", "C"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.IsFiltered() {
		t.Fatal("configured filter should be active")
	}

	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"allowed route", f.ShouldIncludeRoute("bus1"), true},
		{"other route", f.ShouldIncludeRoute("tram1"), false},
		{"allowed station", f.ShouldIncludeStation("A"), true},
		{"other station", f.ShouldIncludeStation("B"), false},
		{"unset service dimension", f.ShouldIncludeService("anything"), true},
		{"unset agency dimension", f.ShouldIncludeAgency("anything"), true},
		{"pair both allowed", f.ShouldIncludeStationPair("A", "C"), true},
		{"pair one excluded", f.ShouldIncludeStationPair("A", "B"), false},
		{"stop call allowed", f.ShouldIncludeStopCall(StopCall{RouteID: "bus1", StationID: "C"}), true},
		{"stop call wrong route", f.ShouldIncludeStopCall(StopCall{RouteID: "tram1", StationID: "C"}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if want := "GraphFilter{routes=bus1 stations=A,C}"; f.String() != want {
		t.Errorf("got %q, want %q", f.String(), want)
	}
}

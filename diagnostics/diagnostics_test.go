package diagnostics_test

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/theoremus-urban-solutions/journey-planner/diagnostics"
	"github.com/theoremus-urban-solutions/journey-planner/graph"
	"github.com/theoremus-urban-solutions/journey-planner/traversal"
)

func branchAt(arena *traversal.PathArena, nodes ...graph.NodeID) traversal.JourneyState {
	h := arena.Root(traversal.Step{Node: nodes[0], StateType: traversal.JourneyStart})
	for _, n := range nodes[1:] {
		h = arena.Extend(h, traversal.Step{Node: n, StateType: traversal.AtStation})
	}
	return traversal.JourneyState{
		Node:  nodes[len(nodes)-1],
		State: traversal.AtStationState{Node: nodes[len(nodes)-1]},
		Path:  h,
	}
}

func TestServiceReasons_Counters(t *testing.T) {
	arena := traversal.NewPathArena()
	diag := diagnostics.NewServiceReasons(true)

	b1 := branchAt(arena, 1, 2)
	b2 := branchAt(arena, 1, 3)

	for _, b := range []traversal.JourneyState{b1, b2, b1} {
		diag.IncrementTotalChecked()
		diag.RecordState(b)
	}
	diag.RecordReason(diagnostics.ReasonFor(traversal.HigherCost, b1))
	diag.RecordReason(diagnostics.ReasonFor(traversal.Continue, b1))
	diag.RecordReason(diagnostics.ReasonFor(traversal.Continue, b2))
	diag.RecordArrived()

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"total checked", diag.TotalChecked(), 3},
		{"arrived", diag.Arrived(), 1},
		{"continue", diag.Count(traversal.Continue), 2},
		{"higher cost at node 2", diag.CountAt(2, traversal.HigherCost), 1},
		{"higher cost at node 3", diag.CountAt(3, traversal.HigherCost), 0},
		{"AtStation states", diag.StateCount(traversal.AtStation), 3},
		{"visits of node 2", diag.Visits(2), 2},
		{"detailed reasons", len(diag.Reasons()), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %d, want %d", tt.got, tt.want)
			}
		})
	}

	snap := diag.Snapshot("run-1")
	if !snap.Conserved() {
		t.Errorf("Snapshot not conserved: %d reasons, %d arrived, %d checked", snap.TotalReasons(), snap.Arrived, snap.TotalChecked)
	}
	if node, visits := snap.MostVisited(); node != 2 || visits != 2 {
		t.Errorf("MostVisited = %d (%d), want 2 (2)", node, visits)
	}
}

func TestServiceReasons_NotDetailedKeepsCountsOnly(t *testing.T) {
	diag := diagnostics.NewServiceReasons(false)
	diag.RecordReason(diagnostics.ServiceReason{Code: traversal.TimedOut, Node: 5})
	if diag.Count(traversal.TimedOut) != 1 || len(diag.Reasons()) != 0 {
		t.Errorf("count=%d reasons=%d, want 1 and 0", diag.Count(traversal.TimedOut), len(diag.Reasons()))
	}
}

func TestSnapshot_MergeAndDominant(t *testing.T) {
	a := diagnostics.NewServiceReasons(false)
	b := diagnostics.NewServiceReasons(false)
	for i := 0; i < 3; i++ {
		a.RecordReason(diagnostics.ServiceReason{Code: traversal.AlreadyDeparted, Node: 7})
		a.IncrementTotalChecked()
	}
	b.RecordReason(diagnostics.ServiceReason{Code: traversal.AlreadyDeparted, Node: 7})
	b.RecordReason(diagnostics.ServiceReason{Code: traversal.TooManyChanges, Node: 8})
	b.RecordReason(diagnostics.ServiceReason{Code: traversal.TooManyChanges, Node: 8})
	b.RecordReason(diagnostics.ServiceReason{Code: traversal.Continue, Node: 8})
	b.IncrementTotalChecked()

	sa, sb := a.Snapshot("a"), b.Snapshot("b")
	merged := sa.Merge(sb)

	if merged.Count(traversal.AlreadyDeparted) != 4 || merged.CountAt(7, traversal.AlreadyDeparted) != 4 {
		t.Errorf("AlreadyDeparted = %d at node 7 = %d, want 4/4",
			merged.Count(traversal.AlreadyDeparted), merged.CountAt(7, traversal.AlreadyDeparted))
	}
	if merged.TotalChecked != 4 || len(merged.RunIDs) != 2 {
		t.Errorf("TotalChecked = %d, runs = %v", merged.TotalChecked, merged.RunIDs)
	}
	if sa.Count(traversal.AlreadyDeparted) != 3 {
		t.Error("Merge modified its receiver")
	}

	dominant := merged.Dominant(5)
	if len(dominant) != 2 {
		t.Fatalf("Dominant = %v, want two invalid codes", dominant)
	}
	if dominant[0].Code != traversal.AlreadyDeparted || dominant[1].Code != traversal.TooManyChanges {
		t.Errorf("Dominant order = %v", dominant)
	}
	if got := diagnostics.MergeAll(sa, sb); got.TotalReasons() != merged.TotalReasons() {
		t.Errorf("MergeAll total = %d, want %d", got.TotalReasons(), merged.TotalReasons())
	}
}

func TestFrontierStats(t *testing.T) {
	var all, left, right diagnostics.FrontierStats
	values := []int{2, 4, 4, 4, 5, 5, 7, 9}
	for i, v := range values {
		all.Update(v)
		if i < 3 {
			left.Update(v)
		} else {
			right.Update(v)
		}
	}
	if math.Abs(all.Mean-5) > 1e-9 || math.Abs(all.StdDev()-2) > 1e-9 || all.Max != 9 {
		t.Errorf("mean=%f stddev=%f max=%d, want 5, 2, 9", all.Mean, all.StdDev(), all.Max)
	}
	combined := left.Combine(right)
	if combined.Count != all.Count || math.Abs(combined.Mean-all.Mean) > 1e-9 || math.Abs(combined.StdDev()-all.StdDev()) > 1e-9 {
		t.Errorf("Combine = %+v, want %+v", combined, all)
	}
}

func TestDiagnosticReason_JSON(t *testing.T) {
	arena := traversal.NewPathArena()
	branch := branchAt(arena, 10, 11, 12)
	reason := diagnostics.Describe(diagnostics.ReasonFor(traversal.StationClosed, branch))

	if reason.IsValid || reason.Text != "StationClosed in AtStation via 10>11>12" {
		t.Errorf("Describe = %+v", reason)
	}
	if again := diagnostics.Describe(diagnostics.ReasonFor(traversal.StationClosed, branch)); again.Text != reason.Text {
		t.Error("Text must be a pure function of its inputs")
	}

	data, err := json.Marshal(reason)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"code":"StationClosed"`) || !strings.Contains(string(data), `"stateType":"AtStation"`) {
		t.Errorf("Unexpected JSON: %s", data)
	}
	var back diagnostics.DiagnosticReason
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.Code != traversal.StationClosed || back.StateType != traversal.AtStation || len(back.Path) != 3 {
		t.Errorf("Round trip = %+v", back)
	}

	diag := diagnostics.NewServiceReasons(false)
	diag.RecordReason(diagnostics.ReasonFor(traversal.TimedOut, branch))
	if _, err := json.Marshal(diag.Snapshot("json")); err != nil {
		t.Errorf("Snapshot JSON failed: %v", err)
	}
	t.Logf("✓ %s", data)
}

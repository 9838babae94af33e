package traversal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/theoremus-urban-solutions/journey-planner/filter"
	"github.com/theoremus-urban-solutions/journey-planner/graph"
	"github.com/theoremus-urban-solutions/journey-planner/internal/testnetwork"
	"github.com/theoremus-urban-solutions/journey-planner/model"
	"github.com/theoremus-urban-solutions/journey-planner/traversal"
)

var at = model.MustParseServiceTime

type harness struct {
	t   *testing.T
	tx  graph.Transaction
	req model.JourneyRequest
	m   *traversal.Machine
}

func newHarness(t *testing.T, store graph.Store, start string, opts ...model.RequestOption) *harness {
	t.Helper()
	req, err := model.NewJourneyRequest(
		model.StationLocation(testnetwork.StationA), model.StationLocation(testnetwork.StationC),
		testnetwork.QueryDate, at(start), opts...)
	if err != nil {
		t.Fatalf("NewJourneyRequest failed: %v", err)
	}
	tx, err := store.BeginRead(context.Background())
	if err != nil {
		t.Fatalf("BeginRead failed: %v", err)
	}
	t.Cleanup(func() { tx.Close() })
	h := &harness{t: t, tx: tx, req: req}
	h.m = traversal.NewMachine(tx, &h.req, traversal.DefaultLimits(), traversal.NewPathArena())
	return h
}

func (h *harness) node(label graph.Label, id string) graph.NodeID {
	h.t.Helper()
	n, ok, err := h.tx.FindNode(label, id)
	if err != nil || !ok {
		h.t.Fatalf("FindNode(%s, %q) = %v, %v", label, id, ok, err)
	}
	return n
}

// offer expands the branch and offers the first relationship of type typ
// leading to target (any target when target is negative).
func (h *harness) offer(js traversal.JourneyState, typ graph.RelType, target graph.NodeID) traversal.Outcome {
	h.t.Helper()
	rels, err := h.tx.Expand(js.Node)
	if err != nil {
		h.t.Fatalf("Expand failed: %v", err)
	}
	for _, rel := range rels {
		if rel.Type != typ || (target >= 0 && rel.To != target) {
			continue
		}
		out, err := h.m.Next(js, rel)
		if err != nil {
			h.t.Fatalf("Next(%s) failed: %v", rel, err)
		}
		if out.Followed {
			return out
		}
	}
	h.t.Fatalf("No followed %s relationship from %s", typ, js)
	return traversal.Outcome{}
}

func (h *harness) mustAccept(js traversal.JourneyState, typ graph.RelType, target graph.NodeID) traversal.JourneyState {
	h.t.Helper()
	out := h.offer(js, typ, target)
	if !out.Accepted {
		h.t.Fatalf("%s from %s rejected: %s", typ, js, out.Reason)
	}
	return out.Branch
}

func TestMachine_TramTramJourney(t *testing.T) {
	h := newHarness(t, testnetwork.ABC(t), "09:00")
	a := h.node(graph.LabelStation, testnetwork.StationA)
	tram1A := h.node(graph.LabelRouteStation, testnetwork.RouteTram1+":"+testnetwork.StationA)
	tram2B := h.node(graph.LabelRouteStation, testnetwork.RouteTram2+":"+testnetwork.StationB)
	b1 := h.node(graph.LabelPlatform, testnetwork.PlatformB1)
	b2 := h.node(graph.LabelPlatform, testnetwork.PlatformB2)
	b := h.node(graph.LabelStation, testnetwork.StationB)

	js := h.m.Start(a, at("09:00"))
	js = h.mustAccept(js, graph.RelBoard, tram1A)
	if js.Type() != traversal.AtRouteStation {
		t.Fatalf("Expected AtRouteStation, got %s", js.Type())
	}

	out := h.offer(js, graph.RelGoesTo, -1)
	if !out.Accepted || out.Reason != traversal.OnTram {
		t.Fatalf("Boarding tram1: accepted=%v reason=%s", out.Accepted, out.Reason)
	}
	js = out.Branch
	if js.Clock != at("09:10") || js.Changes != 0 || js.TripID != "tram1-0900" {
		t.Errorf("After tram1: %s", js)
	}

	js = h.mustAccept(js, graph.RelDepart, b1)
	js = h.mustAccept(js, graph.RelLeavePlatform, b)
	js = h.mustAccept(js, graph.RelEnterPlatform, b2)
	js = h.mustAccept(js, graph.RelBoard, tram2B)
	js = h.mustAccept(js, graph.RelGoesTo, -1)
	if js.Changes != 1 || js.Clock != at("09:25") || js.Boardings != 2 {
		t.Errorf("After tram2: %s boardings=%d", js, js.Boardings)
	}

	steps := js.Path.Steps()
	if len(steps) != js.Path.Depth() || steps[0].StateType != traversal.JourneyStart {
		t.Errorf("Path steps = %d, depth = %d, first = %s", len(steps), js.Path.Depth(), steps[0].StateType)
	}
	if steps[len(steps)-1].Departure != at("09:15") {
		t.Errorf("Last step departure = %s, want 09:15", steps[len(steps)-1].Departure)
	}
	if !js.Path.Visits(b) || js.Path.Visits(h.node(graph.LabelStation, testnetwork.StationD)) {
		t.Error("Visits does not match the path")
	}
	t.Logf("✓ %s", js)
}

func TestMachine_BoardingRejections(t *testing.T) {
	routeFilter, err := filter.NewGraphFilter(filter.Routes(testnetwork.RouteBus))
	if err != nil {
		t.Fatal(err)
	}
	serviceFilter, err := filter.NewGraphFilter(filter.Services("weekend"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		start string
		opts  []model.RequestOption
		typ   graph.RelType
		want  traversal.ReasonCode
	}{
		{"already departed", "09:01", nil, graph.RelGoesTo, traversal.AlreadyDeparted},
		{"wait too long", "07:00", nil, graph.RelGoesTo, traversal.DoesNotOperateOnTime},
		{"route filtered", "09:00", []model.RequestOption{model.WithFilter(routeFilter)}, graph.RelBoard, traversal.RouteNotIncluded},
		{"service filtered", "09:00", []model.RequestOption{model.WithFilter(serviceFilter)}, graph.RelGoesTo, traversal.ServiceNotIncluded},
		{"mode excluded", "09:00", []model.RequestOption{model.WithModes(model.Bus)}, graph.RelBoard, traversal.TransportModeWrong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testnetwork.ABC(t), tt.start, tt.opts...)
			a := h.node(graph.LabelStation, testnetwork.StationA)
			tram1A := h.node(graph.LabelRouteStation, testnetwork.RouteTram1+":"+testnetwork.StationA)
			js := h.m.Start(a, at(tt.start))
			var out traversal.Outcome
			if tt.typ == graph.RelBoard {
				out = h.offer(js, graph.RelBoard, tram1A)
			} else {
				js = h.mustAccept(js, graph.RelBoard, tram1A)
				out = h.offer(js, graph.RelGoesTo, -1)
			}
			if out.Accepted || out.Reason != tt.want {
				t.Errorf("accepted=%v reason=%s, want rejected with %s", out.Accepted, out.Reason, tt.want)
			}
			if out.Reason.IsValid() {
				t.Errorf("%s should be an invalid reason", out.Reason)
			}
		})
	}
}

func TestMachine_ArriveByFirstWait(t *testing.T) {
	tests := []struct {
		name     string
		opts     []model.RequestOption
		accepted bool
	}{
		{"depart at keeps the initial wait cap", nil, false},
		{"arrive by waits within the journey window", []model.RequestOption{model.WithArriveBy()}, true},
		{"arrive by still bounded by duration", []model.RequestOption{model.WithArriveBy(), model.WithMaxDuration(time.Hour)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testnetwork.ABC(t), "09:30", tt.opts...)
			js := h.m.Start(h.node(graph.LabelStation, testnetwork.StationA), at("07:30"))
			js = h.mustAccept(js, graph.RelBoard, h.node(graph.LabelRouteStation, testnetwork.RouteTram1+":"+testnetwork.StationA))
			out := h.offer(js, graph.RelGoesTo, -1)
			if out.Accepted != tt.accepted {
				t.Fatalf("accepted=%v reason=%s, want accepted=%v", out.Accepted, out.Reason, tt.accepted)
			}
			if !out.Accepted && out.Reason != traversal.DoesNotOperateOnTime {
				t.Errorf("reason=%s, want DoesNotOperateOnTime", out.Reason)
			}
		})
	}
}

func TestMachine_ChangeLimitAndClosedStation(t *testing.T) {
	t.Run("too many changes", func(t *testing.T) {
		h := newHarness(t, testnetwork.ABC(t), "09:00", model.WithMaxChanges(0))
		js := h.m.Start(h.node(graph.LabelStation, testnetwork.StationA), at("09:00"))
		js = h.mustAccept(js, graph.RelBoard, h.node(graph.LabelRouteStation, testnetwork.RouteTram1+":"+testnetwork.StationA))
		js = h.mustAccept(js, graph.RelGoesTo, -1)
		js = h.mustAccept(js, graph.RelDepart, h.node(graph.LabelPlatform, testnetwork.PlatformB1))
		js = h.mustAccept(js, graph.RelLeavePlatform, -1)
		js = h.mustAccept(js, graph.RelEnterPlatform, h.node(graph.LabelPlatform, testnetwork.PlatformB2))
		js = h.mustAccept(js, graph.RelBoard, -1)
		if out := h.offer(js, graph.RelGoesTo, -1); out.Accepted || out.Reason != traversal.TooManyChanges {
			t.Errorf("accepted=%v reason=%s, want TooManyChanges", out.Accepted, out.Reason)
		}
	})

	t.Run("closed station", func(t *testing.T) {
		h := newHarness(t, testnetwork.ABC(t), "09:00", model.WithClosedStations(testnetwork.StationB))
		js := h.m.Start(h.node(graph.LabelStation, testnetwork.StationA), at("09:00"))
		js = h.mustAccept(js, graph.RelBoard, h.node(graph.LabelRouteStation, testnetwork.RouteTram1+":"+testnetwork.StationA))
		js = h.mustAccept(js, graph.RelGoesTo, -1)
		if out := h.offer(js, graph.RelDepart, -1); out.Accepted || out.Reason != traversal.StationClosed {
			t.Errorf("accepted=%v reason=%s, want StationClosed", out.Accepted, out.Reason)
		}
	})
}

func TestMachine_WalkWithinGroupIsNotAChange(t *testing.T) {
	h := newHarness(t, testnetwork.ABC(t), "09:00")
	c := h.node(graph.LabelStation, testnetwork.StationC)
	d := h.node(graph.LabelStation, testnetwork.StationD)

	js := h.m.Start(h.node(graph.LabelStation, testnetwork.StationA), at("09:00"))
	js = h.mustAccept(js, graph.RelBoard, h.node(graph.LabelRouteStation, testnetwork.RouteBus+":"+testnetwork.StationA))
	js = h.mustAccept(js, graph.RelGoesTo, -1)
	js = h.mustAccept(js, graph.RelDepart, c)
	js = h.mustAccept(js, graph.RelWalksTo, d)

	if js.Type() != traversal.Walking || js.Changes != 0 || js.Walks != 1 {
		t.Errorf("After walk: %s walks=%d", js, js.Walks)
	}
	if js.Clock != at("09:53") {
		t.Errorf("Clock after 3 minute walk = %s, want 09:53", js.Clock)
	}
}

func TestMachine_PreviousDayServiceRollsOver(t *testing.T) {
	h := newHarness(t, testnetwork.Midnight(t), "00:15")
	js := h.m.Start(h.node(graph.LabelStation, testnetwork.StationA), at("00:15"))
	js = h.mustAccept(js, graph.RelBoard, h.node(graph.LabelRouteStation, testnetwork.RouteTram1+":"+testnetwork.StationA))

	rels, err := h.tx.Expand(js.Node)
	if err != nil {
		t.Fatal(err)
	}
	reasons := map[string]traversal.ReasonCode{}
	var boarded traversal.JourneyState
	for _, rel := range rels {
		out, err := h.m.Next(js, rel)
		if err != nil {
			t.Fatal(err)
		}
		reasons[rel.Props.String(graph.KeyTripID)] = out.Reason
		if out.Accepted {
			boarded = out.Branch
		}
	}
	if reasons["tram1-night"] != traversal.OnTram {
		t.Fatalf("Night tram reason = %s, want OnTram", reasons["tram1-night"])
	}
	if reasons["tram1-0900"] != traversal.DoesNotOperateOnTime {
		t.Errorf("Day tram reason = %s, want DoesNotOperateOnTime", reasons["tram1-0900"])
	}
	if boarded.Clock != at("00:45") {
		t.Errorf("Arrival = %s, want 00:45", boarded.Clock)
	}
	if last := boarded.Path.Step(); last.Departure != at("00:30") {
		t.Errorf("Departure = %s, want 00:30", last.Departure)
	}
}

func TestMachine_IllegalAndSkippedTransitions(t *testing.T) {
	h := newHarness(t, testnetwork.ABC(t), "09:00")
	js := h.m.Start(h.node(graph.LabelStation, testnetwork.StationA), at("09:00"))

	_, err := h.m.Next(js, graph.Relationship{Type: graph.RelType(200), To: js.Node})
	if !errors.Is(err, traversal.ErrIllegalTransition) {
		t.Errorf("Unknown relationship type: err = %v, want ErrIllegalTransition", err)
	}

	out, err := h.m.Next(js, graph.Relationship{Type: graph.RelDepart, To: js.Node})
	if err != nil || out.Followed {
		t.Errorf("DEPART from JourneyStart: followed=%v err=%v, want skipped", out.Followed, err)
	}

	done := h.m.Complete(js, 2*time.Minute)
	if done.Type() != traversal.JourneyComplete || done.Clock != at("09:02") {
		t.Errorf("Complete = %s", done)
	}
	out, err = h.m.Next(done, graph.Relationship{Type: graph.RelBoard, To: js.Node})
	if err != nil || out.Followed {
		t.Errorf("JourneyComplete should be terminal: followed=%v err=%v", out.Followed, err)
	}
}

func TestReasonCodes(t *testing.T) {
	for _, c := range traversal.ReasonCodes() {
		parsed, err := traversal.ParseReasonCode(c.String())
		if err != nil || parsed != c {
			t.Errorf("ParseReasonCode(%q) = %v, %v", c, parsed, err)
		}
	}
	valid := []traversal.ReasonCode{traversal.Continue, traversal.OnBus, traversal.Arrived, traversal.WalkOk}
	invalid := []traversal.ReasonCode{traversal.TimedOut, traversal.HigherCost, traversal.NotOnQueryDate, traversal.StationNotReachable}
	for _, c := range valid {
		if !c.IsValid() {
			t.Errorf("%s should be valid", c)
		}
	}
	for _, c := range invalid {
		if c.IsValid() {
			t.Errorf("%s should be invalid", c)
		}
	}
	if len(traversal.StateTypes()) != 8 {
		t.Errorf("Expected 8 state types, got %d", len(traversal.StateTypes()))
	}
}

func TestPathArena(t *testing.T) {
	arena := traversal.NewPathArena()
	root := arena.Root(traversal.Step{Node: 1, StateType: traversal.JourneyStart})
	mid := arena.Extend(root, traversal.Step{Node: 2, StateType: traversal.AtStation, HasRel: true})
	branchA := arena.Extend(mid, traversal.Step{Node: 3, StateType: traversal.Walking})
	branchB := arena.Extend(mid, traversal.Step{Node: 4, StateType: traversal.AtPlatform})

	if branchA.Depth() != 3 || branchB.Depth() != 3 || arena.Len() != 4 {
		t.Errorf("Depths %d/%d, arena %d", branchA.Depth(), branchB.Depth(), arena.Len())
	}
	prev, ok := branchB.Previous()
	if !ok || prev.Node() != 2 {
		t.Errorf("Previous of branch B = %v, %v", prev.Node(), ok)
	}
	if _, ok := root.Previous(); ok {
		t.Error("Root should have no previous step")
	}
	if branchA.Visits(4) {
		t.Error("Branches must not see each other's steps")
	}
	nodes := []graph.NodeID{}
	for _, s := range branchB.Steps() {
		nodes = append(nodes, s.Node)
	}
	if len(nodes) != 3 || nodes[0] != 1 || nodes[2] != 4 {
		t.Errorf("Steps = %v, want [1 2 4]", nodes)
	}
	if _, hasRel := mid.Relationship(); !hasRel {
		t.Error("Mid step should carry its relationship flag")
	}
}

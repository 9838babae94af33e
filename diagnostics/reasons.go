package diagnostics

import (
	"github.com/theoremus-urban-solutions/journey-planner/graph"
	"github.com/theoremus-urban-solutions/journey-planner/traversal"
)

// ServiceReason is one recorded decision: which code applied at which node,
// in which state, and the chain that led there.
type ServiceReason struct {
	Code      traversal.ReasonCode
	Node      graph.NodeID
	StateType traversal.StateType
	Path      traversal.HowIGotHere
}

// ReasonFor builds a ServiceReason for a branch.
func ReasonFor(code traversal.ReasonCode, js traversal.JourneyState) ServiceReason {
	return ServiceReason{Code: code, Node: js.Node, StateType: js.Type(), Path: js.Path}
}

// ServiceReasons aggregates the diagnostics of one run. It is not safe for
// concurrent use; parallel probes each own one and merge snapshots.
type ServiceReasons struct {
	detailed bool

	totalChecked int
	arrived      int
	codes        map[traversal.ReasonCode]int
	states       map[traversal.StateType]int
	visits       map[graph.NodeID]int
	nodeReasons  map[graph.NodeID]map[traversal.ReasonCode]int
	frontier     FrontierStats
	reasons      []ServiceReason
}

// NewServiceReasons creates an empty aggregator. When detailed is set every
// ServiceReason is kept, not only the counters.
func NewServiceReasons(detailed bool) *ServiceReasons {
	return &ServiceReasons{
		detailed:    detailed,
		codes:       map[traversal.ReasonCode]int{},
		states:      map[traversal.StateType]int{},
		visits:      map[graph.NodeID]int{},
		nodeReasons: map[graph.NodeID]map[traversal.ReasonCode]int{},
	}
}

func (s *ServiceReasons) RecordReason(r ServiceReason) {
	s.codes[r.Code]++
	byCode, ok := s.nodeReasons[r.Node]
	if !ok {
		byCode = map[traversal.ReasonCode]int{}
		s.nodeReasons[r.Node] = byCode
	}
	byCode[r.Code]++
	if s.detailed {
		s.reasons = append(s.reasons, r)
	}
}

func (s *ServiceReasons) RecordState(js traversal.JourneyState) {
	s.states[js.Type()]++
	s.visits[js.Node]++
}

func (s *ServiceReasons) RecordArrived() { s.arrived++ }

func (s *ServiceReasons) IncrementTotalChecked() { s.totalChecked++ }

// ObserveFrontier records the frontier size after an expansion.
func (s *ServiceReasons) ObserveFrontier(size int) { s.frontier.Update(size) }

func (s *ServiceReasons) Count(code traversal.ReasonCode) int { return s.codes[code] }

func (s *ServiceReasons) CountAt(node graph.NodeID, code traversal.ReasonCode) int {
	return s.nodeReasons[node][code]
}

func (s *ServiceReasons) StateCount(t traversal.StateType) int { return s.states[t] }

func (s *ServiceReasons) Visits(node graph.NodeID) int { return s.visits[node] }

func (s *ServiceReasons) TotalChecked() int { return s.totalChecked }

func (s *ServiceReasons) Arrived() int { return s.arrived }

// Reasons returns the recorded reasons; empty unless detailed.
func (s *ServiceReasons) Reasons() []ServiceReason { return s.reasons }

// Snapshot freezes the aggregator into an immutable value.
func (s *ServiceReasons) Snapshot(runID string) Snapshot {
	snap := Snapshot{
		RunIDs:       []string{runID},
		TotalChecked: s.totalChecked,
		Arrived:      s.arrived,
		Codes:        copyCounts(s.codes),
		States:       make(map[traversal.StateType]int, len(s.states)),
		Visits:       make(map[graph.NodeID]int, len(s.visits)),
		NodeReasons:  make(map[graph.NodeID]map[traversal.ReasonCode]int, len(s.nodeReasons)),
		Frontier:     s.frontier,
	}
	for k, v := range s.states {
		snap.States[k] = v
	}
	for k, v := range s.visits {
		snap.Visits[k] = v
	}
	for k, v := range s.nodeReasons {
		snap.NodeReasons[k] = copyCounts(v)
	}
	for _, r := range s.reasons {
		snap.Reasons = append(snap.Reasons, Describe(r))
	}
	return snap
}

func copyCounts(in map[traversal.ReasonCode]int) map[traversal.ReasonCode]int {
	out := make(map[traversal.ReasonCode]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

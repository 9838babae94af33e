package diagnostics

import (
	"cmp"
	"slices"

	"github.com/theoremus-urban-solutions/journey-planner/graph"
	"github.com/theoremus-urban-solutions/journey-planner/traversal"
)

// Snapshot is a frozen copy of one or more runs' diagnostics.
type Snapshot struct {
	RunIDs       []string                                      `json:"runIds"`
	TotalChecked int                                           `json:"totalChecked"`
	Arrived      int                                           `json:"arrived"`
	Codes        map[traversal.ReasonCode]int                  `json:"codes"`
	States       map[traversal.StateType]int                   `json:"states"`
	Visits       map[graph.NodeID]int                          `json:"visits"`
	NodeReasons  map[graph.NodeID]map[traversal.ReasonCode]int `json:"nodeReasons"`
	Frontier     FrontierStats                                 `json:"frontier"`
	Reasons      []DiagnosticReason                            `json:"reasons,omitempty"`
}

// ReasonCount pairs a code with how often it was recorded.
type ReasonCount struct {
	Code  traversal.ReasonCode `json:"code"`
	Count int                  `json:"count"`
}

func (s Snapshot) IsZero() bool { return len(s.RunIDs) == 0 }

func (s Snapshot) Count(code traversal.ReasonCode) int { return s.Codes[code] }

func (s Snapshot) CountAt(node graph.NodeID, code traversal.ReasonCode) int {
	return s.NodeReasons[node][code]
}

func (s Snapshot) StateCount(t traversal.StateType) int { return s.States[t] }

// TotalReasons is the number of reasons recorded across all codes.
func (s Snapshot) TotalReasons() int {
	n := 0
	for _, c := range s.Codes {
		n += c
	}
	return n
}

// Conserved reports whether every checked branch is accounted for by a
// reason or an arrival.
func (s Snapshot) Conserved() bool {
	return s.TotalReasons()+s.Arrived >= s.TotalChecked
}

// Dominant returns the n most frequent invalid codes, most frequent first.
func (s Snapshot) Dominant(n int) []ReasonCount {
	var out []ReasonCount
	for code, count := range s.Codes {
		if !code.IsValid() && count > 0 {
			out = append(out, ReasonCount{Code: code, Count: count})
		}
	}
	slices.SortFunc(out, func(a, b ReasonCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Code, b.Code)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// MostVisited returns the node checked most often, lowest id on ties.
func (s Snapshot) MostVisited() (graph.NodeID, int) {
	var best graph.NodeID
	count := 0
	for node, c := range s.Visits {
		if c > count || (c == count && node < best) {
			best, count = node, c
		}
	}
	return best, count
}

// Merge combines two snapshots; neither input is modified.
func (s Snapshot) Merge(o Snapshot) Snapshot {
	out := Snapshot{
		RunIDs:       append(slices.Clone(s.RunIDs), o.RunIDs...),
		TotalChecked: s.TotalChecked + o.TotalChecked,
		Arrived:      s.Arrived + o.Arrived,
		Codes:        map[traversal.ReasonCode]int{},
		States:       map[traversal.StateType]int{},
		Visits:       map[graph.NodeID]int{},
		NodeReasons:  map[graph.NodeID]map[traversal.ReasonCode]int{},
		Frontier:     s.Frontier.Combine(o.Frontier),
		Reasons:      append(slices.Clone(s.Reasons), o.Reasons...),
	}
	for _, in := range []Snapshot{s, o} {
		for k, v := range in.Codes {
			out.Codes[k] += v
		}
		for k, v := range in.States {
			out.States[k] += v
		}
		for k, v := range in.Visits {
			out.Visits[k] += v
		}
		for node, codes := range in.NodeReasons {
			dst, ok := out.NodeReasons[node]
			if !ok {
				dst = map[traversal.ReasonCode]int{}
				out.NodeReasons[node] = dst
			}
			for k, v := range codes {
				dst[k] += v
			}
		}
	}
	return out
}

// MergeAll folds snapshots in order.
func MergeAll(snaps ...Snapshot) Snapshot {
	var out Snapshot
	for i, s := range snaps {
		if i == 0 {
			out = s.Merge(Snapshot{})
			continue
		}
		out = out.Merge(s)
	}
	return out
}

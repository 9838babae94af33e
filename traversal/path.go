package traversal

import (
	"github.com/theoremus-urban-solutions/journey-planner/graph"
	"github.com/theoremus-urban-solutions/journey-planner/model"
)

// Step is one accepted move of a branch.
type Step struct {
	Node      graph.NodeID
	StateType StateType
	// Rel is the relationship that was followed; zero for the root.
	Rel    graph.Relationship
	HasRel bool
	Clock  model.ServiceTime
	// Departure is the (possibly shifted) departure time when the step
	// boarded or continued a trip.
	Departure model.ServiceTime
}

type arenaEntry struct {
	step   Step
	parent int32
}

// PathArena owns every HowIGotHere chain of one search run. It is append
// only and not safe for concurrent use.
type PathArena struct {
	entries []arenaEntry
}

func NewPathArena() *PathArena { return &PathArena{entries: make([]arenaEntry, 0, 1024)} }

// Len returns the number of steps stored.
func (a *PathArena) Len() int { return len(a.entries) }

// Root starts a new chain.
func (a *PathArena) Root(step Step) HowIGotHere {
	return a.add(step, -1)
}

// Extend appends step after prev.
func (a *PathArena) Extend(prev HowIGotHere, step Step) HowIGotHere {
	return a.add(step, prev.index)
}

func (a *PathArena) add(step Step, parent int32) HowIGotHere {
	a.entries = append(a.entries, arenaEntry{step: step, parent: parent})
	return HowIGotHere{arena: a, index: int32(len(a.entries) - 1)}
}

// HowIGotHere is a handle to the last step of a backward-only chain.
type HowIGotHere struct {
	arena *PathArena
	index int32
}

func (h HowIGotHere) IsZero() bool { return h.arena == nil }

func (h HowIGotHere) entry() arenaEntry { return h.arena.entries[h.index] }

// Step returns the step this handle points at.
func (h HowIGotHere) Step() Step { return h.entry().step }

func (h HowIGotHere) Node() graph.NodeID { return h.entry().step.Node }

func (h HowIGotHere) StateType() StateType { return h.entry().step.StateType }

// Relationship returns the relationship that led here, if any.
func (h HowIGotHere) Relationship() (graph.Relationship, bool) {
	s := h.entry().step
	return s.Rel, s.HasRel
}

// Previous returns the step before this one.
func (h HowIGotHere) Previous() (HowIGotHere, bool) {
	if h.IsZero() {
		return HowIGotHere{}, false
	}
	p := h.entry().parent
	if p < 0 {
		return HowIGotHere{}, false
	}
	return HowIGotHere{arena: h.arena, index: p}, true
}

// Depth is the number of steps in the chain, root included.
func (h HowIGotHere) Depth() int {
	n := 0
	for cur, ok := h, !h.IsZero(); ok; cur, ok = cur.Previous() {
		n++
	}
	return n
}

// Steps returns the chain from root to this step.
func (h HowIGotHere) Steps() []Step {
	if h.IsZero() {
		return nil
	}
	var out []Step
	for cur, ok := h, true; ok; cur, ok = cur.Previous() {
		out = append(out, cur.Step())
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Visits reports whether node appears anywhere in the chain.
func (h HowIGotHere) Visits(node graph.NodeID) bool {
	for cur, ok := h, !h.IsZero(); ok; cur, ok = cur.Previous() {
		if cur.Node() == node {
			return true
		}
	}
	return false
}

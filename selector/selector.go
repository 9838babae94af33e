package selector

import (
	"container/heap"

	"github.com/theoremus-urban-solutions/journey-planner/heuristics"
	"github.com/theoremus-urban-solutions/journey-planner/model"
	"github.com/theoremus-urban-solutions/journey-planner/traversal"
)

// Frontier is the set of branches waiting to be extended.
type Frontier interface {
	Push(traversal.JourneyState)
	Next() (traversal.JourneyState, bool)
	Len() int
}

// New returns an empty frontier for the strategy. StrategyDefault is
// treated as DepthFirst. GridAware falls back to the branch's own distance
// estimate when grid is nil.
func New(strategy model.Strategy, grid *heuristics.GridIndex) Frontier {
	switch strategy {
	case model.HeuristicOrdered:
		return newQueue(func(js traversal.JourneyState) float64 { return js.Distance })
	case model.GridAware:
		if grid == nil {
			return newQueue(func(js traversal.JourneyState) float64 { return js.Distance })
		}
		return newQueue(func(js traversal.JourneyState) float64 { return grid.DistanceKM(js.Position) })
	}
	return &stack{}
}

type stack struct {
	items []traversal.JourneyState
}

func (s *stack) Push(js traversal.JourneyState) { s.items = append(s.items, js) }

func (s *stack) Next() (traversal.JourneyState, bool) {
	if len(s.items) == 0 {
		return traversal.JourneyState{}, false
	}
	last := len(s.items) - 1
	js := s.items[last]
	s.items[last] = traversal.JourneyState{}
	s.items = s.items[:last]
	return js, true
}

func (s *stack) Len() int { return len(s.items) }

type pqItem struct {
	branch   traversal.JourneyState
	distance float64
	seq      uint64
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int      { return len(pq) }
func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq priorityQueue) Less(i, j int) bool {
	a, b := pq[i], pq[j]
	if a.branch.Started != b.branch.Started {
		return a.branch.Started
	}
	// Distance only ranks branches already on a vehicle.
	if a.branch.Started && a.distance != b.distance {
		return a.distance < b.distance
	}
	if a.branch.Clock != b.branch.Clock {
		return a.branch.Clock < b.branch.Clock
	}
	if a.branch.Node != b.branch.Node {
		return a.branch.Node < b.branch.Node
	}
	return a.seq < b.seq
}

func (pq *priorityQueue) Push(x interface{}) {
	*pq = append(*pq, x.(*pqItem))
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}

type queue struct {
	pq    priorityQueue
	score func(traversal.JourneyState) float64
	seq   uint64
}

func newQueue(score func(traversal.JourneyState) float64) *queue {
	q := &queue{score: score}
	heap.Init(&q.pq)
	return q
}

func (q *queue) Push(js traversal.JourneyState) {
	q.seq++
	heap.Push(&q.pq, &pqItem{branch: js, distance: q.score(js), seq: q.seq})
}

func (q *queue) Next() (traversal.JourneyState, bool) {
	if q.pq.Len() == 0 {
		return traversal.JourneyState{}, false
	}
	return heap.Pop(&q.pq).(*pqItem).branch, true
}

func (q *queue) Len() int { return q.pq.Len() }

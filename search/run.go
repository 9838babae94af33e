package search

import (
	"context"
	"fmt"

	"github.com/theoremus-urban-solutions/journey-planner/diagnostics"
	"github.com/theoremus-urban-solutions/journey-planner/graph"
	"github.com/theoremus-urban-solutions/journey-planner/model"
	"github.com/theoremus-urban-solutions/journey-planner/selector"
	"github.com/theoremus-urban-solutions/journey-planner/traversal"
)

type probeOutcome struct {
	journeys    []model.Journey
	diagnostics diagnostics.Snapshot
	timedOut    bool
}

// visitKey groups branches whose next boarding or walk is charged the same
// way: whether a vehicle was boarded and whether the pending change was
// already counted decide how the change counter moves next.
type visitKey struct {
	node          graph.NodeID
	state         traversal.StateType
	trip          string
	boarded       bool
	changeCounted bool
}

type visitCost struct {
	clock   model.ServiceTime
	changes int
	walks   int
}

// covers reports whether c is no worse than o in every dimension.
func (c visitCost) covers(o visitCost) bool {
	return c.clock <= o.clock && c.changes <= o.changes && c.walks <= o.walks
}

// run is the state of one probe. It belongs to a single goroutine.
type run struct {
	e         *Engine
	q         *query
	tx        graph.Transaction
	machine   *traversal.Machine
	diag      *diagnostics.ServiceReasons
	frontier  selector.Frontier
	visited   map[visitKey][]visitCost
	queryTime model.ServiceTime
	steps     int
	journeys  []model.Journey
}

// probe searches from one departure time.
func (e *Engine) probe(ctx context.Context, q *query, at model.ServiceTime, runID string) (probeOutcome, error) {
	diag := diagnostics.NewServiceReasons(e.cfg.Diagnostics.Detailed)
	tx, err := e.store.BeginRead(context.WithoutCancel(ctx))
	if err != nil {
		return probeOutcome{diagnostics: diag.Snapshot(runID)}, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer tx.Close()

	r := &run{
		e:         e,
		q:         q,
		tx:        tx,
		machine:   traversal.NewMachine(tx, q.req, e.cfg.Search.Limits(), traversal.NewPathArena()),
		diag:      diag,
		frontier:  selector.New(q.strategy, q.grid),
		visited:   map[visitKey][]visitCost{},
		queryTime: at,
	}
	timedOut, err := r.loop(ctx)
	return probeOutcome{journeys: r.journeys, diagnostics: diag.Snapshot(runID), timedOut: timedOut}, err
}

func (r *run) loop(ctx context.Context) (bool, error) {
	for _, o := range r.q.origins {
		walks := 0
		if o.walk > 0 {
			walks = 1
		}
		js := r.machine.StartAfter(o.node, r.queryTime, r.queryTime.Add(o.walk), walks)
		if err := r.push(js); err != nil {
			return false, err
		}
	}

	for {
		js, ok := r.frontier.Next()
		if !ok {
			return false, nil
		}
		r.diag.IncrementTotalChecked()
		r.diag.RecordState(js)

		code, done := r.evaluate(ctx, js)
		switch {
		case code == traversal.TimedOut:
			r.diag.RecordReason(diagnostics.ReasonFor(traversal.TimedOut, js))
			r.drain()
			return true, nil
		case code == traversal.Arrived:
			r.diag.RecordArrived()
			r.diag.RecordReason(diagnostics.ReasonFor(traversal.Arrived, done))
			j, err := r.assemble(done)
			if err != nil {
				return false, err
			}
			r.journeys = append(r.journeys, j)
			continue
		case !code.IsValid():
			r.diag.RecordReason(diagnostics.ReasonFor(code, js))
			continue
		}
		r.diag.RecordReason(diagnostics.ReasonFor(traversal.Continue, js))

		if err := r.expand(js); err != nil {
			return false, err
		}
		r.diag.ObserveFrontier(r.frontier.Len())
	}
}

// drain records TimedOut for every branch still open.
func (r *run) drain() {
	for {
		js, ok := r.frontier.Next()
		if !ok {
			return
		}
		r.diag.RecordReason(diagnostics.ReasonFor(traversal.TimedOut, js))
	}
}

// evaluate decides whether a popped branch continues. For Arrived it also
// returns the completed branch.
func (r *run) evaluate(ctx context.Context, js traversal.JourneyState) (traversal.ReasonCode, traversal.JourneyState) {
	r.steps++
	req := r.q.req
	cfg := r.e.cfg.Search
	deadline, arriveBy := req.Deadline()

	if r.steps > cfg.MaxSteps || ctx.Err() != nil {
		return traversal.TimedOut, js
	}
	if js.Elapsed() > req.MaxJourneyDuration {
		return traversal.TookTooLong, js
	}
	if arriveBy && js.Clock.After(deadline) {
		return traversal.ArrivedLate, js
	}
	if dest, ok := r.atDestination(js); ok {
		done := r.machine.Complete(js, dest.walk)
		switch {
		case done.Elapsed() > req.MaxJourneyDuration:
			return traversal.TookTooLong, js
		case arriveBy && done.Clock.After(deadline):
			return traversal.ArrivedLate, js
		}
		return traversal.Arrived, done
	}
	if js.Depth > 1 && r.q.originNodes[js.Node] {
		return traversal.ReturnedToStart, js
	}
	if r.dominated(js) {
		return traversal.HigherCost, js
	}
	if cfg.MaxPathLength > 0 && js.Depth > cfg.MaxPathLength {
		return traversal.PathTooLong, js
	}
	return traversal.Continue, js
}

// atDestination reports whether a branch off any vehicle stands at a
// destination station. Branches that never moved do not count.
func (r *run) atDestination(js traversal.JourneyState) (endpoint, bool) {
	if js.Boardings == 0 && js.Walks == 0 {
		return endpoint{}, false
	}
	var stationID string
	switch s := js.State.(type) {
	case traversal.AtStationState:
		stationID = s.StationID
	case traversal.AtPlatformState:
		stationID = s.StationID
	case traversal.WalkingState:
		stationID = s.StationID
	default:
		return endpoint{}, false
	}
	dest, ok := r.q.destinations[stationID]
	return dest, ok
}

// dominated reports whether an earlier branch with the same visit key was
// no later, with no more changes and no more walks. A branch that is not
// dominated is remembered and evicts the entries it covers.
func (r *run) dominated(js traversal.JourneyState) bool {
	key := visitKey{
		node:          js.Node,
		state:         js.Type(),
		trip:          js.TripID,
		boarded:       js.Boardings > 0,
		changeCounted: js.ChangeCounted,
	}
	cost := visitCost{clock: js.Clock, changes: js.Changes, walks: js.Walks}
	costs := r.visited[key]
	for _, c := range costs {
		if c.covers(cost) {
			return true
		}
	}
	kept := costs[:0]
	for _, c := range costs {
		if !cost.covers(c) {
			kept = append(kept, c)
		}
	}
	r.visited[key] = append(kept, cost)
	return false
}

// expand offers every outgoing relationship of js to the machine.
func (r *run) expand(js traversal.JourneyState) error {
	rels, err := r.tx.Expand(js.Node)
	if err != nil {
		return fmt.Errorf("failed to expand node %d: %w", js.Node, err)
	}
	accepted := 0
	for _, rel := range rels {
		out, err := r.machine.Next(js, rel)
		if err != nil {
			return err
		}
		if !out.Followed {
			continue
		}
		if !out.Accepted {
			r.diag.RecordReason(diagnostics.ServiceReason{
				Code:      out.Reason,
				Node:      rel.To,
				StateType: js.Type(),
				Path:      js.Path,
			})
			continue
		}
		if err := r.push(out.Branch); err != nil {
			return err
		}
		accepted++
	}
	if accepted == 0 {
		r.diag.RecordReason(diagnostics.ReasonFor(traversal.StationNotReachable, js))
	}
	return nil
}

// push scores a branch for the frontier's ordering and adds it.
func (r *run) push(js traversal.JourneyState) error {
	if r.q.strategy != model.DepthFirst {
		props, err := r.tx.Properties(js.Node)
		if err != nil {
			return fmt.Errorf("failed to read node %d: %w", js.Node, err)
		}
		js.Position, _ = props.Position()
		if js.Distance, err = r.q.estimator.NodeDistance(r.tx, js.Node); err != nil {
			return err
		}
	}
	r.frontier.Push(js)
	return nil
}

package search

import (
	"fmt"

	"github.com/theoremus-urban-solutions/journey-planner/graph"
	"github.com/theoremus-urban-solutions/journey-planner/model"
	"github.com/theoremus-urban-solutions/journey-planner/traversal"
)

// assemble turns a completed branch into a journey by replaying its path.
func (r *run) assemble(js traversal.JourneyState) (model.Journey, error) {
	steps := js.Path.Steps()
	if len(steps) == 0 {
		return model.Journey{}, fmt.Errorf("branch at node %d has no path", js.Node)
	}

	var legs []model.Leg
	root := steps[0]
	if r.q.req.Origin.NeedsWalkingLeg() && root.Clock.After(js.QueryTime) {
		id, err := r.stationID(root.Node)
		if err != nil {
			return model.Journey{}, err
		}
		legs = append(legs, model.Leg{
			Mode:        model.Walk,
			FromStation: r.q.req.Origin.String(),
			ToStation:   id,
			Departure:   js.QueryTime,
			Arrival:     root.Clock,
		})
	}

	var ride *model.Leg
	for i := 1; i < len(steps); i++ {
		step, prev := steps[i], steps[i-1]
		switch {
		case step.StateType == traversal.JourneyComplete:
			if !r.q.req.Destination.NeedsWalkingLeg() || !step.Clock.After(prev.Clock) {
				continue
			}
			id, err := r.stationID(prev.Node)
			if err != nil {
				return model.Journey{}, err
			}
			legs = append(legs, model.Leg{
				Mode:        model.Walk,
				FromStation: id,
				ToStation:   r.q.req.Destination.String(),
				Departure:   prev.Clock,
				Arrival:     step.Clock,
			})
		case !step.HasRel:
		case step.Rel.Type == graph.RelGoesTo && prev.StateType == traversal.AtRouteStation:
			rs, err := r.tx.Properties(step.Rel.From)
			if err != nil {
				return model.Journey{}, fmt.Errorf("failed to read route station %d: %w", step.Rel.From, err)
			}
			p := step.Rel.Props
			to := p.String(graph.KeyStationID)
			ride = &model.Leg{
				Mode:        p.Mode(graph.KeyMode),
				FromStation: rs.String(graph.KeyStationID),
				ToStation:   to,
				Departure:   step.Departure,
				Arrival:     step.Clock,
				RouteID:     p.String(graph.KeyRouteID),
				TripID:      p.String(graph.KeyTripID),
				ServiceID:   p.String(graph.KeyServiceID),
				Stops:       []string{to},
			}
		case step.Rel.Type == graph.RelGoesTo:
			if ride == nil {
				return model.Journey{}, fmt.Errorf("hop at node %d without boarding", step.Node)
			}
			to := step.Rel.Props.String(graph.KeyStationID)
			ride.ToStation = to
			ride.Arrival = step.Clock
			ride.Stops = append(ride.Stops, to)
		case step.Rel.Type == graph.RelDepart:
			if ride == nil {
				return model.Journey{}, fmt.Errorf("alighting at node %d without boarding", step.Node)
			}
			legs = append(legs, *ride)
			ride = nil
		case step.Rel.Type == graph.RelWalksTo || step.Rel.Type == graph.RelLinked:
			from, err := r.stationID(step.Rel.From)
			if err != nil {
				return model.Journey{}, err
			}
			to, err := r.stationID(step.Rel.To)
			if err != nil {
				return model.Journey{}, err
			}
			mode := model.Walk
			if step.Rel.Type == graph.RelLinked {
				mode = model.Connect
			}
			legs = append(legs, model.Leg{
				Mode:        mode,
				FromStation: from,
				ToStation:   to,
				Departure:   prev.Clock,
				Arrival:     step.Clock,
			})
		}
	}
	if ride != nil {
		return model.Journey{}, fmt.Errorf("journey ends on board trip %s", ride.TripID)
	}
	return model.NewJourney(js.QueryTime, js.Changes, legs), nil
}

// stationID returns the station id of a Station or Platform node.
func (r *run) stationID(node graph.NodeID) (string, error) {
	label, err := r.tx.Label(node)
	if err != nil {
		return "", fmt.Errorf("failed to read label of node %d: %w", node, err)
	}
	props, err := r.tx.Properties(node)
	if err != nil {
		return "", fmt.Errorf("failed to read node %d: %w", node, err)
	}
	if label == graph.LabelPlatform {
		return props.String(graph.KeyStationID), nil
	}
	return props.String(graph.KeyID), nil
}

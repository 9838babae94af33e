package search

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/theoremus-urban-solutions/journey-planner/graph"
	"github.com/theoremus-urban-solutions/journey-planner/model"
)

// ErrUnknownLocation is returned when a request names a station or group
// that is not in the graph, or a position or area with no station in reach.
var ErrUnknownLocation = errors.New("unknown location")

// endpoint is one station a journey may start or end at, with the walk
// between it and the requested location.
type endpoint struct {
	node      graph.NodeID
	stationID string
	position  model.LatLong
	walk      time.Duration
}

type stationInfo struct {
	node     graph.NodeID
	id       string
	group    string
	position model.LatLong
}

func (e *Engine) stations(tx graph.Transaction) ([]stationInfo, error) {
	nodes, err := tx.Nodes(graph.LabelStation)
	if err != nil {
		return nil, fmt.Errorf("failed to list stations: %w", err)
	}
	out := make([]stationInfo, 0, len(nodes))
	for _, n := range nodes {
		props, err := tx.Properties(n)
		if err != nil {
			return nil, fmt.Errorf("failed to read station %d: %w", n, err)
		}
		pos, _ := props.Position()
		out = append(out, stationInfo{
			node:     n,
			id:       props.String(graph.KeyID),
			group:    props.String(graph.KeyGroupID),
			position: pos,
		})
	}
	return out, nil
}

// resolve maps a location to its endpoints, sorted by node id.
func (e *Engine) resolve(tx graph.Transaction, loc model.Location) ([]endpoint, error) {
	var out []endpoint
	switch loc.Kind() {
	case model.LocationStation:
		n, ok, err := tx.FindNode(graph.LabelStation, loc.ID())
		if err != nil {
			return nil, fmt.Errorf("failed to find station %q: %w", loc.ID(), err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: station %q", ErrUnknownLocation, loc.ID())
		}
		props, err := tx.Properties(n)
		if err != nil {
			return nil, fmt.Errorf("failed to read station %q: %w", loc.ID(), err)
		}
		pos, _ := props.Position()
		out = append(out, endpoint{node: n, stationID: loc.ID(), position: pos})
	default:
		all, err := e.stations(tx)
		if err != nil {
			return nil, err
		}
		limits := e.cfg.Search.Limits()
		radius := e.cfg.Search.WalkRadiusKM()
		for _, s := range all {
			ep := endpoint{node: s.node, stationID: s.id, position: s.position}
			switch loc.Kind() {
			case model.LocationGroup:
				if s.group != loc.ID() {
					continue
				}
			case model.LocationArea:
				if !loc.Area().Contains(s.position) {
					continue
				}
			case model.LocationPosition:
				d := s.position.DistanceKM(loc.Position())
				if d > radius {
					continue
				}
				ep.walk = limits.WalkTime(d)
			default:
				return nil, fmt.Errorf("%w: %s", ErrUnknownLocation, loc)
			}
			out = append(out, ep)
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("%w: no station for %s", ErrUnknownLocation, loc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].node < out[j].node })
	return out, nil
}

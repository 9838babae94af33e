package traversal

import (
	"fmt"
	"time"

	"github.com/theoremus-urban-solutions/journey-planner/graph"
	"github.com/theoremus-urban-solutions/journey-planner/model"
)

// JourneyState is one branch of the search. It is a value and is copied on
// every expansion, so no two branches share mutable state.
type JourneyState struct {
	Node      graph.NodeID
	Position  model.LatLong
	Clock     model.ServiceTime
	QueryTime model.ServiceTime
	Changes   int
	Boardings int
	Walks     int
	// Started is set once the journey first boards or walks.
	Started bool
	Mode    model.TransportMode
	TripID  string
	// ChangeCounted marks a walk that already counted as a change so the
	// next boarding does not count it again.
	ChangeCounted bool
	State         State
	Path          HowIGotHere
	// Depth is the number of steps in Path.
	Depth int
	// Distance is the estimated distance to the destination in km, filled
	// in by the search before the branch enters the frontier.
	Distance float64
}

// Elapsed is the time since the query time.
func (s JourneyState) Elapsed() time.Duration { return s.Clock.Sub(s.QueryTime) }

func (s JourneyState) Type() StateType {
	if s.State == nil {
		return NotStarted
	}
	return s.State.Type()
}

func (s JourneyState) String() string {
	return fmt.Sprintf("%s@%d %s changes=%d trip=%q", s.Type(), s.Node, s.Clock, s.Changes, s.TripID)
}

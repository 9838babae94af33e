package traversal

import (
	"fmt"

	"github.com/theoremus-urban-solutions/journey-planner/graph"
	"github.com/theoremus-urban-solutions/journey-planner/model"
)

// StateType enumerates the states of the traversal machine.
type StateType uint8

const (
	NotStarted StateType = iota
	JourneyStart
	AtStation
	AtPlatform
	AtRouteStation
	OnboardService
	Walking
	JourneyComplete
)

var stateNames = [...]string{
	NotStarted:      "NotStarted",
	JourneyStart:    "JourneyStart",
	AtStation:       "AtStation",
	AtPlatform:      "AtPlatform",
	AtRouteStation:  "AtRouteStation",
	OnboardService:  "OnboardService",
	Walking:         "Walking",
	JourneyComplete: "JourneyComplete",
}

func (t StateType) String() string {
	if int(t) < len(stateNames) {
		return stateNames[t]
	}
	return fmt.Sprintf("StateType(%d)", uint8(t))
}

// StateTypes lists every state type in order.
func StateTypes() []StateType {
	out := make([]StateType, len(stateNames))
	for i := range out {
		out[i] = StateType(i)
	}
	return out
}

// State is one of the concrete state values below. The set is closed.
type State interface {
	Type() StateType
	isState()
}

type NotStartedState struct{}

type JourneyStartState struct {
	Node graph.NodeID
}

type AtStationState struct {
	Node      graph.NodeID
	StationID string
}

type AtPlatformState struct {
	Node       graph.NodeID
	PlatformID string
	StationID  string
}

type AtRouteStationState struct {
	Node      graph.NodeID
	RouteID   string
	StationID string
}

// OnboardServiceState is a journey riding a trip. Shifted is set when the
// trip belongs to the previous service day and its times were moved back
// by 24 hours.
type OnboardServiceState struct {
	Node      graph.NodeID
	TripID    string
	RouteID   string
	ServiceID string
	Mode      model.TransportMode
	StopSeq   int64
	Shifted   bool
	// DropOff reports whether alighting is allowed at the stop just reached.
	DropOff bool
}

type WalkingState struct {
	Node      graph.NodeID
	StationID string
	Mode      model.TransportMode
}

type JourneyCompleteState struct {
	Node graph.NodeID
}

func (NotStartedState) Type() StateType      { return NotStarted }
func (JourneyStartState) Type() StateType    { return JourneyStart }
func (AtStationState) Type() StateType       { return AtStation }
func (AtPlatformState) Type() StateType      { return AtPlatform }
func (AtRouteStationState) Type() StateType  { return AtRouteStation }
func (OnboardServiceState) Type() StateType  { return OnboardService }
func (WalkingState) Type() StateType         { return Walking }
func (JourneyCompleteState) Type() StateType { return JourneyComplete }

func (NotStartedState) isState()      {}
func (JourneyStartState) isState()    {}
func (AtStationState) isState()       {}
func (AtPlatformState) isState()      {}
func (AtRouteStationState) isState()  {}
func (OnboardServiceState) isState()  {}
func (WalkingState) isState()         {}
func (JourneyCompleteState) isState() {}

// OnVehicle reports whether s is riding a trip.
func OnVehicle(s State) bool {
	_, ok := s.(OnboardServiceState)
	return ok
}

func (t StateType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *StateType) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*t = StateType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state type %q", b)
}

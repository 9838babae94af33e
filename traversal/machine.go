package traversal

import (
	"errors"
	"fmt"
	"time"

	"github.com/theoremus-urban-solutions/journey-planner/graph"
	"github.com/theoremus-urban-solutions/journey-planner/model"
)

// ErrIllegalTransition is returned for a relationship type the machine does
// not know. It indicates a broken graph or a programming error.
var ErrIllegalTransition = errors.New("illegal traversal transition")

// Limits are the engine-wide constraints applied on top of a request.
type Limits struct {
	MaxInitialWait        time.Duration
	MaxChangeWait         time.Duration
	MaxWalkingConnections int
	WalkingSpeedKMH       float64
}

func DefaultLimits() Limits {
	return Limits{
		MaxInitialWait:        30 * time.Minute,
		MaxChangeWait:         30 * time.Minute,
		MaxWalkingConnections: 3,
		WalkingSpeedKMH:       4.8,
	}
}

// Outcome is the result of offering one relationship to a branch.
// Followed is false when the relationship is not an edge of the branch's
// state; Reason is then meaningless.
type Outcome struct {
	Branch   JourneyState
	Reason   ReasonCode
	Accepted bool
	Followed bool
}

func accept(js JourneyState, reason ReasonCode) Outcome {
	return Outcome{Branch: js, Reason: reason, Accepted: true, Followed: true}
}

func reject(reason ReasonCode) Outcome {
	return Outcome{Reason: reason, Followed: true}
}

var skip = Outcome{}

// Machine applies the transition rules of one search run. It belongs to a
// single goroutine.
type Machine struct {
	tx     graph.Transaction
	req    *model.JourneyRequest
	limits Limits
	arena  *PathArena

	// service id -> runs on query date, runs on the day before
	services map[string][2]bool
}

func NewMachine(tx graph.Transaction, req *model.JourneyRequest, limits Limits, arena *PathArena) *Machine {
	return &Machine{
		tx:       tx,
		req:      req,
		limits:   limits,
		arena:    arena,
		services: map[string][2]bool{},
	}
}

// Arena returns the path arena the machine appends to.
func (m *Machine) Arena() *PathArena { return m.arena }

// Start creates the initial branch at node, in state JourneyStart.
func (m *Machine) Start(node graph.NodeID, at model.ServiceTime) JourneyState {
	return m.StartAfter(node, at, at, 0)
}

// StartAfter creates an initial branch whose clock is later than the query
// time, as for an origin reached by walking from a position.
func (m *Machine) StartAfter(node graph.NodeID, queryTime, clock model.ServiceTime, walks int) JourneyState {
	js := JourneyState{
		Node:      node,
		Clock:     clock,
		QueryTime: queryTime,
		Walks:     walks,
		Started:   walks > 0,
		State:     JourneyStartState{Node: node},
		Depth:     1,
	}
	js.Path = m.arena.Root(Step{Node: node, StateType: JourneyStart, Clock: clock})
	return js
}

// Complete moves a branch that reached its destination into the terminal
// state, optionally after a final walk of the given duration.
func (m *Machine) Complete(js JourneyState, finalWalk time.Duration) JourneyState {
	js.Clock = js.Clock.Add(finalWalk)
	js.State = JourneyCompleteState{Node: js.Node}
	js.Depth++
	js.Path = m.arena.Extend(js.Path, Step{Node: js.Node, StateType: JourneyComplete, Clock: js.Clock})
	return js
}

// Next offers rel, an outgoing relationship of js.Node, to the branch.
func (m *Machine) Next(js JourneyState, rel graph.Relationship) (Outcome, error) {
	if rel.Type == graph.RelNone || rel.Type > graph.RelLinked {
		return skip, fmt.Errorf("%w: relationship type %s from %s", ErrIllegalTransition, rel.Type, js.Type())
	}
	switch s := js.State.(type) {
	case JourneyStartState, AtStationState:
		switch rel.Type {
		case graph.RelEnterPlatform:
			return m.enterPlatform(js, rel)
		case graph.RelBoard:
			return m.board(js, rel)
		case graph.RelWalksTo, graph.RelLinked:
			return m.walk(js, rel)
		}
	case WalkingState:
		switch rel.Type {
		case graph.RelEnterPlatform:
			return m.enterPlatform(js, rel)
		case graph.RelBoard:
			return m.board(js, rel)
		}
	case AtPlatformState:
		switch rel.Type {
		case graph.RelLeavePlatform:
			return m.leavePlatform(js, rel)
		case graph.RelBoard:
			return m.board(js, rel)
		}
	case AtRouteStationState:
		if rel.Type == graph.RelGoesTo {
			return m.boardTrip(js, rel)
		}
	case OnboardServiceState:
		switch rel.Type {
		case graph.RelGoesTo:
			return m.ride(js, s, rel)
		case graph.RelDepart:
			return m.alight(js, s, rel)
		}
	case JourneyCompleteState, NotStartedState:
	default:
		return skip, fmt.Errorf("%w: unknown state %T", ErrIllegalTransition, js.State)
	}
	return skip, nil
}

func (m *Machine) step(js JourneyState, next State, rel graph.Relationship, departure model.ServiceTime) JourneyState {
	js.Node = rel.To
	js.State = next
	js.Depth++
	js.Path = m.arena.Extend(js.Path, Step{
		Node:      rel.To,
		StateType: next.Type(),
		Rel:       rel,
		HasRel:    true,
		Clock:     js.Clock,
		Departure: departure,
	})
	return js
}

// stationOf returns the station id of a Station or Platform node.
func (m *Machine) stationOf(node graph.NodeID) (string, graph.Properties, error) {
	label, err := m.tx.Label(node)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read label: %w", err)
	}
	props, err := m.tx.Properties(node)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read properties: %w", err)
	}
	if label == graph.LabelPlatform {
		return props.String(graph.KeyStationID), props, nil
	}
	return props.String(graph.KeyID), props, nil
}

func (m *Machine) checkStation(stationID string) ReasonCode {
	if !m.req.Filter.ShouldIncludeStation(stationID) {
		return StationNotIncluded
	}
	if m.req.IsClosed(stationID) {
		return StationClosed
	}
	return StationOpen
}

func (m *Machine) enterPlatform(js JourneyState, rel graph.Relationship) (Outcome, error) {
	props, err := m.tx.Properties(rel.To)
	if err != nil {
		return skip, fmt.Errorf("failed to read platform: %w", err)
	}
	js.Clock = js.Clock.Add(rel.Props.Duration(graph.KeyCost))
	next := AtPlatformState{
		Node:       rel.To,
		PlatformID: props.String(graph.KeyID),
		StationID:  props.String(graph.KeyStationID),
	}
	return accept(m.step(js, next, rel, 0), Continue), nil
}

func (m *Machine) leavePlatform(js JourneyState, rel graph.Relationship) (Outcome, error) {
	stationID, _, err := m.stationOf(rel.To)
	if err != nil {
		return skip, err
	}
	if r := m.checkStation(stationID); !r.IsValid() {
		return reject(r), nil
	}
	js.Clock = js.Clock.Add(rel.Props.Duration(graph.KeyCost))
	return accept(m.step(js, AtStationState{Node: rel.To, StationID: stationID}, rel, 0), StationOpen), nil
}

// board enters a RouteStation. Route level checks happen here so a whole
// route is rejected once instead of once per trip.
func (m *Machine) board(js JourneyState, rel graph.Relationship) (Outcome, error) {
	props, err := m.tx.Properties(rel.To)
	if err != nil {
		return skip, fmt.Errorf("failed to read route station: %w", err)
	}
	mode := props.Mode(graph.KeyMode)
	routeID := props.String(graph.KeyRouteID)
	switch {
	case !m.req.Modes.Contains(mode):
		return reject(TransportModeWrong), nil
	case !m.req.Filter.ShouldIncludeRoute(routeID):
		return reject(RouteNotIncluded), nil
	case !m.req.Filter.ShouldIncludeAgency(props.String(graph.KeyAgencyID)):
		return reject(AgencyNotIncluded), nil
	}
	next := AtRouteStationState{Node: rel.To, RouteID: routeID, StationID: props.String(graph.KeyStationID)}
	return accept(m.step(js, next, rel, 0), TransportModeOk), nil
}

func (m *Machine) runs(serviceID string) ([2]bool, error) {
	if r, ok := m.services[serviceID]; ok {
		return r, nil
	}
	node, found, err := m.tx.FindNode(graph.LabelService, serviceID)
	if err != nil {
		return [2]bool{}, fmt.Errorf("failed to find service %q: %w", serviceID, err)
	}
	var r [2]bool
	if found {
		props, err := m.tx.Properties(node)
		if err != nil {
			return r, fmt.Errorf("failed to read service %q: %w", serviceID, err)
		}
		cal := props.Calendar()
		r = [2]bool{cal.RunsOn(m.req.Date), cal.RunsOn(m.req.Date.AddDays(-1))}
	}
	m.services[serviceID] = r
	return r, nil
}

// boardTrip boards the trip of a GOES_TO hop leaving the current
// RouteStation.
func (m *Machine) boardTrip(js JourneyState, rel graph.Relationship) (Outcome, error) {
	p := rel.Props
	serviceID := p.String(graph.KeyServiceID)
	runs, err := m.runs(serviceID)
	if err != nil {
		return skip, err
	}
	dep, arr := p.Time(graph.KeyDeparture), p.Time(graph.KeyArrival)

	shifted := false
	switch {
	case dep.IsNextDay() && runs[1] && (dep.PreviousDay() >= js.Clock || !runs[0]):
		dep, arr = dep.PreviousDay(), arr.PreviousDay()
		shifted = true
	case runs[0]:
	default:
		return reject(NotOnQueryDate), nil
	}

	// Arrive-by probes start a full journey duration before the deadline,
	// so the first boarding may wait anywhere inside that window.
	maxWait := m.limits.MaxInitialWait
	switch {
	case js.Boardings > 0:
		maxWait = m.limits.MaxChangeWait
	case m.req.ArriveBy:
		maxWait = m.req.MaxJourneyDuration
	}
	mode := p.Mode(graph.KeyMode)
	switch {
	case dep.Before(js.Clock):
		return reject(AlreadyDeparted), nil
	case dep.Sub(js.Clock) > maxWait:
		return reject(DoesNotOperateOnTime), nil
	case !p.Bool(graph.KeyPickup):
		return reject(PickupNotAllowed), nil
	case !m.req.Modes.Contains(mode):
		return reject(TransportModeWrong), nil
	case !m.req.Filter.ShouldIncludeRoute(p.String(graph.KeyRouteID)):
		return reject(RouteNotIncluded), nil
	case !m.req.Filter.ShouldIncludeService(serviceID):
		return reject(ServiceNotIncluded), nil
	case !m.req.Filter.ShouldIncludeAgency(p.String(graph.KeyAgencyID)):
		return reject(AgencyNotIncluded), nil
	}

	if js.Boardings > 0 && !js.ChangeCounted {
		js.Changes++
	}
	if js.Changes > m.req.MaxChanges {
		return reject(TooManyChanges), nil
	}
	js.ChangeCounted = false
	js.Boardings++
	js.Started = true
	js.Mode = mode
	js.TripID = p.String(graph.KeyTripID)
	js.Clock = arr

	next := OnboardServiceState{
		Node:      rel.To,
		TripID:    js.TripID,
		RouteID:   p.String(graph.KeyRouteID),
		ServiceID: serviceID,
		Mode:      mode,
		StopSeq:   p.Int(graph.KeyStopSeq),
		Shifted:   shifted,
		DropOff:   p.Bool(graph.KeyDropOff),
	}
	return accept(m.step(js, next, rel, dep), onMode(mode)), nil
}

// ride stays on the current trip for its next hop.
func (m *Machine) ride(js JourneyState, s OnboardServiceState, rel graph.Relationship) (Outcome, error) {
	p := rel.Props
	if p.String(graph.KeyTripID) != s.TripID || p.Int(graph.KeyStopSeq) != s.StopSeq+1 {
		return skip, nil
	}
	dep, arr := p.Time(graph.KeyDeparture), p.Time(graph.KeyArrival)
	if s.Shifted {
		dep, arr = dep.PreviousDay(), arr.PreviousDay()
	}
	js.Clock = arr
	s.Node = rel.To
	s.StopSeq++
	s.DropOff = p.Bool(graph.KeyDropOff)
	return accept(m.step(js, s, rel, dep), ServiceTimeOk), nil
}

func (m *Machine) alight(js JourneyState, s OnboardServiceState, rel graph.Relationship) (Outcome, error) {
	if !s.DropOff {
		return reject(DropOffNotAllowed), nil
	}
	label, err := m.tx.Label(rel.To)
	if err != nil {
		return skip, fmt.Errorf("failed to read label: %w", err)
	}
	stationID, props, err := m.stationOf(rel.To)
	if err != nil {
		return skip, err
	}
	if r := m.checkStation(stationID); !r.IsValid() {
		return reject(r), nil
	}
	js.Clock = js.Clock.Add(rel.Props.Duration(graph.KeyCost))
	js.Mode = model.Unset
	js.TripID = ""
	var next State = AtStationState{Node: rel.To, StationID: stationID}
	if label == graph.LabelPlatform {
		next = AtPlatformState{Node: rel.To, PlatformID: props.String(graph.KeyID), StationID: stationID}
	}
	return accept(m.step(js, next, rel, 0), StationOpen), nil
}

// WalkDuration is the cost of a walking relationship: its stored cost, or
// its distance at walking speed when no cost is stored.
func (m *Machine) WalkDuration(rel graph.Relationship) time.Duration {
	if cost := rel.Props.Duration(graph.KeyCost); cost > 0 {
		return cost
	}
	return m.limits.WalkTime(float64(rel.Props.Int(graph.KeyDistanceM)) / 1000)
}

// WalkTime converts a distance in km to walking time, rounded up to whole
// seconds.
func (l Limits) WalkTime(km float64) time.Duration {
	if l.WalkingSpeedKMH <= 0 {
		return 0
	}
	secs := km / l.WalkingSpeedKMH * 3600
	return time.Duration(int64(secs+0.999999)) * time.Second
}

func (m *Machine) walk(js JourneyState, rel graph.Relationship) (Outcome, error) {
	mode := model.Walk
	if rel.Type == graph.RelLinked {
		mode = model.Connect
	}
	if mode == model.Walk && !m.req.Modes.Contains(model.Walk) {
		return reject(TransportModeWrong), nil
	}
	if js.Walks+1 > m.limits.MaxWalkingConnections {
		return reject(TooManyWalkingConnections), nil
	}
	_, fromProps, err := m.stationOf(js.Node)
	if err != nil {
		return skip, err
	}
	toID, toProps, err := m.stationOf(rel.To)
	if err != nil {
		return skip, err
	}
	if r := m.checkStation(toID); !r.IsValid() {
		return reject(r), nil
	}
	if js.Boardings > 0 && crossesGroups(fromProps.String(graph.KeyGroupID), toProps.String(graph.KeyGroupID)) {
		js.Changes++
		js.ChangeCounted = true
		if js.Changes > m.req.MaxChanges {
			return reject(TooManyChanges), nil
		}
	}
	js.Walks++
	js.Started = true
	js.Clock = js.Clock.Add(m.WalkDuration(rel))
	js.Mode = mode
	next := WalkingState{Node: rel.To, StationID: toID, Mode: mode}
	return accept(m.step(js, next, rel, 0), WalkOk), nil
}

// crossesGroups treats stations without a group as a group of their own.
func crossesGroups(a, b string) bool { return a == "" || b == "" || a != b }

func onMode(mode model.TransportMode) ReasonCode {
	switch mode {
	case model.Tram:
		return OnTram
	case model.Bus:
		return OnBus
	case model.Train:
		return OnTrain
	case model.Ferry:
		return OnFerry
	case model.Subway:
		return OnSubway
	case model.Ship:
		return OnShip
	case model.RailReplacementBus:
		return OnRailReplacementBus
	}
	return OnWalk
}

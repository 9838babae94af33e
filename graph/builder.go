package graph

import (
	"errors"
	"fmt"
	"time"

	"github.com/theoremus-urban-solutions/journey-planner/model"
)

// StationSpec describes a station. GroupID links stations of the same
// locality; stations without one form their own group.
type StationSpec struct {
	ID       string
	Name     string
	Position model.LatLong
	GroupID  string
}

type PlatformSpec struct {
	ID        string
	StationID string
}

type RouteSpec struct {
	ID       string
	AgencyID string
	Name     string
	Mode     model.TransportMode
}

type ServiceSpec struct {
	ID       string
	Calendar model.ServiceCalendar
}

// StopCallSpec is one call of a trip. PlatformID is optional. NoPickup and
// NoDropOff mirror GTFS pickup_type/drop_off_type = 1.
type StopCallSpec struct {
	StationID  string
	PlatformID string
	Arrival    model.ServiceTime
	Departure  model.ServiceTime
	NoPickup   bool
	NoDropOff  bool
}

// Call is shorthand for a stop call with pickup and drop-off allowed.
func Call(stationID string, arrival, departure model.ServiceTime) StopCallSpec {
	return StopCallSpec{StationID: stationID, Arrival: arrival, Departure: departure}
}

type TripSpec struct {
	ID        string
	RouteID   string
	ServiceID string
	Calls     []StopCallSpec
}

var ErrInvalidNetwork = errors.New("invalid network")

// NetworkBuilder assembles a MemoryStore from domain-shaped input. Errors
// are collected and reported together by Build.
type NetworkBuilder struct {
	nodes []Node
	rels  []Relationship
	errs  []error

	stations      map[string]NodeID
	platforms     map[string]NodeID
	routes        map[string]RouteSpec
	services      map[string]NodeID
	trips         map[string]struct{}
	routeStations map[[2]string]NodeID
	edges         map[edgeKey]struct{}
}

type edgeKey struct {
	from, to NodeID
	typ      RelType
}

func NewNetworkBuilder() *NetworkBuilder {
	return &NetworkBuilder{
		stations:      map[string]NodeID{},
		platforms:     map[string]NodeID{},
		routes:        map[string]RouteSpec{},
		services:      map[string]NodeID{},
		trips:         map[string]struct{}{},
		routeStations: map[[2]string]NodeID{},
		edges:         map[edgeKey]struct{}{},
	}
}

func (b *NetworkBuilder) fail(format string, args ...any) {
	b.errs = append(b.errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidNetwork}, args...)...))
}

func (b *NetworkBuilder) addNode(label Label, props Properties) NodeID {
	id := NodeID(len(b.nodes))
	b.nodes = append(b.nodes, Node{ID: id, Label: label, Props: props})
	return id
}

func (b *NetworkBuilder) addRel(typ RelType, from, to NodeID, props Properties) RelID {
	id := RelID(len(b.rels))
	if props == nil {
		props = Properties{}
	}
	b.rels = append(b.rels, Relationship{ID: id, Type: typ, From: from, To: to, Props: props})
	return id
}

// addRelOnce adds an untimed relationship unless an identical one exists.
func (b *NetworkBuilder) addRelOnce(typ RelType, from, to NodeID, props Properties) {
	k := edgeKey{from: from, to: to, typ: typ}
	if _, ok := b.edges[k]; ok {
		return
	}
	b.edges[k] = struct{}{}
	b.addRel(typ, from, to, props)
}

func (b *NetworkBuilder) AddStation(s StationSpec) *NetworkBuilder {
	if s.ID == "" {
		b.fail("station without id")
		return b
	}
	if _, dup := b.stations[s.ID]; dup {
		b.fail("duplicate station %q", s.ID)
		return b
	}
	if !s.Position.IsValid() {
		b.fail("station %q has invalid position %s", s.ID, s.Position)
		return b
	}
	props := Properties{
		KeyID:      StringValue(s.ID),
		KeyName:    StringValue(s.Name),
		KeyGroupID: StringValue(s.GroupID),
		KeyModes:   ModesValue(0),
	}
	positionProps(props, s.Position)
	b.stations[s.ID] = b.addNode(LabelStation, props)
	return b
}

func (b *NetworkBuilder) AddPlatform(p PlatformSpec) *NetworkBuilder {
	station, ok := b.stations[p.StationID]
	if !ok {
		b.fail("platform %q references unknown station %q", p.ID, p.StationID)
		return b
	}
	if _, dup := b.platforms[p.ID]; dup || p.ID == "" {
		b.fail("duplicate or empty platform id %q", p.ID)
		return b
	}
	props := Properties{
		KeyID:        StringValue(p.ID),
		KeyStationID: StringValue(p.StationID),
	}
	pos, _ := b.nodes[station].Props.Position()
	positionProps(props, pos)
	node := b.addNode(LabelPlatform, props)
	b.platforms[p.ID] = node
	b.addRel(RelEnterPlatform, station, node, Properties{KeyCost: DurationValue(0)})
	b.addRel(RelLeavePlatform, node, station, Properties{KeyCost: DurationValue(0)})
	return b
}

func (b *NetworkBuilder) AddRoute(r RouteSpec) *NetworkBuilder {
	if r.ID == "" {
		b.fail("route without id")
		return b
	}
	if _, dup := b.routes[r.ID]; dup {
		b.fail("duplicate route %q", r.ID)
		return b
	}
	if !r.Mode.IsVehicle() {
		b.fail("route %q has non-vehicle mode %s", r.ID, r.Mode)
		return b
	}
	b.routes[r.ID] = r
	return b
}

func (b *NetworkBuilder) AddService(s ServiceSpec) *NetworkBuilder {
	if s.ID == "" {
		b.fail("service without id")
		return b
	}
	if _, dup := b.services[s.ID]; dup {
		b.fail("duplicate service %q", s.ID)
		return b
	}
	props := Properties{KeyID: StringValue(s.ID)}
	calendarProps(props, s.Calendar)
	b.services[s.ID] = b.addNode(LabelService, props)
	return b
}

// routeStation returns the RouteStation node for (route, station), creating
// it on first use.
func (b *NetworkBuilder) routeStation(r RouteSpec, stationID string) NodeID {
	k := [2]string{r.ID, stationID}
	if n, ok := b.routeStations[k]; ok {
		return n
	}
	station := b.stations[stationID]
	sp := b.nodes[station].Props
	sp[KeyModes] = ModesValue(sp.Modes(KeyModes).Add(r.Mode))
	props := Properties{
		KeyID:        StringValue(r.ID + ":" + stationID),
		KeyRouteID:   StringValue(r.ID),
		KeyAgencyID:  StringValue(r.AgencyID),
		KeyStationID: StringValue(stationID),
		KeyMode:      ModeValue(r.Mode),
	}
	pos, _ := sp.Position()
	positionProps(props, pos)
	n := b.addNode(LabelRouteStation, props)
	b.routeStations[k] = n
	return n
}

// AddTrip validates the trip and adds its boarding, alighting and hop
// relationships. Each hop between consecutive calls is one GOES_TO
// relationship carrying the departure from the first call and the arrival
// at the second.
func (b *NetworkBuilder) AddTrip(t TripSpec) *NetworkBuilder {
	if _, dup := b.trips[t.ID]; dup || t.ID == "" {
		b.fail("duplicate or empty trip id %q", t.ID)
		return b
	}
	route, ok := b.routes[t.RouteID]
	if !ok {
		b.fail("trip %q references unknown route %q", t.ID, t.RouteID)
		return b
	}
	if _, ok := b.services[t.ServiceID]; !ok {
		b.fail("trip %q references unknown service %q", t.ID, t.ServiceID)
		return b
	}
	if len(t.Calls) < 2 {
		b.fail("trip %q needs at least two stop calls", t.ID)
		return b
	}
	if err := checkCalls(t.Calls); err != nil {
		b.fail("trip %q: %v", t.ID, err)
		return b
	}
	for _, c := range t.Calls {
		if _, ok := b.stations[c.StationID]; !ok {
			b.fail("trip %q calls at unknown station %q", t.ID, c.StationID)
			return b
		}
		if c.PlatformID == "" {
			continue
		}
		p, ok := b.platforms[c.PlatformID]
		if !ok || b.nodes[p].Props.String(KeyStationID) != c.StationID {
			b.fail("trip %q calls at unknown platform %q of station %q", t.ID, c.PlatformID, c.StationID)
			return b
		}
	}
	b.trips[t.ID] = struct{}{}

	nodes := make([]NodeID, len(t.Calls))
	for i, c := range t.Calls {
		rs := b.routeStation(route, c.StationID)
		nodes[i] = rs
		access := b.stations[c.StationID]
		if c.PlatformID != "" {
			access = b.platforms[c.PlatformID]
		}
		edge := Properties{KeyRouteID: StringValue(route.ID), KeyCost: DurationValue(0)}
		if i < len(t.Calls)-1 {
			b.addRelOnce(RelBoard, access, rs, edge)
		}
		if i > 0 {
			b.addRelOnce(RelDepart, rs, access, edge)
		}
	}
	for i := 0; i < len(t.Calls)-1; i++ {
		from, to := t.Calls[i], t.Calls[i+1]
		b.addRel(RelGoesTo, nodes[i], nodes[i+1], Properties{
			KeyTripID:    StringValue(t.ID),
			KeyRouteID:   StringValue(route.ID),
			KeyServiceID: StringValue(t.ServiceID),
			KeyAgencyID:  StringValue(route.AgencyID),
			KeyMode:      ModeValue(route.Mode),
			KeyDeparture: TimeValue(from.Departure),
			KeyArrival:   TimeValue(to.Arrival),
			KeyCost:      DurationValue(to.Arrival.Sub(from.Departure)),
			KeyStopSeq:   IntValue(int64(i)),
			KeyPickup:    BoolValue(!from.NoPickup),
			KeyDropOff:   BoolValue(!to.NoDropOff),
			KeyStationID: StringValue(to.StationID),
		})
	}
	return b
}

func checkCalls(calls []StopCallSpec) error {
	for i, c := range calls {
		if c.Arrival < 0 || c.Departure < 0 {
			return fmt.Errorf("call %d at %q has a negative time", i, c.StationID)
		}
		if c.Departure.Before(c.Arrival) {
			return fmt.Errorf("call %d at %q departs %s before arriving %s", i, c.StationID, c.Departure, c.Arrival)
		}
		if i > 0 && c.Arrival.Before(calls[i-1].Departure) {
			return fmt.Errorf("call %d at %q arrives %s before previous departure %s", i, c.StationID, c.Arrival, calls[i-1].Departure)
		}
	}
	return nil
}

// AddWalk adds a walking connection in both directions. A zero cost leaves
// the duration to be derived from distance at search time.
func (b *NetworkBuilder) AddWalk(fromStation, toStation string, cost time.Duration) *NetworkBuilder {
	return b.addConnection(RelWalksTo, model.Walk, fromStation, toStation, cost)
}

// AddLink adds an inter-mode connection between stations in both directions.
func (b *NetworkBuilder) AddLink(fromStation, toStation string, cost time.Duration) *NetworkBuilder {
	return b.addConnection(RelLinked, model.Connect, fromStation, toStation, cost)
}

func (b *NetworkBuilder) addConnection(typ RelType, mode model.TransportMode, fromID, toID string, cost time.Duration) *NetworkBuilder {
	from, okFrom := b.stations[fromID]
	to, okTo := b.stations[toID]
	if !okFrom || !okTo {
		b.fail("%s between unknown stations %q and %q", typ, fromID, toID)
		return b
	}
	if from == to || cost < 0 {
		b.fail("invalid %s from %q to %q", typ, fromID, toID)
		return b
	}
	a, _ := b.nodes[from].Props.Position()
	z, _ := b.nodes[to].Props.Position()
	meters := int64(a.DistanceKM(z) * 1000)
	for _, pair := range [][2]NodeID{{from, to}, {to, from}} {
		b.addRelOnce(typ, pair[0], pair[1], Properties{
			KeyCost:      DurationValue(cost),
			KeyDistanceM: IntValue(meters),
			KeyMode:      ModeValue(mode),
		})
	}
	return b
}

// Build returns the store, or every validation error joined together.
func (b *NetworkBuilder) Build() (*MemoryStore, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	return NewMemoryStore(b.nodes, b.rels)
}

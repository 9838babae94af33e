package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// journeyNamespace scopes the deterministic journey ids.
var journeyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:journey-planner:journey"))

// Leg is one continuous part of a journey: a ride on a single trip or a walk.
type Leg struct {
	Mode        TransportMode `json:"mode"`
	FromStation string        `json:"fromStation"`
	ToStation   string        `json:"toStation"`
	Departure   ServiceTime   `json:"departure"`
	Arrival     ServiceTime   `json:"arrival"`
	RouteID     string        `json:"routeId,omitempty"`
	TripID      string        `json:"tripId,omitempty"`
	ServiceID   string        `json:"serviceId,omitempty"`
	// Stops lists the stations called at after boarding, ending with ToStation.
	Stops []string `json:"stops,omitempty"`
}

func (l Leg) IsWalk() bool { return !l.Mode.IsVehicle() }

func (l Leg) Duration() time.Duration { return l.Arrival.Sub(l.Departure) }

func (l Leg) signature() string {
	return fmt.Sprintf("%s:%s>%s@%d-%d:%s", l.Mode, l.FromStation, l.ToStation, l.Departure, l.Arrival, l.TripID)
}

// Journey is a complete itinerary returned by the planner.
type Journey struct {
	ID            uuid.UUID   `json:"id"`
	QueryTime     ServiceTime `json:"queryTime"`
	DepartureTime ServiceTime `json:"departureTime"`
	ArrivalTime   ServiceTime `json:"arrivalTime"`
	Changes       int         `json:"changes"`
	Legs          []Leg       `json:"legs"`
}

// NewJourney assembles a journey and derives its id from the legs, so that
// the same itinerary always carries the same id.
func NewJourney(queryTime ServiceTime, changes int, legs []Leg) Journey {
	j := Journey{QueryTime: queryTime, Changes: changes, Legs: legs}
	if len(legs) > 0 {
		j.DepartureTime = legs[0].Departure
		j.ArrivalTime = legs[len(legs)-1].Arrival
	} else {
		j.DepartureTime = queryTime
		j.ArrivalTime = queryTime
	}
	j.ID = uuid.NewSHA1(journeyNamespace, []byte(j.Signature()))
	return j
}

// Signature identifies the itinerary independently of the query that found it.
func (j Journey) Signature() string {
	parts := make([]string, len(j.Legs))
	for i, l := range j.Legs {
		parts[i] = l.signature()
	}
	return strings.Join(parts, "|")
}

// Duration is the time from the first departure to the final arrival.
func (j Journey) Duration() time.Duration { return j.ArrivalTime.Sub(j.DepartureTime) }

// Elapsed is the time from the query time to the final arrival.
func (j Journey) Elapsed() time.Duration { return j.ArrivalTime.Sub(j.QueryTime) }

// VehicleLegs returns only the legs ridden on a vehicle.
func (j Journey) VehicleLegs() []Leg {
	out := make([]Leg, 0, len(j.Legs))
	for _, l := range j.Legs {
		if !l.IsWalk() {
			out = append(out, l)
		}
	}
	return out
}

// Dominates reports whether j is at least as good as o on arrival, changes
// and departure, and strictly better on one of them.
func (j Journey) Dominates(o Journey) bool {
	if j.ArrivalTime > o.ArrivalTime || j.Changes > o.Changes || j.DepartureTime < o.DepartureTime {
		return false
	}
	return j.ArrivalTime < o.ArrivalTime || j.Changes < o.Changes || j.DepartureTime > o.DepartureTime
}

func (j Journey) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s->%s changes=%d", j.DepartureTime, j.ArrivalTime, j.Changes)
	for _, l := range j.Legs {
		fmt.Fprintf(&b, " [%s %s %s->%s %s]", l.Mode, l.FromStation, l.Departure, l.ToStation, l.Arrival)
	}
	return b.String()
}

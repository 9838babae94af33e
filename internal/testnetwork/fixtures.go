// Package testnetwork builds the fixture networks shared by package tests.
package testnetwork

import (
	"fmt"
	"testing"
	"time"

	"github.com/theoremus-urban-solutions/journey-planner/graph"
	"github.com/theoremus-urban-solutions/journey-planner/model"
)

// QueryDate is a Monday inside every fixture calendar.
var QueryDate = model.NewDate(2024, time.June, 10)

const (
	StationA = "A"
	StationB = "B"
	StationC = "C"
	StationD = "D"

	PlatformB1 = "B1"
	PlatformB2 = "B2"

	GroupCity = "city"

	RouteTram1 = "tram1"
	RouteTram2 = "tram2"
	RouteBus   = "bus"

	AgencyTram = "MET"
	AgencyBus  = "BUSCO"

	ServiceDaily = "daily"
	ServiceNight = "night"
)

var (
	PosA = model.LatLong{Lat: 53.3900, Lon: -2.3500}
	PosB = model.LatLong{Lat: 53.4400, Lon: -2.2900}
	PosC = model.LatLong{Lat: 53.4750, Lon: -2.2450}
	PosD = model.LatLong{Lat: 53.4770, Lon: -2.2420}
)

func at(s string) model.ServiceTime { return model.MustParseServiceTime(s) }

func year() model.ServiceCalendar {
	return model.EveryDay(model.NewDate(2024, time.January, 1), model.NewDate(2024, time.December, 31))
}

// BuildABC returns the three-station network:
//
//	tram1  A 09:00 -> B 09:10 (arrives on platform B1)
//	tram2  B 09:15 -> C 09:25 (departs from platform B2)
//	bus    A 09:05 -> C 09:50
//
// plus station D in the same group as C, a three minute walk away.
func BuildABC() (*graph.MemoryStore, error) {
	b := graph.NewNetworkBuilder()
	addABC(b)
	return b.Build()
}

func addABC(b *graph.NetworkBuilder) {
	b.AddStation(graph.StationSpec{ID: StationA, Name: "Altrincham", Position: PosA}).
		AddStation(graph.StationSpec{ID: StationB, Name: "Broadway", Position: PosB}).
		AddStation(graph.StationSpec{ID: StationC, Name: "Cornbrook", Position: PosC, GroupID: GroupCity}).
		AddStation(graph.StationSpec{ID: StationD, Name: "Deansgate", Position: PosD, GroupID: GroupCity}).
		AddPlatform(graph.PlatformSpec{ID: PlatformB1, StationID: StationB}).
		AddPlatform(graph.PlatformSpec{ID: PlatformB2, StationID: StationB}).
		AddRoute(graph.RouteSpec{ID: RouteTram1, AgencyID: AgencyTram, Mode: model.Tram}).
		AddRoute(graph.RouteSpec{ID: RouteTram2, AgencyID: AgencyTram, Mode: model.Tram}).
		AddRoute(graph.RouteSpec{ID: RouteBus, AgencyID: AgencyBus, Mode: model.Bus}).
		AddService(graph.ServiceSpec{ID: ServiceDaily, Calendar: year()}).
		AddTrip(graph.TripSpec{ID: "tram1-0900", RouteID: RouteTram1, ServiceID: ServiceDaily, Calls: []graph.StopCallSpec{
			graph.Call(StationA, at("09:00"), at("09:00")),
			{StationID: StationB, PlatformID: PlatformB1, Arrival: at("09:10"), Departure: at("09:10")},
		}}).
		AddTrip(graph.TripSpec{ID: "tram2-0915", RouteID: RouteTram2, ServiceID: ServiceDaily, Calls: []graph.StopCallSpec{
			{StationID: StationB, PlatformID: PlatformB2, Arrival: at("09:15"), Departure: at("09:15")},
			graph.Call(StationC, at("09:25"), at("09:25")),
		}}).
		AddTrip(graph.TripSpec{ID: "bus-0905", RouteID: RouteBus, ServiceID: ServiceDaily, Calls: []graph.StopCallSpec{
			graph.Call(StationA, at("09:05"), at("09:05")),
			graph.Call(StationC, at("09:50"), at("09:50")),
		}}).
		AddWalk(StationC, StationD, 3*time.Minute)
}

// ABC loads the three-station network or fails the test.
func ABC(t testing.TB) *graph.MemoryStore {
	t.Helper()
	store, err := BuildABC()
	if err != nil {
		t.Fatalf("Failed to build ABC network: %v", err)
	}
	return store
}

// MustABC builds the three-station network or panics (for init).
func MustABC() *graph.MemoryStore {
	store, err := BuildABC()
	if err != nil {
		panic("Failed to build ABC network: " + err.Error())
	}
	return store
}

// Midnight returns the ABC network plus a night tram A -> B leaving at
// 24:30 on a service that runs only on the day before QueryDate, so on
// QueryDate it departs at 00:30.
func Midnight(t testing.TB) *graph.MemoryStore {
	t.Helper()
	b := graph.NewNetworkBuilder()
	addABC(b)
	prev := QueryDate.AddDays(-1)
	b.AddService(graph.ServiceSpec{ID: ServiceNight, Calendar: model.ServiceCalendar{Added: []model.Date{prev}}}).
		AddTrip(graph.TripSpec{ID: "tram1-night", RouteID: RouteTram1, ServiceID: ServiceNight, Calls: []graph.StopCallSpec{
			graph.Call(StationA, at("24:30"), at("24:30")),
			{StationID: StationB, PlatformID: PlatformB1, Arrival: at("24:45"), Departure: at("24:45")},
		}})
	store, err := b.Build()
	if err != nil {
		t.Fatalf("Failed to build midnight network: %v", err)
	}
	return store
}

// GridStation names the station at row r, column c of a Grid network.
func GridStation(r, c int) string { return fmt.Sprintf("G%d-%d", r, c) }

// Grid returns an n x n lattice of stations. Every row is a tram line and
// every column a bus line, each running both ways every ten minutes from
// 06:00 to 12:00 with four minutes between stops.
func Grid(t testing.TB, n int) *graph.MemoryStore {
	t.Helper()
	b := graph.NewNetworkBuilder()
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			pos := model.LatLong{Lat: 53.40 + float64(r)*0.01, Lon: -2.30 + float64(c)*0.015}
			b.AddStation(graph.StationSpec{ID: GridStation(r, c), Name: GridStation(r, c), Position: pos})
		}
	}
	b.AddService(graph.ServiceSpec{ID: ServiceDaily, Calendar: year()})
	line := func(routeID string, mode model.TransportMode, stations []string) {
		b.AddRoute(graph.RouteSpec{ID: routeID, AgencyID: "GRID", Mode: mode})
		for start := at("06:00"); start < at("12:00"); start = start.Add(10 * time.Minute) {
			for dir, seq := range [][]string{stations, reversed(stations)} {
				calls := make([]graph.StopCallSpec, len(seq))
				for i, st := range seq {
					tm := start.Add(time.Duration(i) * 4 * time.Minute)
					calls[i] = graph.Call(st, tm, tm)
				}
				b.AddTrip(graph.TripSpec{
					ID:        fmt.Sprintf("%s-%d-%s", routeID, dir, start),
					RouteID:   routeID,
					ServiceID: ServiceDaily,
					Calls:     calls,
				})
			}
		}
	}
	for r := 0; r < n; r++ {
		var row []string
		for c := 0; c < n; c++ {
			row = append(row, GridStation(r, c))
		}
		line(fmt.Sprintf("row%d", r), model.Tram, row)
	}
	for c := 0; c < n; c++ {
		var col []string
		for r := 0; r < n; r++ {
			col = append(col, GridStation(r, c))
		}
		line(fmt.Sprintf("col%d", c), model.Bus, col)
	}
	store, err := b.Build()
	if err != nil {
		t.Fatalf("Failed to build grid network: %v", err)
	}
	return store
}

func reversed(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[len(in)-1-i] = s
	}
	return out
}

package filter

import (
	"errors"
	"sort"
	"strings"
)

// ErrEmptyFilter is returned when a filter is built without any allow-list.
var ErrEmptyFilter = errors.New("graph filter configured without any allow-list")

type idSet map[string]struct{}

func newIDSet(ids []string) idSet {
	if len(ids) == 0 {
		return nil
	}
	s := make(idSet, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			s[id] = struct{}{}
		}
	}
	if len(s) == 0 {
		return nil
	}
	return s
}

// allows treats an unset dimension as "allow all".
func (s idSet) allows(id string) bool {
	if s == nil {
		return true
	}
	_, ok := s[id]
	return ok
}

func (s idSet) sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// GraphFilter is a set of allow-lists.
type GraphFilter struct {
	routes   idSet
	services idSet
	stations idSet
	agencies idSet
}

// Option adds an allow-list to a filter under construction.
type Option func(*GraphFilter)

func Routes(ids ...string) Option   { return func(f *GraphFilter) { f.routes = newIDSet(ids) } }
func Services(ids ...string) Option { return func(f *GraphFilter) { f.services = newIDSet(ids) } }
func Stations(ids ...string) Option { return func(f *GraphFilter) { f.stations = newIDSet(ids) } }
func Agencies(ids ...string) Option { return func(f *GraphFilter) { f.agencies = newIDSet(ids) } }

// NewGraphFilter builds a filter; at least one allow-list must be non-empty.
func NewGraphFilter(opts ...Option) (*GraphFilter, error) {
	f := &GraphFilter{}
	for _, o := range opts {
		o(f)
	}
	if f.routes == nil && f.services == nil && f.stations == nil && f.agencies == nil {
		return nil, ErrEmptyFilter
	}
	return f, nil
}

// IsFiltered reports whether any restriction applies.
func (f *GraphFilter) IsFiltered() bool { return f != nil }

func (f *GraphFilter) ShouldIncludeRoute(routeID string) bool {
	return f == nil || f.routes.allows(routeID)
}

func (f *GraphFilter) ShouldIncludeService(serviceID string) bool {
	return f == nil || f.services.allows(serviceID)
}

func (f *GraphFilter) ShouldIncludeStation(stationID string) bool {
	return f == nil || f.stations.allows(stationID)
}

func (f *GraphFilter) ShouldIncludeAgency(agencyID string) bool {
	return f == nil || f.agencies.allows(agencyID)
}

// ShouldIncludeStationPair allows a link only when both ends are allowed.
func (f *GraphFilter) ShouldIncludeStationPair(from, to string) bool {
	return f.ShouldIncludeStation(from) && f.ShouldIncludeStation(to)
}

// StopCall is the subset of a scheduled call the filter inspects.
type StopCall struct {
	RouteID   string
	ServiceID string
	AgencyID  string
	StationID string
}

// ShouldIncludeStopCall checks every dimension of a call.
func (f *GraphFilter) ShouldIncludeStopCall(c StopCall) bool {
	return f.ShouldIncludeRoute(c.RouteID) && f.ShouldIncludeService(c.ServiceID) &&
		f.ShouldIncludeAgency(c.AgencyID) && f.ShouldIncludeStation(c.StationID)
}

func (f *GraphFilter) String() string {
	if f == nil {
		return "GraphFilter{none}"
	}
	var parts []string
	add := func(name string, s idSet) {
		if s != nil {
			parts = append(parts, name+"="+strings.Join(s.sorted(), ","))
		}
	}
	add("routes", f.routes)
	add("services", f.services)
	add("stations", f.stations)
	add("agencies", f.agencies)
	return "GraphFilter{" + strings.Join(parts, " ") + "}"
}

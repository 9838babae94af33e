package graph

import (
	"errors"
	"fmt"
	"time"

	"github.com/theoremus-urban-solutions/journey-planner/model"
)

var (
	ErrTransactionClosed = errors.New("graph: transaction closed")
	ErrNodeNotFound      = errors.New("graph: node not found")
	ErrRelNotFound       = errors.New("graph: relationship not found")
	ErrPropertyNotFound  = errors.New("graph: property not found")
	ErrWrongKind         = errors.New("graph: property has a different kind")
)

// NodeID identifies a node within one store.
type NodeID int64

// RelID identifies a relationship within one store.
type RelID int64

// Label is the kind of a node.
type Label uint8

const (
	LabelNone Label = iota
	LabelStation
	LabelPlatform
	LabelRouteStation
	LabelService
)

func (l Label) String() string {
	switch l {
	case LabelStation:
		return "Station"
	case LabelPlatform:
		return "Platform"
	case LabelRouteStation:
		return "RouteStation"
	case LabelService:
		return "Service"
	}
	return "None"
}

// RelType is the kind of a relationship.
type RelType uint8

const (
	RelNone RelType = iota
	RelEnterPlatform
	RelLeavePlatform
	RelBoard
	RelDepart
	RelGoesTo
	RelWalksTo
	RelLinked
)

func (t RelType) String() string {
	switch t {
	case RelEnterPlatform:
		return "ENTER_PLATFORM"
	case RelLeavePlatform:
		return "LEAVE_PLATFORM"
	case RelBoard:
		return "BOARD"
	case RelDepart:
		return "DEPART"
	case RelGoesTo:
		return "GOES_TO"
	case RelWalksTo:
		return "WALKS_TO"
	case RelLinked:
		return "LINKED"
	}
	return fmt.Sprintf("RelType(%d)", uint8(t))
}

// Key names a property.
type Key uint8

const (
	KeyID Key = iota + 1
	KeyName
	KeyStationID
	KeyPlatformID
	KeyRouteID
	KeyAgencyID
	KeyServiceID
	KeyTripID
	KeyGroupID
	KeyLatE6
	KeyLonE6
	KeyModes
	KeyMode
	KeyDeparture
	KeyArrival
	KeyCost
	KeyDistanceM
	KeyStopSeq
	KeyPickup
	KeyDropOff
	KeyStartDate
	KeyEndDate
	KeyWeekdays
	KeyAddedDates
	KeyRemovedDates
)

// ValueKind is the type of a property value.
type ValueKind uint8

const (
	KindNone ValueKind = iota
	KindInteger
	KindTimeOfDay
	KindDuration
	KindString
	KindIDSet
	KindEnumSet
)

// Value is a typed property value. Fields are exported for gob.
type Value struct {
	Kind ValueKind
	Int  int64
	Str  string
	IDs  []string
}

func IntValue(v int64) Value                 { return Value{Kind: KindInteger, Int: v} }
func TimeValue(t model.ServiceTime) Value    { return Value{Kind: KindTimeOfDay, Int: int64(t)} }
func DurationValue(d time.Duration) Value    { return Value{Kind: KindDuration, Int: int64(d / time.Second)} }
func StringValue(s string) Value             { return Value{Kind: KindString, Str: s} }
func IDSetValue(ids ...string) Value         { return Value{Kind: KindIDSet, IDs: ids} }
func EnumSetValue(bits uint64) Value         { return Value{Kind: KindEnumSet, Int: int64(bits)} }
func BoolValue(b bool) Value                 { return IntValue(boolToInt(b)) }
func ModesValue(modes model.ModeSet) Value   { return EnumSetValue(uint64(modes)) }
func ModeValue(mode model.TransportMode) Value { return ModesValue(model.NewModeSet(mode)) }

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (v Value) AsInt() (int64, error) {
	if v.Kind != KindInteger {
		return 0, fmt.Errorf("%w: want integer, have %d", ErrWrongKind, v.Kind)
	}
	return v.Int, nil
}

func (v Value) AsTime() (model.ServiceTime, error) {
	if v.Kind != KindTimeOfDay {
		return 0, fmt.Errorf("%w: want time-of-day, have %d", ErrWrongKind, v.Kind)
	}
	return model.ServiceTime(v.Int), nil
}

func (v Value) AsDuration() (time.Duration, error) {
	if v.Kind != KindDuration {
		return 0, fmt.Errorf("%w: want duration, have %d", ErrWrongKind, v.Kind)
	}
	return time.Duration(v.Int) * time.Second, nil
}

func (v Value) AsString() (string, error) {
	if v.Kind != KindString {
		return "", fmt.Errorf("%w: want string, have %d", ErrWrongKind, v.Kind)
	}
	return v.Str, nil
}

func (v Value) AsIDSet() ([]string, error) {
	if v.Kind != KindIDSet {
		return nil, fmt.Errorf("%w: want id-set, have %d", ErrWrongKind, v.Kind)
	}
	return v.IDs, nil
}

func (v Value) AsEnumSet() (uint64, error) {
	if v.Kind != KindEnumSet {
		return 0, fmt.Errorf("%w: want enum-set, have %d", ErrWrongKind, v.Kind)
	}
	return uint64(v.Int), nil
}

// Properties is the property bag of a node or relationship.
type Properties map[Key]Value

func (p Properties) Get(k Key) (Value, bool) {
	v, ok := p[k]
	return v, ok
}

// The lenient getters below return the zero value when the key is missing
// or holds another kind; use Get and the As* methods to tell the difference.

func (p Properties) String(k Key) string {
	s, _ := p[k].AsString()
	return s
}

func (p Properties) Int(k Key) int64 {
	i, _ := p[k].AsInt()
	return i
}

func (p Properties) Bool(k Key) bool { return p.Int(k) != 0 }

func (p Properties) Time(k Key) model.ServiceTime {
	t, _ := p[k].AsTime()
	return t
}

func (p Properties) Duration(k Key) time.Duration {
	d, _ := p[k].AsDuration()
	return d
}

func (p Properties) Modes(k Key) model.ModeSet {
	bits, _ := p[k].AsEnumSet()
	return model.ModeSet(bits)
}

// Mode returns the first mode of a single-mode enum set.
func (p Properties) Mode(k Key) model.TransportMode {
	modes := p.Modes(k).Modes()
	if len(modes) == 0 {
		return model.Unset
	}
	return modes[0]
}

func (p Properties) IDs(k Key) []string {
	ids, _ := p[k].AsIDSet()
	return ids
}

// Position decodes the microdegree coordinates stored on stations and the
// nodes derived from them.
func (p Properties) Position() (model.LatLong, bool) {
	lat, okLat := p[KeyLatE6]
	lon, okLon := p[KeyLonE6]
	if !okLat || !okLon {
		return model.LatLong{}, false
	}
	return model.LatLong{Lat: float64(lat.Int) / 1e6, Lon: float64(lon.Int) / 1e6}, true
}

// Node is a labelled node with its properties.
type Node struct {
	ID    NodeID
	Label Label
	Props Properties
}

// Relationship is a directed, typed edge with its property bag.
type Relationship struct {
	ID    RelID
	Type  RelType
	From  NodeID
	To    NodeID
	Props Properties
}

func (r Relationship) String() string {
	return fmt.Sprintf("%d-%s->%d", r.From, r.Type, r.To)
}

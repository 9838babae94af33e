package model

import (
	"fmt"
	"strings"
)

// TransportMode is a way of travelling between two places in the network.
type TransportMode uint8

const (
	Unset TransportMode = iota
	Bus
	Tram
	Train
	Walk
	Ferry
	Subway
	RailReplacementBus
	Ship
	// Connect is an inter-mode transfer link between two stations.
	Connect
)

var modeNames = [...]string{
	Unset:              "Unset",
	Bus:                "Bus",
	Tram:               "Tram",
	Train:              "Train",
	Walk:               "Walk",
	Ferry:              "Ferry",
	Subway:             "Subway",
	RailReplacementBus: "RailReplacementBus",
	Ship:               "Ship",
	Connect:            "Connect",
}

func (m TransportMode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("TransportMode(%d)", uint8(m))
}

// IsVehicle reports whether the mode is a timetabled vehicle.
func (m TransportMode) IsVehicle() bool {
	return m != Unset && m != Walk && m != Connect
}

// ParseTransportMode parses a mode name, case-insensitively.
func ParseTransportMode(s string) (TransportMode, error) {
	s = strings.TrimSpace(s)
	for i, name := range modeNames {
		if strings.EqualFold(name, s) {
			return TransportMode(i), nil
		}
	}
	return Unset, fmt.Errorf("unknown transport mode %q", s)
}

func (m TransportMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *TransportMode) UnmarshalText(b []byte) error {
	parsed, err := ParseTransportMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ModeSet is a set of transport modes.
type ModeSet uint16

// NewModeSet returns a set holding the given modes.
func NewModeSet(modes ...TransportMode) ModeSet {
	var s ModeSet
	for _, m := range modes {
		s = s.Add(m)
	}
	return s
}

// AllModes returns every mode except Unset.
func AllModes() ModeSet {
	var s ModeSet
	for m := Bus; m <= Connect; m++ {
		s = s.Add(m)
	}
	return s
}

func (s ModeSet) Add(m TransportMode) ModeSet { return s | 1<<m }

func (s ModeSet) Contains(m TransportMode) bool { return s&(1<<m) != 0 }

func (s ModeSet) IsEmpty() bool { return s == 0 }

// Modes returns the members in enum order.
func (s ModeSet) Modes() []TransportMode {
	out := make([]TransportMode, 0, len(modeNames))
	for i := range modeNames {
		if s.Contains(TransportMode(i)) {
			out = append(out, TransportMode(i))
		}
	}
	return out
}

func (s ModeSet) String() string {
	modes := s.Modes()
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = m.String()
	}
	return "{" + strings.Join(names, ",") + "}"
}

// ParseModeSet parses a comma separated list of mode names.
func ParseModeSet(s string) (ModeSet, error) {
	var set ModeSet
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		m, err := ParseTransportMode(part)
		if err != nil {
			return 0, err
		}
		set = set.Add(m)
	}
	return set, nil
}

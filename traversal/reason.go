package traversal

import "fmt"

// ReasonCode explains why a branch continued or stopped.
type ReasonCode uint8

const (
	// valid
	Continue ReasonCode = iota
	ServiceDateOk
	ServiceTimeOk
	NumChangesOk
	DurationOk
	WalkOk
	StationOpen
	TransportModeOk
	OnTram
	OnBus
	OnTrain
	OnFerry
	OnSubway
	OnShip
	OnRailReplacementBus
	OnWalk
	Arrived

	// invalid
	NotOnQueryDate
	DoesNotOperateOnTime
	AlreadyDeparted
	TooManyChanges
	TooManyWalkingConnections
	TookTooLong
	PathTooLong
	ReturnedToStart
	StationClosed
	StationNotIncluded
	RouteNotIncluded
	ServiceNotIncluded
	AgencyNotIncluded
	TransportModeWrong
	PickupNotAllowed
	DropOffNotAllowed
	HigherCost
	ArrivedLate
	TimedOut
	StationNotReachable

	numReasonCodes
)

var reasonNames = [...]string{
	Continue:                  "Continue",
	ServiceDateOk:             "ServiceDateOk",
	ServiceTimeOk:             "ServiceTimeOk",
	NumChangesOk:              "NumChangesOk",
	DurationOk:                "DurationOk",
	WalkOk:                    "WalkOk",
	StationOpen:               "StationOpen",
	TransportModeOk:           "TransportModeOk",
	OnTram:                    "OnTram",
	OnBus:                     "OnBus",
	OnTrain:                   "OnTrain",
	OnFerry:                   "OnFerry",
	OnSubway:                  "OnSubway",
	OnShip:                    "OnShip",
	OnRailReplacementBus:      "OnRailReplacementBus",
	OnWalk:                    "OnWalk",
	Arrived:                   "Arrived",
	NotOnQueryDate:            "NotOnQueryDate",
	DoesNotOperateOnTime:      "DoesNotOperateOnTime",
	AlreadyDeparted:           "AlreadyDeparted",
	TooManyChanges:            "TooManyChanges",
	TooManyWalkingConnections: "TooManyWalkingConnections",
	TookTooLong:               "TookTooLong",
	PathTooLong:               "PathTooLong",
	ReturnedToStart:           "ReturnedToStart",
	StationClosed:             "StationClosed",
	StationNotIncluded:        "StationNotIncluded",
	RouteNotIncluded:          "RouteNotIncluded",
	ServiceNotIncluded:        "ServiceNotIncluded",
	AgencyNotIncluded:         "AgencyNotIncluded",
	TransportModeWrong:        "TransportModeWrong",
	PickupNotAllowed:          "PickupNotAllowed",
	DropOffNotAllowed:         "DropOffNotAllowed",
	HigherCost:                "HigherCost",
	ArrivedLate:               "ArrivedLate",
	TimedOut:                  "TimedOut",
	StationNotReachable:       "StationNotReachable",
}

func (c ReasonCode) String() string {
	if c < numReasonCodes {
		return reasonNames[c]
	}
	return fmt.Sprintf("ReasonCode(%d)", uint8(c))
}

// IsValid reports whether the code lets a branch continue.
func (c ReasonCode) IsValid() bool { return c <= Arrived }

// ReasonCodes lists every code in declaration order.
func ReasonCodes() []ReasonCode {
	out := make([]ReasonCode, numReasonCodes)
	for i := range out {
		out[i] = ReasonCode(i)
	}
	return out
}

// ParseReasonCode is the inverse of String.
func ParseReasonCode(s string) (ReasonCode, error) {
	for i, name := range reasonNames {
		if name == s {
			return ReasonCode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown reason code %q", s)
}

func (c ReasonCode) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *ReasonCode) UnmarshalText(b []byte) error {
	v, err := ParseReasonCode(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// ServiceTime is a time of day in seconds since the start of the service day.
// Values at or beyond 24:00 belong to the following calendar day; ordering is
// always by the absolute value so 23:58 is before 24:10.
type ServiceTime int32

// NewServiceTime builds a ServiceTime from its components. Hours may exceed 23.
func NewServiceTime(hours, minutes, seconds int) ServiceTime {
	return ServiceTime(hours*3600 + minutes*60 + seconds)
}

// ParseServiceTime parses "HH:MM" or "HH:MM:SS". Hours of 24 or more are
// accepted the way GTFS writes trips that run past midnight.
func ParseServiceTime(s string) (ServiceTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid service time %q", s)
	}
	vals := [3]int{}
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid service time %q", s)
		}
		vals[i] = v
	}
	if vals[1] > 59 || vals[2] > 59 || vals[0] > 47 {
		return 0, fmt.Errorf("service time out of range %q", s)
	}
	return NewServiceTime(vals[0], vals[1], vals[2]), nil
}

// MustParseServiceTime is ParseServiceTime for constants; it panics on bad input.
func MustParseServiceTime(s string) ServiceTime {
	t, err := ParseServiceTime(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ServiceTimeOf returns the time of day of t on its own calendar day.
func ServiceTimeOf(t time.Time) ServiceTime {
	return NewServiceTime(t.Hour(), t.Minute(), t.Second())
}

func (t ServiceTime) Add(d time.Duration) ServiceTime {
	return t + ServiceTime(d/time.Second)
}

func (t ServiceTime) Sub(o ServiceTime) time.Duration {
	return time.Duration(t-o) * time.Second
}

func (t ServiceTime) Before(o ServiceTime) bool { return t < o }

func (t ServiceTime) After(o ServiceTime) bool { return t > o }

// IsNextDay reports whether the time falls on the day after the service day.
func (t ServiceTime) IsNextDay() bool { return t >= secondsPerDay }

// Hour is the hour on the wall clock, 0-23.
func (t ServiceTime) Hour() int { return mod(int(t), secondsPerDay) / 3600 }

func (t ServiceTime) Minute() int { return mod(int(t), 3600) / 60 }

func mod(a, b int) int { return (a%b + b) % b }

// Seconds returns the raw number of seconds since the start of the service day.
func (t ServiceTime) Seconds() int { return int(t) }

// PreviousDay shifts a time from the previous service day onto this one,
// e.g. 24:30 yesterday becomes 00:30 today.
func (t ServiceTime) PreviousDay() ServiceTime { return t - secondsPerDay }

func (t ServiceTime) String() string {
	s := fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
	if t < 0 {
		return s + "-1"
	}
	if days := int(t) / secondsPerDay; days > 0 {
		return fmt.Sprintf("%s+%d", s, days)
	}
	return s
}

func (t ServiceTime) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

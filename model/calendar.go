package model

import "time"

// Date is a civil date with no time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the civil date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// NewDate builds a Date.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }

func (d Date) AddDays(n int) Date { return DateOf(d.Time().AddDate(0, 0, n)) }

func (d Date) Before(o Date) bool { return d.Time().Before(o.Time()) }

func (d Date) After(o Date) bool { return d.Time().After(o.Time()) }

func (d Date) IsZero() bool { return d == Date{} }

// Key returns the date as yyyymmdd, the form used in graph properties.
func (d Date) Key() int64 {
	return int64(d.Year)*10000 + int64(d.Month)*100 + int64(d.Day)
}

// DateFromKey is the inverse of Key.
func DateFromKey(k int64) Date {
	if k == 0 {
		return Date{}
	}
	return NewDate(int(k/10000), time.Month(k/100%100), int(k%100))
}

func (d Date) String() string { return d.Time().Format("2006-01-02") }

// ServiceCalendar describes the days on which a service operates.
type ServiceCalendar struct {
	Start    Date
	End      Date
	Weekdays [7]bool
	Added    []Date
	Removed  []Date
}

// EveryDay returns a calendar running on all days between start and end.
func EveryDay(start, end Date) ServiceCalendar {
	c := ServiceCalendar{Start: start, End: end}
	for i := range c.Weekdays {
		c.Weekdays[i] = true
	}
	return c
}

// RunsOn reports whether the service operates on date. Removed dates win
// over everything, added dates win over the weekly pattern.
func (c ServiceCalendar) RunsOn(date Date) bool {
	for _, d := range c.Removed {
		if d == date {
			return false
		}
	}
	for _, d := range c.Added {
		if d == date {
			return true
		}
	}
	if date.Before(c.Start) || date.After(c.End) {
		return false
	}
	return c.Weekdays[date.Weekday()]
}

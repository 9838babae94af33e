// Package model defines the domain types shared by the journey planner.
//
// It contains:
//   - TransportMode and ModeSet, the closed set of ways a traveller can move
//   - ServiceTime, a time of day measured from the start of the service day
//     that keeps counting past midnight (25:10 is ten past one the next day)
//   - ServiceCalendar, the dates on which a timetabled service runs
//   - Location, the tagged origin/destination of a request
//   - JourneyRequest, validated at construction
//   - Journey and Leg, the planner's output
//
// All types are immutable once constructed and safe to share between
// concurrent searches.
package model

package model

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/theoremus-urban-solutions/journey-planner/filter"
)

// ErrInvalidRequest wraps every validation failure of a JourneyRequest.
var ErrInvalidRequest = errors.New("invalid journey request")

// Request defaults applied before options.
const (
	DefaultMaxChanges          = 3
	DefaultMaxJourneyDuration  = 2 * time.Hour
	DefaultMaxNumberOfJourneys = 5
	DefaultQueryInterval       = 10 * time.Minute
)

// JourneyRequest holds the parameters of one planning query. It is a value
// type; construct it with NewJourneyRequest so that it is validated.
type JourneyRequest struct {
	Origin      Location
	Destination Location
	Date        Date
	Time        ServiceTime `validate:"gte=0"`
	// ArriveBy turns Time into a deadline instead of a departure time.
	ArriveBy            bool
	MaxChanges          int           `validate:"gte=0,lte=20"`
	MaxJourneyDuration  time.Duration `validate:"gt=0"`
	MaxNumberOfJourneys int           `validate:"gte=1"`
	// NumberOfQueries is how many alternative departure times to probe,
	// QueryInterval apart.
	NumberOfQueries int           `validate:"gte=1,lte=48"`
	QueryInterval   time.Duration `validate:"gte=0"`
	Modes           ModeSet       `validate:"gt=0"`
	ClosedStations  []string
	// Filter restricts the visible network; nil means no filtering.
	Filter   *filter.GraphFilter
	Strategy Strategy
}

// RequestOption customises a JourneyRequest under construction.
type RequestOption func(*JourneyRequest)

func WithArriveBy() RequestOption { return func(r *JourneyRequest) { r.ArriveBy = true } }

func WithMaxChanges(n int) RequestOption { return func(r *JourneyRequest) { r.MaxChanges = n } }

func WithMaxDuration(d time.Duration) RequestOption {
	return func(r *JourneyRequest) { r.MaxJourneyDuration = d }
}

func WithMaxJourneys(n int) RequestOption {
	return func(r *JourneyRequest) { r.MaxNumberOfJourneys = n }
}

// WithAlternatives probes n departure times spaced by interval.
func WithAlternatives(n int, interval time.Duration) RequestOption {
	return func(r *JourneyRequest) {
		r.NumberOfQueries = n
		r.QueryInterval = interval
	}
}

func WithModes(modes ...TransportMode) RequestOption {
	return func(r *JourneyRequest) { r.Modes = NewModeSet(modes...) }
}

func WithModeSet(modes ModeSet) RequestOption { return func(r *JourneyRequest) { r.Modes = modes } }

func WithFilter(f *filter.GraphFilter) RequestOption { return func(r *JourneyRequest) { r.Filter = f } }

func WithClosedStations(ids ...string) RequestOption {
	return func(r *JourneyRequest) { r.ClosedStations = append([]string(nil), ids...) }
}

func WithStrategy(s Strategy) RequestOption { return func(r *JourneyRequest) { r.Strategy = s } }

// NewJourneyRequest builds and validates a request.
func NewJourneyRequest(origin, destination Location, date Date, at ServiceTime, opts ...RequestOption) (JourneyRequest, error) {
	r := JourneyRequest{
		Origin:              origin,
		Destination:         destination,
		Date:                date,
		Time:                at,
		MaxChanges:          DefaultMaxChanges,
		MaxJourneyDuration:  DefaultMaxJourneyDuration,
		MaxNumberOfJourneys: DefaultMaxNumberOfJourneys,
		NumberOfQueries:     1,
		QueryInterval:       DefaultQueryInterval,
		Modes:               AllModes(),
	}
	for _, o := range opts {
		o(&r)
	}
	if err := r.Validate(); err != nil {
		return JourneyRequest{}, err
	}
	return r, nil
}

var requestValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(validateLocations, JourneyRequest{})
	return v
})

func validateLocations(sl validator.StructLevel) {
	r := sl.Current().Interface().(JourneyRequest)
	if err := r.Origin.validate(); err != nil {
		sl.ReportError(r.Origin, "Origin", "Origin", "location", err.Error())
	}
	if r.Origin.Kind() == LocationArea {
		sl.ReportError(r.Origin, "Origin", "Origin", "area_origin", "")
	}
	if err := r.Destination.validate(); err != nil {
		sl.ReportError(r.Destination, "Destination", "Destination", "location", err.Error())
	}
	if r.Origin.Kind() == LocationStation && r.Destination.Kind() == LocationStation && r.Origin.ID() == r.Destination.ID() {
		sl.ReportError(r.Destination, "Destination", "Destination", "ne_origin", "")
	}
	if r.Date.IsZero() {
		sl.ReportError(r.Date, "Date", "Date", "required", "")
	}
}

// Validate checks the request; errors wrap ErrInvalidRequest.
func (r JourneyRequest) Validate() error {
	if err := requestValidator().Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// ProbeTimes returns the start times of the alternative searches. For
// arrive-by requests the probes start early enough to meet the deadline.
func (r JourneyRequest) ProbeTimes() []ServiceTime {
	base := r.Time
	if r.ArriveBy {
		base = r.Time.Add(-r.MaxJourneyDuration)
	}
	out := make([]ServiceTime, r.NumberOfQueries)
	for i := range out {
		out[i] = base.Add(time.Duration(i) * r.QueryInterval)
	}
	return out
}

// Deadline returns the latest acceptable arrival, if any.
func (r JourneyRequest) Deadline() (ServiceTime, bool) {
	return r.Time, r.ArriveBy
}

// IsClosed reports whether a station was closed for this request.
func (r JourneyRequest) IsClosed(stationID string) bool {
	for _, id := range r.ClosedStations {
		if id == stationID {
			return true
		}
	}
	return false
}

func (r JourneyRequest) String() string {
	kind := "depart"
	if r.ArriveBy {
		kind = "arrive"
	}
	return fmt.Sprintf("%s->%s %s %s %s changes<=%d duration<=%s modes=%s",
		r.Origin, r.Destination, r.Date, kind, r.Time, r.MaxChanges, r.MaxJourneyDuration, r.Modes)
}

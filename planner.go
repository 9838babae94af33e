package journeyplanner

import (
	"context"
	"log"
	"sync"

	"github.com/theoremus-urban-solutions/journey-planner/config"
	"github.com/theoremus-urban-solutions/journey-planner/diagnostics"
	"github.com/theoremus-urban-solutions/journey-planner/diagnostics/archive"
	"github.com/theoremus-urban-solutions/journey-planner/graph"
	"github.com/theoremus-urban-solutions/journey-planner/model"
	"github.com/theoremus-urban-solutions/journey-planner/search"
)

// Planner is the entry point for journey queries. It is safe for concurrent
// use.
type Planner struct {
	engine  *search.Engine
	archive *archive.Store

	mu     sync.Mutex
	last   diagnostics.Snapshot
	lastID string
}

// Option customises a Planner.
type Option func(*Planner)

// WithArchive stores the diagnostics of every search in a.
func WithArchive(a *archive.Store) Option {
	return func(p *Planner) { p.archive = a }
}

func NewPlanner(store graph.Store, cfg config.AppConfig, opts ...Option) *Planner {
	p := &Planner{engine: search.NewEngine(store, cfg)}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Search plans journeys for req, best first. Errors are invalid requests,
// unknown locations and storage failures.
func (p *Planner) Search(ctx context.Context, req model.JourneyRequest) ([]model.Journey, error) {
	result, err := p.engine.Search(ctx, req)

	// Requests rejected before any run leave the previous search visible.
	if result.QueryID != "" {
		p.mu.Lock()
		p.last = result.Diagnostics
		p.lastID = result.QueryID
		p.mu.Unlock()
	}

	if p.archive != nil && !result.Diagnostics.IsZero() {
		if aerr := p.archive.Save(ctx, result.QueryID, req.String(), result.Diagnostics); aerr != nil {
			log.Printf("Warning: failed to archive diagnostics for %s: %v", result.QueryID, aerr)
		}
	}
	if err != nil {
		return nil, err
	}
	if result.Journeys == nil {
		return []model.Journey{}, nil
	}
	return result.Journeys, nil
}

// LastRunDiagnostics returns the diagnostics of the most recently completed
// Search.
func (p *Planner) LastRunDiagnostics() diagnostics.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// LastQueryID returns the id under which the most recent Search was logged
// and archived.
func (p *Planner) LastQueryID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastID
}

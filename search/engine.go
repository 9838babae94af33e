package search

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/theoremus-urban-solutions/journey-planner/config"
	"github.com/theoremus-urban-solutions/journey-planner/diagnostics"
	"github.com/theoremus-urban-solutions/journey-planner/graph"
	"github.com/theoremus-urban-solutions/journey-planner/heuristics"
	"github.com/theoremus-urban-solutions/journey-planner/model"
)

// Engine answers journey requests against one store. It is safe for
// concurrent use; every Search owns its state.
type Engine struct {
	store graph.Store
	cfg   config.AppConfig
}

// NewEngine returns an engine; zero settings in cfg take their defaults.
func NewEngine(store graph.Store, cfg config.AppConfig) *Engine {
	cfg.ApplyDefaults()
	return &Engine{store: store, cfg: cfg}
}

// Result is the outcome of one Search.
type Result struct {
	QueryID     string
	Strategy    model.Strategy
	Journeys    []model.Journey
	Diagnostics diagnostics.Snapshot
	Elapsed     time.Duration
}

// query is the resolved, read-only part of a request shared by its probes.
type query struct {
	req          *model.JourneyRequest
	origins      []endpoint
	destinations map[string]endpoint
	originNodes  map[graph.NodeID]bool
	strategy     model.Strategy
	estimator    *heuristics.Estimator
	grid         *heuristics.GridIndex
}

// Search runs every probe of req and merges their journeys. Exhausting the
// time or step budget yields the journeys found so far and a nil error;
// storage failures and invalid requests are returned as errors.
func (e *Engine) Search(ctx context.Context, req model.JourneyRequest) (Result, error) {
	started := time.Now()
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	q, err := e.prepare(ctx, &req)
	if err != nil {
		return Result{}, err
	}

	queryID := uuid.NewString()
	times := req.ProbeTimes()
	outcomes := make([]probeOutcome, len(times))

	runCtx, cancel := context.WithTimeout(ctx, e.cfg.Search.QueryTimeout())
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)
	g.SetLimit(e.cfg.Search.ParallelProbes)
	for i, at := range times {
		i, at := i, at
		g.Go(func() error {
			out, err := e.probe(gctx, q, at, uuid.NewString())
			outcomes[i] = out
			return err
		})
	}
	err = g.Wait()

	snaps := make([]diagnostics.Snapshot, 0, len(outcomes))
	var found []model.Journey
	timedOut := false
	for _, o := range outcomes {
		if !o.diagnostics.IsZero() {
			snaps = append(snaps, o.diagnostics)
		}
		found = append(found, o.journeys...)
		timedOut = timedOut || o.timedOut
	}
	result := Result{
		QueryID:     queryID,
		Strategy:    q.strategy,
		Diagnostics: diagnostics.MergeAll(snaps...),
	}
	if err != nil {
		result.Elapsed = time.Since(started)
		return result, fmt.Errorf("search %s failed: %w", queryID, err)
	}

	result.Journeys = Merge(found, req.MaxNumberOfJourneys)
	result.Elapsed = time.Since(started)
	if timedOut {
		log.Printf("Warning: search %s ran out of budget after %d checks", queryID, result.Diagnostics.TotalChecked)
	}
	log.Printf("search %s: %s strategy=%s probes=%d checked=%d arrived=%d journeys=%d in %s",
		queryID, req.String(), q.strategy, len(times), result.Diagnostics.TotalChecked,
		result.Diagnostics.Arrived, len(result.Journeys), result.Elapsed)
	return result, nil
}

// prepare resolves locations and picks the strategy and heuristics.
func (e *Engine) prepare(ctx context.Context, req *model.JourneyRequest) (*query, error) {
	tx, err := e.store.BeginRead(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer tx.Close()

	origins, err := e.resolve(tx, req.Origin)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve origin: %w", err)
	}
	dests, err := e.resolve(tx, req.Destination)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination: %w", err)
	}

	q := &query{
		req:          req,
		origins:      origins,
		destinations: make(map[string]endpoint, len(dests)),
		originNodes:  make(map[graph.NodeID]bool, len(origins)),
		strategy:     e.strategyFor(req),
	}
	positions := make([]model.LatLong, 0, len(dests))
	for _, d := range dests {
		q.destinations[d.stationID] = d
		positions = append(positions, d.position)
	}
	for _, o := range origins {
		q.originNodes[o.node] = true
	}
	cacheSize := e.cfg.Search.CacheSize
	q.estimator = heuristics.NewEstimator(positions, cacheSize)
	q.grid = heuristics.NewGridIndex(e.cfg.Search.GridPrecision, positions, cacheSize)
	return q, nil
}

// strategyFor prefers the request's choice, then GridAware for area
// destinations, then configuration.
func (e *Engine) strategyFor(req *model.JourneyRequest) model.Strategy {
	if req.Strategy != model.StrategyDefault {
		return req.Strategy
	}
	if req.Destination.Kind() == model.LocationArea {
		return model.GridAware
	}
	if s := e.cfg.Search.StrategyValue(); s != model.StrategyDefault {
		return s
	}
	return model.DepthFirst
}

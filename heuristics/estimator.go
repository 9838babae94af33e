package heuristics

import (
	"fmt"
	"math"

	"github.com/bluele/gcache"

	"github.com/theoremus-urban-solutions/journey-planner/graph"
	"github.com/theoremus-urban-solutions/journey-planner/model"
)

const DefaultCacheSize = 10000

// Estimator computes distances to a fixed destination set.
type Estimator struct {
	destinations []model.LatLong
	cache        gcache.Cache
}

// NewEstimator returns an estimator for the given destination positions.
// cacheSize bounds the per-node memo; zero means DefaultCacheSize.
func NewEstimator(destinations []model.LatLong, cacheSize int) *Estimator {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	return &Estimator{
		destinations: destinations,
		cache:        gcache.New(cacheSize).LRU().Build(),
	}
}

// DistanceKM is the minimum haversine distance from pos to any destination.
// It is +Inf when there are no destinations.
func (e *Estimator) DistanceKM(pos model.LatLong) float64 {
	return nearest(pos, e.destinations)
}

// NodeDistance returns the memoised distance of node, reading its position
// from tx on a miss. Nodes without a position are at distance zero.
func (e *Estimator) NodeDistance(tx graph.Transaction, node graph.NodeID) (float64, error) {
	if v, err := e.cache.Get(node); err == nil {
		return v.(float64), nil
	}
	props, err := tx.Properties(node)
	if err != nil {
		return 0, fmt.Errorf("failed to read node position: %w", err)
	}
	d := 0.0
	if pos, ok := props.Position(); ok {
		d = e.DistanceKM(pos)
	}
	e.cache.Set(node, d)
	return d, nil
}

// CacheStats reports memo hits and misses.
func (e *Estimator) CacheStats() (hits, misses uint64) {
	return e.cache.HitCount(), e.cache.MissCount()
}

func nearest(pos model.LatLong, targets []model.LatLong) float64 {
	best := math.Inf(1)
	for _, t := range targets {
		if d := pos.DistanceKM(t); d < best {
			best = d
		}
	}
	return best
}

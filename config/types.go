package config

import (
	"time"

	"github.com/theoremus-urban-solutions/journey-planner/model"
	"github.com/theoremus-urban-solutions/journey-planner/traversal"
)

// SearchConfig tunes the journey search engine.
type SearchConfig struct {
	Strategy              string  `yaml:"strategy" validate:"omitempty,oneof=default depthfirst dfs heuristic heuristicordered grid gridaware"`
	QueryTimeoutMS        int     `yaml:"queryTimeoutMS" validate:"gte=0"`
	MaxSteps              int     `yaml:"maxSteps" validate:"gte=0"`
	MaxPathLength         int     `yaml:"maxPathLength" validate:"gte=0"`
	MaxInitialWaitMinutes int     `yaml:"maxInitialWaitMinutes" validate:"gte=0,lte=1440"`
	MaxChangeWaitMinutes  int     `yaml:"maxChangeWaitMinutes" validate:"gte=0,lte=1440"`
	MaxWalkingConnections int     `yaml:"maxWalkingConnections" validate:"gte=0"`
	WalkingSpeedKMH       float64 `yaml:"walkingSpeedKMH" validate:"gte=0"`
	WalkRadiusMeters      int     `yaml:"walkRadiusMeters" validate:"gte=0"`
	GridPrecision         uint    `yaml:"gridPrecision" validate:"lte=12"`
	CacheSize             int     `yaml:"cacheSize" validate:"gte=0"`
	ParallelProbes        int     `yaml:"parallelProbes" validate:"gte=0"`
}

// DiagnosticsConfig controls what the engine records about each run.
type DiagnosticsConfig struct {
	// Detailed keeps every individual reason, not only the counters.
	Detailed    bool   `yaml:"detailed"`
	ArchivePath string `yaml:"archivePath"`
}

// GraphConfig locates the network.
type GraphConfig struct {
	SnapshotPath string `yaml:"snapshotPath"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Search      SearchConfig      `yaml:"search" validate:"required"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Graph       GraphConfig       `yaml:"graph"`
}

func (c SearchConfig) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutMS) * time.Millisecond
}

// StrategyValue returns the configured strategy; validation guarantees the
// name parses.
func (c SearchConfig) StrategyValue() model.Strategy {
	s, _ := model.ParseStrategy(c.Strategy)
	return s
}

// Limits converts the wait and walking settings for the traversal machine.
func (c SearchConfig) Limits() traversal.Limits {
	return traversal.Limits{
		MaxInitialWait:        time.Duration(c.MaxInitialWaitMinutes) * time.Minute,
		MaxChangeWait:         time.Duration(c.MaxChangeWaitMinutes) * time.Minute,
		MaxWalkingConnections: c.MaxWalkingConnections,
		WalkingSpeedKMH:       c.WalkingSpeedKMH,
	}
}

// WalkRadiusKM is the radius around a position searched for stations.
func (c SearchConfig) WalkRadiusKM() float64 { return float64(c.WalkRadiusMeters) / 1000 }

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration
var Config AppConfig

// Defaults applied to zero values.
const (
	DefaultQueryTimeoutMS        = 2000
	DefaultMaxSteps              = 200000
	DefaultMaxPathLength         = 400
	DefaultMaxInitialWaitMinutes = 30
	DefaultMaxChangeWaitMinutes  = 30
	DefaultMaxWalkingConnections = 3
	DefaultWalkingSpeedKMH       = 4.8
	DefaultWalkRadiusMeters      = 800
	DefaultGridPrecision         = 6
	DefaultCacheSize             = 10000
	DefaultParallelProbes        = 4
)

// Default returns a configuration with every default applied.
func Default() AppConfig {
	var cfg AppConfig
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero values.
func (c *AppConfig) ApplyDefaults() {
	s := &c.Search
	if s.Strategy == "" {
		s.Strategy = "depthfirst"
	}
	setDefault(&s.QueryTimeoutMS, DefaultQueryTimeoutMS)
	setDefault(&s.MaxSteps, DefaultMaxSteps)
	setDefault(&s.MaxPathLength, DefaultMaxPathLength)
	setDefault(&s.MaxInitialWaitMinutes, DefaultMaxInitialWaitMinutes)
	setDefault(&s.MaxChangeWaitMinutes, DefaultMaxChangeWaitMinutes)
	setDefault(&s.MaxWalkingConnections, DefaultMaxWalkingConnections)
	setDefault(&s.WalkRadiusMeters, DefaultWalkRadiusMeters)
	setDefault(&s.CacheSize, DefaultCacheSize)
	setDefault(&s.ParallelProbes, DefaultParallelProbes)
	if s.WalkingSpeedKMH == 0 {
		s.WalkingSpeedKMH = DefaultWalkingSpeedKMH
	}
	if s.GridPrecision == 0 {
		s.GridPrecision = DefaultGridPrecision
	}
}

func setDefault(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

// Validate checks the struct tags of every section.
func (c AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Parse decodes YAML, applies defaults and validates.
func Parse(data []byte) (AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("failed to parse configuration: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// LoadAppConfig loads the first readable file of paths (config.yml and
// ./config/config.yml when none are given), applies .env and environment
// overrides and validates the result.
func LoadAppConfig(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{"config.yml", "./config/config.yml"}
	}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("failed to read configuration: %w", err)
	}

	_ = godotenv.Load(".env")

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	Config = cfg
	return nil
}

// ApplyEnv overrides settings from environment variables:
//
//	JOURNEYPLAN_STRATEGY          search.strategy
//	JOURNEYPLAN_QUERY_TIMEOUT_MS  search.queryTimeoutMS
//	JOURNEYPLAN_MAX_STEPS         search.maxSteps
//	JOURNEYPLAN_PARALLEL_PROBES   search.parallelProbes
//	JOURNEYPLAN_SNAPSHOT          graph.snapshotPath
//	JOURNEYPLAN_ARCHIVE           diagnostics.archivePath
func (c *AppConfig) ApplyEnv(getenv func(string) string) error {
	if v := getenv("JOURNEYPLAN_STRATEGY"); v != "" {
		c.Search.Strategy = v
	}
	ints := []struct {
		name string
		dst  *int
	}{
		{"JOURNEYPLAN_QUERY_TIMEOUT_MS", &c.Search.QueryTimeoutMS},
		{"JOURNEYPLAN_MAX_STEPS", &c.Search.MaxSteps},
		{"JOURNEYPLAN_PARALLEL_PROBES", &c.Search.ParallelProbes},
	}
	for _, e := range ints {
		v := getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", e.name, err)
		}
		*e.dst = n
	}
	if v := getenv("JOURNEYPLAN_SNAPSHOT"); v != "" {
		c.Graph.SnapshotPath = v
	}
	if v := getenv("JOURNEYPLAN_ARCHIVE"); v != "" {
		c.Diagnostics.ArchivePath = v
	}
	return nil
}

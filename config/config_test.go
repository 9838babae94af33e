package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/theoremus-urban-solutions/journey-planner/model"
)

// TestConfig_LoadFromFile loads the config.yml shipped at the repository root.
func TestConfig_LoadFromFile(t *testing.T) {
	origConfig := Config
	defer func() { Config = origConfig }()

	if err := LoadAppConfig("../config.yml"); err != nil {
		t.Fatalf("Failed to load config.yml: %v", err)
	}
	if Config.Search.StrategyValue() != model.HeuristicOrdered {
		t.Errorf("Strategy = %s, want heuristic", Config.Search.StrategyValue())
	}
	if Config.Graph.SnapshotPath == "" {
		t.Error("Config should have a snapshot path")
	}
	t.Logf("✓ Loaded config with strategy: %s", Config.Search.Strategy)
}

func TestConfig_MissingFile(t *testing.T) {
	origConfig := Config
	defer func() { Config = origConfig }()

	err := LoadAppConfig(filepath.Join(t.TempDir(), "config.yml"))
	if err == nil {
		t.Error("Loading non-existent config should return error")
	}
	t.Logf("✓ Missing config returns error: %v", err)
}

func TestConfig_Parse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{"empty file uses defaults", "", false},
		{"invalid yaml", "invalid: yaml: content: [[[", true},
		{"unknown strategy", "search:\n  strategy: breadthfirst\n", true},
		{"negative steps", "search:\n  maxSteps: -1\n", true},
		{"precision too fine", "search:\n  gridPrecision: 13\n", true},
		{"grid strategy", "search:\n  strategy: grid\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_DefaultsAndLimits(t *testing.T) {
	cfg := Default()
	if cfg.Search.QueryTimeout() != 2*time.Second {
		t.Errorf("QueryTimeout = %s, want 2s", cfg.Search.QueryTimeout())
	}
	limits := cfg.Search.Limits()
	if limits.MaxInitialWait != 30*time.Minute || limits.MaxWalkingConnections != DefaultMaxWalkingConnections {
		t.Errorf("Limits = %+v", limits)
	}
	if cfg.Search.WalkRadiusKM() != 0.8 {
		t.Errorf("WalkRadiusKM = %f, want 0.8", cfg.Search.WalkRadiusKM())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config invalid: %v", err)
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	env := map[string]string{
		"JOURNEYPLAN_STRATEGY":         "grid",
		"JOURNEYPLAN_QUERY_TIMEOUT_MS": "500",
		"JOURNEYPLAN_SNAPSHOT":         "/tmp/net.gob",
	}
	cfg := Default()
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.Search.StrategyValue() != model.GridAware || cfg.Search.QueryTimeoutMS != 500 || cfg.Graph.SnapshotPath != "/tmp/net.gob" {
		t.Errorf("Overrides not applied: %+v", cfg)
	}

	env["JOURNEYPLAN_MAX_STEPS"] = "lots"
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err == nil {
		t.Error("Expected error for non-numeric JOURNEYPLAN_MAX_STEPS")
	}
}

func TestConfig_DotEnvOverride(t *testing.T) {
	origConfig := Config
	origDir, _ := os.Getwd()
	defer func() {
		Config = origConfig
		os.Chdir(origDir)
		os.Unsetenv("JOURNEYPLAN_ARCHIVE")
	}()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte("search:\n  strategy: dfs\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("JOURNEYPLAN_ARCHIVE=diag.db\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}
	if err := LoadAppConfig(); err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if Config.Diagnostics.ArchivePath != "diag.db" {
		t.Errorf("ArchivePath = %q, want diag.db from .env", Config.Diagnostics.ArchivePath)
	}
	if Config.Search.StrategyValue() != model.DepthFirst {
		t.Errorf("Strategy = %s, want depthfirst", Config.Search.StrategyValue())
	}
}

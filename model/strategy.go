package model

import (
	"fmt"
	"strings"
)

// Strategy selects the order in which the search extends partial journeys.
type Strategy uint8

const (
	// StrategyDefault defers to configuration.
	StrategyDefault Strategy = iota
	// DepthFirst always extends the most recently produced branch.
	DepthFirst
	// HeuristicOrdered extends the branch closest to the destination first.
	HeuristicOrdered
	// GridAware orders by coarse grid cells, for wide destination areas.
	GridAware
)

func (s Strategy) String() string {
	switch s {
	case DepthFirst:
		return "depthfirst"
	case HeuristicOrdered:
		return "heuristic"
	case GridAware:
		return "grid"
	}
	return "default"
}

// ParseStrategy accepts the names used in configuration files.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return StrategyDefault, nil
	case "depthfirst", "dfs":
		return DepthFirst, nil
	case "heuristic", "heuristicordered":
		return HeuristicOrdered, nil
	case "grid", "gridaware":
		return GridAware, nil
	}
	return StrategyDefault, fmt.Errorf("unknown search strategy %q", s)
}

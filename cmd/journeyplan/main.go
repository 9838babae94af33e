package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	lib "github.com/theoremus-urban-solutions/journey-planner"
	"github.com/theoremus-urban-solutions/journey-planner/config"
	"github.com/theoremus-urban-solutions/journey-planner/diagnostics"
	"github.com/theoremus-urban-solutions/journey-planner/diagnostics/archive"
	"github.com/theoremus-urban-solutions/journey-planner/filter"
	"github.com/theoremus-urban-solutions/journey-planner/graph"
	"github.com/theoremus-urban-solutions/journey-planner/model"
)

type output struct {
	Journeys    []model.Journey       `json:"journeys"`
	Diagnostics *diagnostics.Snapshot `json:"diagnostics,omitempty"`
}

func main() {
	configPath := flag.String("config", "", "configuration file (default config.yml)")
	snapshot := flag.String("snapshot", "", "graph snapshot (overrides config)")
	from := flag.String("from", "", "origin: station id, group:ID or lat,lon")
	to := flag.String("to", "", "destination: station id, group:ID or lat,lon")
	date := flag.String("date", time.Now().Format("2006-01-02"), "service date YYYY-MM-DD")
	at := flag.String("time", "", "departure (or arrival with -arriveBy) HH:MM")
	arriveBy := flag.Bool("arriveBy", false, "treat -time as the latest arrival")
	maxChanges := flag.Int("maxChanges", model.DefaultMaxChanges, "maximum number of changes")
	maxDuration := flag.Duration("maxDuration", model.DefaultMaxJourneyDuration, "maximum journey duration")
	maxJourneys := flag.Int("maxJourneys", model.DefaultMaxNumberOfJourneys, "maximum journeys returned")
	alternatives := flag.Int("alternatives", 1, "number of departure times to probe")
	interval := flag.Duration("interval", model.DefaultQueryInterval, "spacing of probed departure times")
	modes := flag.String("modes", "", "comma-separated transport modes (default all)")
	strategy := flag.String("strategy", "", "depthfirst|heuristic|grid (default from config)")
	routes := flag.String("routes", "", "comma-separated route ids to restrict to")
	closed := flag.String("closed", "", "comma-separated closed station ids")
	showDiag := flag.Bool("diagnostics", false, "include search diagnostics in the output")
	flag.Parse()

	lib.InitLogging()
	var paths []string
	if *configPath != "" {
		paths = append(paths, *configPath)
	}
	if err := config.LoadAppConfig(paths...); err != nil {
		panic(err)
	}
	cfg := config.Config
	if *snapshot != "" {
		cfg.Graph.SnapshotPath = *snapshot
	}

	store, err := graph.DeserializeStoreFromFile(cfg.Graph.SnapshotPath)
	if err != nil {
		panic(err)
	}

	origin, err := parseLocation(*from)
	if err != nil {
		panic(err)
	}
	destination, err := parseLocation(*to)
	if err != nil {
		panic(err)
	}
	day, err := time.Parse("2006-01-02", *date)
	if err != nil {
		panic(fmt.Errorf("invalid -date: %w", err))
	}
	start := model.ServiceTimeOf(time.Now())
	if *at != "" {
		if start, err = model.ParseServiceTime(*at); err != nil {
			panic(fmt.Errorf("invalid -time: %w", err))
		}
	}

	opts := []model.RequestOption{
		model.WithMaxChanges(*maxChanges),
		model.WithMaxDuration(*maxDuration),
		model.WithMaxJourneys(*maxJourneys),
		model.WithAlternatives(*alternatives, *interval),
	}
	if *arriveBy {
		opts = append(opts, model.WithArriveBy())
	}
	if *modes != "" {
		set, err := model.ParseModeSet(*modes)
		if err != nil {
			panic(err)
		}
		opts = append(opts, model.WithModeSet(set))
	}
	if *strategy != "" {
		s, err := model.ParseStrategy(*strategy)
		if err != nil {
			panic(err)
		}
		opts = append(opts, model.WithStrategy(s))
	}
	if ids := splitList(*routes); len(ids) > 0 {
		f, err := filter.NewGraphFilter(filter.Routes(ids...))
		if err != nil {
			panic(err)
		}
		opts = append(opts, model.WithFilter(f))
	}
	if ids := splitList(*closed); len(ids) > 0 {
		opts = append(opts, model.WithClosedStations(ids...))
	}
	req, err := model.NewJourneyRequest(origin, destination, model.DateOf(day), start, opts...)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	var plannerOpts []lib.Option
	if cfg.Diagnostics.ArchivePath != "" {
		a, err := archive.Open(ctx, cfg.Diagnostics.ArchivePath)
		if err != nil {
			panic(err)
		}
		defer a.Close()
		plannerOpts = append(plannerOpts, lib.WithArchive(a))
	}
	planner := lib.NewPlanner(store, cfg, plannerOpts...)

	journeys, err := planner.Search(ctx, req)
	if err != nil {
		panic(err)
	}
	out := output{Journeys: journeys}
	if *showDiag {
		d := planner.LastRunDiagnostics()
		out.Diagnostics = &d
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		panic(err)
	}
}

// parseLocation accepts "group:ID", "lat,lon" or a bare station id.
func parseLocation(s string) (model.Location, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return model.Location{}, fmt.Errorf("location is required")
	case strings.HasPrefix(s, "group:"):
		return model.GroupLocation(strings.TrimPrefix(s, "group:")), nil
	case strings.HasPrefix(s, "station:"):
		return model.StationLocation(strings.TrimPrefix(s, "station:")), nil
	}
	if lat, lon, ok := strings.Cut(s, ","); ok {
		la, err1 := strconv.ParseFloat(strings.TrimSpace(lat), 64)
		lo, err2 := strconv.ParseFloat(strings.TrimSpace(lon), 64)
		if err1 == nil && err2 == nil {
			return model.PositionLocation(model.LatLong{Lat: la, Lon: lo}), nil
		}
	}
	return model.StationLocation(s), nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

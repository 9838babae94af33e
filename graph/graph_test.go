package graph_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/theoremus-urban-solutions/journey-planner/graph"
	"github.com/theoremus-urban-solutions/journey-planner/internal/testnetwork"
	"github.com/theoremus-urban-solutions/journey-planner/model"
)

func beginRead(t *testing.T, store graph.Store) graph.Transaction {
	t.Helper()
	tx, err := store.BeginRead(context.Background())
	if err != nil {
		t.Fatalf("BeginRead failed: %v", err)
	}
	t.Cleanup(func() { tx.Close() })
	return tx
}

func findNode(t *testing.T, tx graph.Transaction, label graph.Label, id string) graph.NodeID {
	t.Helper()
	n, ok, err := tx.FindNode(label, id)
	if err != nil || !ok {
		t.Fatalf("FindNode(%s, %q) = %v, %v", label, id, ok, err)
	}
	return n
}

func TestMemoryStore_ABCShape(t *testing.T) {
	store := testnetwork.ABC(t)
	tx := beginRead(t, store)

	stations, err := tx.Nodes(graph.LabelStation)
	if err != nil {
		t.Fatalf("Nodes failed: %v", err)
	}
	if len(stations) != 4 {
		t.Errorf("Expected 4 stations, got %d", len(stations))
	}

	a := findNode(t, tx, graph.LabelStation, testnetwork.StationA)
	rels, err := tx.Expand(a)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	boards := 0
	for _, r := range rels {
		if r.Type != graph.RelBoard {
			t.Errorf("Unexpected relationship %s from A", r)
			continue
		}
		boards++
	}
	if boards != 2 {
		t.Errorf("Expected A to board tram1 and bus, got %d BOARD relationships", boards)
	}

	props, err := tx.Properties(a)
	if err != nil {
		t.Fatalf("Properties failed: %v", err)
	}
	modes := props.Modes(graph.KeyModes)
	if !modes.Contains(model.Tram) || !modes.Contains(model.Bus) || modes.Contains(model.Train) {
		t.Errorf("Station A modes = %s, want bus and tram", modes)
	}
	pos, ok := props.Position()
	if !ok || pos.DistanceKM(testnetwork.PosA) > 0.001 {
		t.Errorf("Station A position = %s, want %s", pos, testnetwork.PosA)
	}

	t.Logf("✓ ABC network: %d nodes, %d relationships", store.NodeCount(), store.RelationshipCount())
}

func TestMemoryStore_GoesToCarriesTripTimes(t *testing.T) {
	tx := beginRead(t, testnetwork.ABC(t))
	rs := findNode(t, tx, graph.LabelRouteStation, testnetwork.RouteTram1+":"+testnetwork.StationA)

	rels, err := tx.Expand(rs)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(rels) != 1 || rels[0].Type != graph.RelGoesTo {
		t.Fatalf("Expected one GOES_TO from tram1:A, got %v", rels)
	}
	hop := rels[0]
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"trip", hop.Props.String(graph.KeyTripID), "tram1-0900"},
		{"service", hop.Props.String(graph.KeyServiceID), testnetwork.ServiceDaily},
		{"departure", hop.Props.Time(graph.KeyDeparture), model.MustParseServiceTime("09:00")},
		{"arrival", hop.Props.Time(graph.KeyArrival), model.MustParseServiceTime("09:10")},
		{"cost", hop.Props.Duration(graph.KeyCost), 10 * time.Minute},
		{"mode", hop.Props.Mode(graph.KeyMode), model.Tram},
		{"pickup", hop.Props.Bool(graph.KeyPickup), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	v, err := tx.RelationshipProperty(hop.ID, graph.KeyArrival)
	if err != nil {
		t.Fatalf("RelationshipProperty failed: %v", err)
	}
	if _, err := v.AsString(); !errors.Is(err, graph.ErrWrongKind) {
		t.Errorf("AsString on a time-of-day value: err = %v, want ErrWrongKind", err)
	}
}

func TestTransaction_ClosedAndMissing(t *testing.T) {
	store := testnetwork.ABC(t)
	tx, err := store.BeginRead(context.Background())
	if err != nil {
		t.Fatalf("BeginRead failed: %v", err)
	}
	if store.OpenTransactions() != 1 {
		t.Errorf("Expected 1 open transaction, got %d", store.OpenTransactions())
	}
	if _, err := tx.Expand(graph.NodeID(99999)); !errors.Is(err, graph.ErrNodeNotFound) {
		t.Errorf("Expand unknown node: err = %v, want ErrNodeNotFound", err)
	}
	if _, err := tx.NodeProperty(0, graph.KeyDeparture); !errors.Is(err, graph.ErrPropertyNotFound) {
		t.Errorf("Missing property: err = %v, want ErrPropertyNotFound", err)
	}
	if _, ok, _ := tx.FindNode(graph.LabelStation, "nowhere"); ok {
		t.Error("FindNode found an unknown station")
	}

	tx.Close()
	tx.Close()
	if store.OpenTransactions() != 0 {
		t.Errorf("Expected 0 open transactions after Close, got %d", store.OpenTransactions())
	}
	if _, err := tx.Expand(0); !errors.Is(err, graph.ErrTransactionClosed) {
		t.Errorf("Expand after Close: err = %v, want ErrTransactionClosed", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.BeginRead(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("BeginRead with cancelled context: err = %v, want context.Canceled", err)
	}
}

func TestNetworkBuilder_Validation(t *testing.T) {
	cal := model.EveryDay(model.NewDate(2024, 1, 1), model.NewDate(2024, 12, 31))
	base := func() *graph.NetworkBuilder {
		return graph.NewNetworkBuilder().
			AddStation(graph.StationSpec{ID: "X", Position: model.LatLong{Lat: 1, Lon: 1}}).
			AddStation(graph.StationSpec{ID: "Y", Position: model.LatLong{Lat: 1.01, Lon: 1}}).
			AddRoute(graph.RouteSpec{ID: "r", Mode: model.Bus}).
			AddService(graph.ServiceSpec{ID: "s", Calendar: cal})
	}
	at := model.MustParseServiceTime

	tests := []struct {
		name  string
		build func(b *graph.NetworkBuilder)
	}{
		{"duplicate station", func(b *graph.NetworkBuilder) {
			b.AddStation(graph.StationSpec{ID: "X", Position: model.LatLong{Lat: 2, Lon: 2}})
		}},
		{"invalid position", func(b *graph.NetworkBuilder) {
			b.AddStation(graph.StationSpec{ID: "Z", Position: model.LatLong{Lat: 95, Lon: 0}})
		}},
		{"walk mode route", func(b *graph.NetworkBuilder) {
			b.AddRoute(graph.RouteSpec{ID: "w", Mode: model.Walk})
		}},
		{"unknown route", func(b *graph.NetworkBuilder) {
			b.AddTrip(graph.TripSpec{ID: "t", RouteID: "nope", ServiceID: "s", Calls: []graph.StopCallSpec{
				graph.Call("X", at("08:00"), at("08:00")), graph.Call("Y", at("08:10"), at("08:10")),
			}})
		}},
		{"unknown station", func(b *graph.NetworkBuilder) {
			b.AddTrip(graph.TripSpec{ID: "t", RouteID: "r", ServiceID: "s", Calls: []graph.StopCallSpec{
				graph.Call("X", at("08:00"), at("08:00")), graph.Call("Q", at("08:10"), at("08:10")),
			}})
		}},
		{"time goes backwards", func(b *graph.NetworkBuilder) {
			b.AddTrip(graph.TripSpec{ID: "t", RouteID: "r", ServiceID: "s", Calls: []graph.StopCallSpec{
				graph.Call("X", at("08:00"), at("08:05")), graph.Call("Y", at("08:03"), at("08:10")),
			}})
		}},
		{"departs before arriving", func(b *graph.NetworkBuilder) {
			b.AddTrip(graph.TripSpec{ID: "t", RouteID: "r", ServiceID: "s", Calls: []graph.StopCallSpec{
				graph.Call("X", at("08:05"), at("08:00")), graph.Call("Y", at("08:10"), at("08:10")),
			}})
		}},
		{"single call", func(b *graph.NetworkBuilder) {
			b.AddTrip(graph.TripSpec{ID: "t", RouteID: "r", ServiceID: "s", Calls: []graph.StopCallSpec{
				graph.Call("X", at("08:00"), at("08:00")),
			}})
		}},
		{"walk to self", func(b *graph.NetworkBuilder) {
			b.AddWalk("X", "X", time.Minute)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := base()
			tt.build(b)
			if _, err := b.Build(); !errors.Is(err, graph.ErrInvalidNetwork) {
				t.Errorf("Build() err = %v, want ErrInvalidNetwork", err)
			}
		})
	}

	t.Run("valid trip across midnight", func(t *testing.T) {
		b := base()
		b.AddTrip(graph.TripSpec{ID: "t", RouteID: "r", ServiceID: "s", Calls: []graph.StopCallSpec{
			graph.Call("X", at("23:55"), at("23:55")), graph.Call("Y", at("24:10"), at("24:10")),
		}})
		if _, err := b.Build(); err != nil {
			t.Errorf("Build() err = %v, want nil", err)
		}
	})
}

func TestServiceCalendarRoundTrip(t *testing.T) {
	tx := beginRead(t, testnetwork.Midnight(t))
	n := findNode(t, tx, graph.LabelService, testnetwork.ServiceNight)
	props, err := tx.Properties(n)
	if err != nil {
		t.Fatalf("Properties failed: %v", err)
	}
	cal := props.Calendar()
	prev := testnetwork.QueryDate.AddDays(-1)
	if !cal.RunsOn(prev) {
		t.Errorf("Night service should run on %s", prev)
	}
	if cal.RunsOn(testnetwork.QueryDate) {
		t.Errorf("Night service should not run on %s", testnetwork.QueryDate)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := testnetwork.ABC(t)

	var buf bytes.Buffer
	if err := graph.SerializeStoreToWriter(store, &buf); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	loaded, err := graph.DeserializeStoreFromReader(&buf)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if loaded.NodeCount() != store.NodeCount() || loaded.RelationshipCount() != store.RelationshipCount() {
		t.Fatalf("Loaded %d/%d nodes/rels, want %d/%d",
			loaded.NodeCount(), loaded.RelationshipCount(), store.NodeCount(), store.RelationshipCount())
	}

	path := filepath.Join(t.TempDir(), "network.gob")
	if err := graph.SerializeStoreToFile(store, path); err != nil {
		t.Fatalf("SerializeStoreToFile failed: %v", err)
	}
	fromFile, err := graph.DeserializeStoreFromFile(path)
	if err != nil {
		t.Fatalf("DeserializeStoreFromFile failed: %v", err)
	}
	tx := beginRead(t, fromFile)
	findNode(t, tx, graph.LabelPlatform, testnetwork.PlatformB2)

	if _, err := graph.DeserializeStore([]byte("not a snapshot")); err == nil {
		t.Error("Expected error decoding garbage")
	}
	t.Logf("✓ snapshot round trip: %d bytes", buf.Cap())
}

// Package journeyplanner plans multi-modal public transport journeys over a
// timetabled network held in a graph store.
//
// A Planner wraps a search engine for one store:
//
//	store, err := graph.DeserializeStoreFromFile("network.gob")
//	planner := journeyplanner.NewPlanner(store, config.Config)
//	journeys, err := planner.Search(ctx, req)
//
// Search returns an empty slice, not an error, when no journey exists or the
// budget runs out; LastRunDiagnostics explains what the search rejected.
package journeyplanner

/*
Package search runs journey queries against a graph.Store.

An Engine resolves the request's origin and destination to stations, then
runs one probe per alternative departure time. Probes run in parallel, each
with its own read transaction, path arena, frontier and diagnostics:

	engine := search.NewEngine(store, config.Default())
	result, err := engine.Search(ctx, req)

Within a probe the loop pops a branch, evaluates it (budget, duration,
deadline, destination, loops, dominance, path length) and expands the
survivors through the traversal machine. Running out of time or steps is
not an error: the journeys found so far are returned and the diagnostics
record TimedOut for every branch left open.

The probes' journeys are merged: identical itineraries collapse, journeys
beaten on arrival, changes and departure by another are dropped, and the
rest are ordered by arrival, changes, departure and signature.
*/
package search

// Package filter restricts the part of the network a query may use.
//
// A GraphFilter holds allow-lists of route, service, station and agency ids.
// An empty list allows everything in that dimension, but a filter with every
// list empty is a setup mistake and NewGraphFilter rejects it. "No filtering"
// is expressed by passing a nil *GraphFilter; every predicate on a nil filter
// allows everything.
//
// Filters are built once per query scope and are read-only afterwards, so a
// single filter may be shared by concurrent searches.
package filter

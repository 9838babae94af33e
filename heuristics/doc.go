// Package heuristics estimates how far a branch is from its destination.
//
// Estimator gives the straight-line distance in km from a node to the
// nearest destination station. GridIndex does the same at the coarser
// resolution of geohash cells, which is what the grid-aware branch selector
// orders by. Both memoise their answers in bounded LRU caches that are safe
// to share between the parallel probes of one query.
package heuristics

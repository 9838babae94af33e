// Package selector holds the frontier of open branches and decides which
// one the search extends next.
//
// DepthFirst is a plain stack. HeuristicOrdered and GridAware are priority
// queues (container/heap) ordered by, in turn: branches that have started
// moving before branches still waiting at the origin, smaller distance to
// the destination, earlier clock, lower node id and insertion order. The
// last key makes the order total, so a search is deterministic for a given
// network and request.
package selector

/*
Package graph defines the storage contract the journey search reads the
network through, and ships an in-memory implementation of it.

The search never mutates the graph. It opens a read transaction, expands
nodes into their outgoing relationships and reads typed properties:

	tx, err := store.BeginRead(ctx)
	if err != nil {
	    return err
	}
	defer tx.Close()

	node, ok, err := tx.FindNode(graph.LabelStation, "A")
	rels, err := tx.Expand(node)
	for _, rel := range rels {
	    dep := rel.Props.Time(graph.KeyDeparture)
	}

# Network shape

	Station -ENTER_PLATFORM-> Platform -LEAVE_PLATFORM-> Station
	Station|Platform -BOARD-> RouteStation -DEPART-> Station|Platform
	RouteStation -GOES_TO-> RouteStation   (one per trip hop, timed)
	Station -WALKS_TO-> Station            (walking)
	Station -LINKED-> Station              (inter-mode connection)

A RouteStation is the pair (route, station). Service nodes carry the
calendar of a service and are looked up by id.

# Building

NetworkBuilder turns domain-shaped stations, routes, services and trips into
a MemoryStore:

	b := graph.NewNetworkBuilder()
	b.AddStation(graph.StationSpec{ID: "A", Name: "Altrincham", Position: pos})
	b.AddRoute(graph.RouteSpec{ID: "tram1", AgencyID: "MET", Mode: model.Tram})
	b.AddService(graph.ServiceSpec{ID: "weekday", Calendar: cal})
	b.AddTrip(graph.TripSpec{ID: "t1", RouteID: "tram1", ServiceID: "weekday", Calls: calls})
	store, err := b.Build()

# Snapshots

Building a large network is slow compared to decoding one. A MemoryStore can
be written to and read from gob snapshots (SerializeStore, DeserializeStore
and the file/io helpers).

# Thread Safety

A built MemoryStore is immutable and safe for any number of concurrent read
transactions. A transaction itself belongs to one goroutine.
*/
package graph

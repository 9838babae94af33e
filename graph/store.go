package graph

import "context"

// Store is the read side of a graph storage engine.
type Store interface {
	// BeginRead opens a read-only transaction. The caller must Close it on
	// every exit path. Concurrent read transactions never observe partial
	// writes.
	BeginRead(ctx context.Context) (Transaction, error)
}

// Transaction is a scoped, read-only view of the graph.
type Transaction interface {
	// Expand returns the outgoing relationships of a node. The slice is
	// finite and must not be modified by the caller.
	Expand(node NodeID) ([]Relationship, error)
	NodeProperty(node NodeID, key Key) (Value, error)
	RelationshipProperty(rel RelID, key Key) (Value, error)
	Label(node NodeID) (Label, error)
	// Properties returns the whole property bag of a node; read-only.
	Properties(node NodeID) (Properties, error)
	// FindNode looks up a node by label and its KeyID property.
	FindNode(label Label, id string) (NodeID, bool, error)
	// Nodes lists every node carrying label, in id order.
	Nodes(label Label) ([]NodeID, error)
	Close() error
}

package graph

import (
	"context"
	"fmt"
	"sync/atomic"
)

// MemoryStore is an immutable adjacency-list graph held in memory.
//
// Node and relationship ids are dense slice indexes. Lookup maps are built
// once, the same way the static GTFS index keeps one map per access path.
type MemoryStore struct {
	nodes    []Node
	rels     []Relationship
	outgoing [][]Relationship
	byID     map[Label]map[string]NodeID
	byLabel  map[Label][]NodeID

	openTx atomic.Int64
}

// NewMemoryStore indexes the given nodes and relationships. Ids must be
// dense and match slice positions; the builder and snapshot loader
// guarantee this.
func NewMemoryStore(nodes []Node, rels []Relationship) (*MemoryStore, error) {
	s := &MemoryStore{
		nodes:    nodes,
		rels:     rels,
		outgoing: make([][]Relationship, len(nodes)),
		byID:     map[Label]map[string]NodeID{},
		byLabel:  map[Label][]NodeID{},
	}
	for i, n := range nodes {
		if n.ID != NodeID(i) {
			return nil, fmt.Errorf("node at position %d has id %d", i, n.ID)
		}
		s.byLabel[n.Label] = append(s.byLabel[n.Label], n.ID)
		if id := n.Props.String(KeyID); id != "" {
			m, ok := s.byID[n.Label]
			if !ok {
				m = map[string]NodeID{}
				s.byID[n.Label] = m
			}
			if _, dup := m[id]; dup {
				return nil, fmt.Errorf("duplicate %s id %q", n.Label, id)
			}
			m[id] = n.ID
		}
	}
	for i, r := range rels {
		if r.ID != RelID(i) {
			return nil, fmt.Errorf("relationship at position %d has id %d", i, r.ID)
		}
		if !s.valid(r.From) || !s.valid(r.To) {
			return nil, fmt.Errorf("relationship %d: %w", r.ID, ErrNodeNotFound)
		}
		s.outgoing[r.From] = append(s.outgoing[r.From], r)
	}
	return s, nil
}

func (s *MemoryStore) valid(n NodeID) bool { return n >= 0 && int(n) < len(s.nodes) }

// BeginRead opens a read transaction. It fails only when ctx is already done.
func (s *MemoryStore) BeginRead(ctx context.Context) (Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	s.openTx.Add(1)
	return &memoryTx{store: s}, nil
}

// OpenTransactions reports how many read transactions are not yet closed.
func (s *MemoryStore) OpenTransactions() int64 { return s.openTx.Load() }

// NodeCount returns the number of nodes.
func (s *MemoryStore) NodeCount() int { return len(s.nodes) }

// RelationshipCount returns the number of relationships.
func (s *MemoryStore) RelationshipCount() int { return len(s.rels) }

type memoryTx struct {
	store  *MemoryStore
	closed bool
}

func (tx *memoryTx) check(n NodeID) error {
	if tx.closed {
		return ErrTransactionClosed
	}
	if !tx.store.valid(n) {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, n)
	}
	return nil
}

func (tx *memoryTx) Expand(node NodeID) ([]Relationship, error) {
	if err := tx.check(node); err != nil {
		return nil, err
	}
	return tx.store.outgoing[node], nil
}

func (tx *memoryTx) NodeProperty(node NodeID, key Key) (Value, error) {
	if err := tx.check(node); err != nil {
		return Value{}, err
	}
	v, ok := tx.store.nodes[node].Props[key]
	if !ok {
		return Value{}, fmt.Errorf("%w: node %d key %d", ErrPropertyNotFound, node, key)
	}
	return v, nil
}

func (tx *memoryTx) RelationshipProperty(rel RelID, key Key) (Value, error) {
	if tx.closed {
		return Value{}, ErrTransactionClosed
	}
	if rel < 0 || int(rel) >= len(tx.store.rels) {
		return Value{}, fmt.Errorf("%w: %d", ErrRelNotFound, rel)
	}
	v, ok := tx.store.rels[rel].Props[key]
	if !ok {
		return Value{}, fmt.Errorf("%w: relationship %d key %d", ErrPropertyNotFound, rel, key)
	}
	return v, nil
}

func (tx *memoryTx) Label(node NodeID) (Label, error) {
	if err := tx.check(node); err != nil {
		return LabelNone, err
	}
	return tx.store.nodes[node].Label, nil
}

func (tx *memoryTx) Properties(node NodeID) (Properties, error) {
	if err := tx.check(node); err != nil {
		return nil, err
	}
	return tx.store.nodes[node].Props, nil
}

func (tx *memoryTx) FindNode(label Label, id string) (NodeID, bool, error) {
	if tx.closed {
		return 0, false, ErrTransactionClosed
	}
	n, ok := tx.store.byID[label][id]
	return n, ok, nil
}

func (tx *memoryTx) Nodes(label Label) ([]NodeID, error) {
	if tx.closed {
		return nil, ErrTransactionClosed
	}
	return tx.store.byLabel[label], nil
}

func (tx *memoryTx) Close() error {
	if tx.closed {
		return nil
	}
	tx.closed = true
	tx.store.openTx.Add(-1)
	return nil
}

package graph

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"os"
)

// Snapshot is the serialisable form of a MemoryStore.
type Snapshot struct {
	Nodes         []Node
	Relationships []Relationship
}

// Snapshot returns the store's contents. The slices are shared with the
// store and must not be modified.
func (s *MemoryStore) Snapshot() Snapshot {
	return Snapshot{Nodes: s.nodes, Relationships: s.rels}
}

// SerializeStore encodes a MemoryStore to bytes using gob encoding.
//
// Example:
//
//	store, _ := builder.Build()
//	data, err := graph.SerializeStore(store)
//	if err != nil {
//	    // handle error
//	}
//	os.WriteFile("/path/to/cache/network.gob", data, 0644)
func SerializeStore(store *MemoryStore) ([]byte, error) {
	var buf bytes.Buffer
	if err := SerializeStoreToWriter(store, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DeserializeStore decodes a MemoryStore from bytes and rebuilds its
// indexes.
func DeserializeStore(data []byte) (*MemoryStore, error) {
	return DeserializeStoreFromReader(bytes.NewReader(data))
}

// SerializeStoreToFile writes a MemoryStore snapshot to a file.
func SerializeStoreToFile(store *MemoryStore, path string) error {
	data, err := SerializeStore(store)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DeserializeStoreFromFile reads a MemoryStore snapshot from a file.
//
// Example:
//
//	store, err := graph.DeserializeStoreFromFile("/cache/network.gob")
//	if err != nil {
//	    // snapshot missing or corrupt, rebuild from source data
//	}
func DeserializeStoreFromFile(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	return DeserializeStore(data)
}

// SerializeStoreToWriter streams a snapshot to w.
func SerializeStoreToWriter(store *MemoryStore, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(store.Snapshot()); err != nil {
		return fmt.Errorf("failed to encode graph snapshot: %w", err)
	}
	return nil
}

// DeserializeStoreFromReader reads a snapshot from r.
func DeserializeStoreFromReader(r io.Reader) (*MemoryStore, error) {
	var snap Snapshot
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode graph snapshot: %w", err)
	}
	store, err := NewMemoryStore(snap.Nodes, snap.Relationships)
	if err != nil {
		return nil, fmt.Errorf("failed to index graph snapshot: %w", err)
	}
	return store, nil
}

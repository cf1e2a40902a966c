package store

import (
	"sync/atomic"

	"github.com/strollerlabs/stroller-truth/internal/model"
)

// Memory holds the current snapshot behind an atomic pointer. Readers get a
// complete snapshot without locking; Swap publishes a full replacement.
// In-flight requests keep the snapshot they started with.
type Memory struct {
	current atomic.Pointer[Snapshot]
}

// NewMemory creates a holder seeded with an empty snapshot so readers never
// see nil.
func NewMemory() *Memory {
	m := &Memory{}
	m.current.Store(NewSnapshot(SnapshotMeta{}, nil))
	return m
}

// Snapshot returns the current snapshot.
func (m *Memory) Snapshot() *Snapshot {
	return m.current.Load()
}

// Swap publishes a new snapshot and returns the previous one.
func (m *Memory) Swap(s *Snapshot) *Snapshot {
	return m.current.Swap(s)
}

// Lookup resolves a product id against the current snapshot.
func (m *Memory) Lookup(productID string) (*model.ProductRecord, bool) {
	return m.Snapshot().Lookup(productID)
}

package store

import (
	"context"
)

// Persistence saves ingested snapshots and restores the latest one at
// startup. The engine itself only reads Memory; persistence exists so a
// restart does not require re-ingestion.
type Persistence interface {
	// SaveSnapshot persists a full snapshot under its snapshot id.
	SaveSnapshot(ctx context.Context, snap *Snapshot) error

	// LoadLatest returns the most recently saved snapshot, or nil when the
	// store is empty.
	LoadLatest(ctx context.Context) (*Snapshot, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

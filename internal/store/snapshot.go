// Package store holds the record store: an immutable, indexed snapshot of
// the current dataset, swapped atomically on re-ingestion so concurrent
// readers never see a partially replaced dataset.
package store

import (
	"time"

	"github.com/strollerlabs/stroller-truth/internal/model"
	"github.com/strollerlabs/stroller-truth/internal/policy"
)

// SnapshotMeta describes one ingested dataset version.
type SnapshotMeta struct {
	SnapshotID    string    `json:"snapshot_id"`
	ExtractedDate string    `json:"extracted_date,omitempty"`
	SchemaVersion string    `json:"schema_version,omitempty"`
	IngestedAt    time.Time `json:"ingested_at"`
}

// Snapshot is an immutable view of the dataset. Build it once with
// NewSnapshot and never mutate it; replacement happens by pointer swap in
// Memory.
type Snapshot struct {
	meta    SnapshotMeta
	records []*model.ProductRecord
	byID    map[string]*model.ProductRecord
}

// NewSnapshot indexes the given records. Later records with a repeated
// product_id replace earlier ones wholesale (ingestion upsert semantics);
// record order otherwise follows first appearance.
func NewSnapshot(meta SnapshotMeta, records []*model.ProductRecord) *Snapshot {
	s := &Snapshot{
		meta: meta,
		byID: make(map[string]*model.ProductRecord, len(records)),
	}
	for _, rec := range records {
		if _, exists := s.byID[rec.ProductID]; !exists {
			s.records = append(s.records, rec)
		} else {
			for i, prev := range s.records {
				if prev.ProductID == rec.ProductID {
					s.records[i] = rec
					break
				}
			}
		}
		s.byID[rec.ProductID] = rec
	}
	return s
}

// Meta returns the snapshot metadata.
func (s *Snapshot) Meta() SnapshotMeta {
	return s.meta
}

// Len returns the number of records.
func (s *Snapshot) Len() int {
	return len(s.records)
}

// Records returns all records in snapshot order. Callers must not mutate.
func (s *Snapshot) Records() []*model.ProductRecord {
	return s.records
}

// Lookup returns the record with the given product id.
func (s *Snapshot) Lookup(productID string) (*model.ProductRecord, bool) {
	rec, ok := s.byID[productID]
	return rec, ok
}

// Filter returns records matching the filter, in snapshot order. A
// confidence_min of medium or higher excludes records whose core comparison
// fields fail the usability gate; a low minimum excludes nothing.
func (s *Snapshot) Filter(f model.RecordFilter, rules policy.Rules) []*model.ProductRecord {
	var out []*model.ProductRecord
	for _, rec := range s.records {
		if f.Region != "" && rec.Region != f.Region {
			continue
		}
		if f.IntendedUseCategory != "" && rec.StringField(model.FieldIntendedUse) != f.IntendedUseCategory {
			continue
		}
		if f.SeatReversible != nil {
			sr, _ := rec.Field(model.FieldSeatRevers).Bool()
			if sr != *f.SeatReversible {
				continue
			}
		}
		if f.ConfidenceMin.Rank() >= model.ConfidenceMedium.Rank() {
			if len(rules.LowConfidenceCore(rec, rec.Region)) > 0 {
				continue
			}
		}
		out = append(out, rec)
	}
	return out
}

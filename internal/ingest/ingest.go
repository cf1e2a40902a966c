// Package ingest decodes validated dataset payloads into typed records and
// publishes them as a new store snapshot. Schema validation happens upstream;
// this package only normalizes shapes (wrapped vs plain values, the special
// folded-dimensions layout) and applies upsert-by-product-id semantics.
package ingest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/strollerlabs/stroller-truth/internal/model"
	"github.com/strollerlabs/stroller-truth/internal/store"
)

// dataset mirrors the on-disk strollers.json layout.
type dataset struct {
	ExtractedDate string `json:"extracted_date"`
	Schema        struct {
		Version string `json:"version"`
	} `json:"schema"`
	Strollers []map[string]any `json:"strollers"`
}

// Ingestor loads datasets into the record store. persist is optional; when
// set, each snapshot is saved so a restart can restore without re-ingesting.
type Ingestor struct {
	mem     *store.Memory
	persist store.Persistence
}

// New creates an Ingestor. persist may be nil.
func New(mem *store.Memory, persist store.Persistence) *Ingestor {
	return &Ingestor{mem: mem, persist: persist}
}

// LoadFile ingests the dataset at path.
func (i *Ingestor) LoadFile(ctx context.Context, path string) (*store.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close()
	return i.Load(ctx, f)
}

// LoadURL fetches and ingests a dataset payload over HTTP.
func (i *Ingestor) LoadURL(ctx context.Context, url string) (*store.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: build request for %s", url)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: fetch %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("ingest: fetch %s: status %d", url, resp.StatusCode)
	}
	return i.Load(ctx, resp.Body)
}

// Load decodes a dataset payload, builds a snapshot, persists it when a
// persistence backend is configured, and atomically swaps it into the
// in-memory store.
func (i *Ingestor) Load(ctx context.Context, r io.Reader) (*store.Snapshot, error) {
	var ds dataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return nil, eris.Wrap(err, "ingest: decode dataset")
	}

	records := make([]*model.ProductRecord, 0, len(ds.Strollers))
	for _, raw := range ds.Strollers {
		rec := normalizeRecord(raw)
		if rec.ProductID == "" {
			continue
		}
		rec.ExtractedDate = ds.ExtractedDate
		rec.SchemaVersion = ds.Schema.Version
		records = append(records, rec)
	}

	meta := store.SnapshotMeta{
		SnapshotID:    uuid.NewString(),
		ExtractedDate: ds.ExtractedDate,
		SchemaVersion: ds.Schema.Version,
		IngestedAt:    time.Now().UTC(),
	}
	snap := store.NewSnapshot(meta, records)

	if i.persist != nil {
		if err := i.persist.SaveSnapshot(ctx, snap); err != nil {
			return nil, err
		}
	}
	i.mem.Swap(snap)

	zap.L().Info("dataset ingested",
		zap.String("snapshot_id", meta.SnapshotID),
		zap.Int("records", snap.Len()),
		zap.String("extracted_date", meta.ExtractedDate),
		zap.String("schema_version", meta.SchemaVersion),
	)
	return snap, nil
}

// Restore loads the latest persisted snapshot into memory. Returns false
// when the persistence store is empty or absent.
func (i *Ingestor) Restore(ctx context.Context) (bool, error) {
	if i.persist == nil {
		return false, nil
	}
	snap, err := i.persist.LoadLatest(ctx)
	if err != nil {
		return false, err
	}
	if snap == nil {
		return false, nil
	}
	i.mem.Swap(snap)
	zap.L().Info("snapshot restored",
		zap.String("snapshot_id", snap.Meta().SnapshotID),
		zap.Int("records", snap.Len()),
	)
	return true, nil
}

// Top-level record attributes that are identity, not spec fields.
var identityKeys = map[string]bool{
	"product_id": true,
	"region":     true,
	"brand":      true,
	"model":      true,
	"variant":    true,
}

func normalizeRecord(raw map[string]any) *model.ProductRecord {
	rec := &model.ProductRecord{
		ProductID: plainString(raw["product_id"]),
		Region:    model.Region(plainString(raw["region"])),
		Brand:     plainString(raw["brand"]),
		Model:     plainString(raw["model"]),
		Variant:   plainString(raw["variant"]),
		Fields:    map[string]*model.FieldValue{},
	}
	for name, v := range raw {
		if identityKeys[name] {
			continue
		}
		if fv := normalizeField(name, v); fv != nil {
			rec.Fields[name] = fv
		}
	}
	return rec
}

// normalizeField wraps one dataset entry as a FieldValue. Plain scalars get
// wrapped without confidence, which makes them disclosed rather than usable.
func normalizeField(name string, v any) *model.FieldValue {
	m, ok := v.(map[string]any)
	if !ok {
		if v == nil {
			return nil
		}
		return &model.FieldValue{Value: v}
	}

	fv := &model.FieldValue{
		SourceURL:  plainString(m["source_url"]),
		Confidence: model.Confidence(plainString(m["confidence"])),
		Region:     model.Region(plainString(m["region"])),
	}
	if ex, ok := m["excluded_from_recommendations"].(bool); ok {
		fv.Excluded = ex
	}

	// folded_dimensions_in carries length/width/height at the top level of
	// the wrapper rather than under "value".
	if name == model.FieldFoldedDims {
		probe := model.FieldValue{Value: m}
		if dims, ok := probe.Dims(); ok {
			fv.Value = dims
			return fv
		}
	}

	if val, ok := m["value"]; ok {
		fv.Value = val
	}
	return fv
}

func plainString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case map[string]any:
		if inner, ok := s["value"].(string); ok {
			return inner
		}
	}
	return ""
}

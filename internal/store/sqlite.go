package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/strollerlabs/stroller-truth/internal/model"
)

// SQLiteStore implements Persistence using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id             TEXT PRIMARY KEY,
	extracted_date TEXT,
	schema_version TEXT,
	records        TEXT NOT NULL,
	ingested_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_snapshots_ingested_at ON snapshots(ingested_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveSnapshot persists the snapshot's records as a JSON document.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap.Records())
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal records")
	}
	meta := snap.Meta()
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO snapshots (id, extracted_date, schema_version, records, ingested_at) VALUES (?, ?, ?, ?, ?)`,
		meta.SnapshotID, meta.ExtractedDate, meta.SchemaVersion, string(data), meta.IngestedAt.UTC(),
	)
	return eris.Wrap(err, "sqlite: save snapshot")
}

// LoadLatest restores the most recently ingested snapshot.
func (s *SQLiteStore) LoadLatest(ctx context.Context) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, extracted_date, schema_version, records, ingested_at FROM snapshots ORDER BY ingested_at DESC LIMIT 1`,
	)

	var meta SnapshotMeta
	var records string
	var ingestedAt time.Time
	err := row.Scan(&meta.SnapshotID, &meta.ExtractedDate, &meta.SchemaVersion, &records, &ingestedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load latest snapshot")
	}
	meta.IngestedAt = ingestedAt

	var recs []*model.ProductRecord
	if err := json.Unmarshal([]byte(records), &recs); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal records")
	}
	return NewSnapshot(meta, recs), nil
}

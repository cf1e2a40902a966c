package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/strollerlabs/stroller-truth/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// in unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Persistence using pgxpool, for deployments that
// share one dataset across replicas.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id             TEXT PRIMARY KEY,
	extracted_date TEXT,
	schema_version TEXT,
	records        JSONB NOT NULL,
	ingested_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_snapshots_ingested_at ON snapshots(ingested_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// SaveSnapshot persists the snapshot's records as a JSONB document.
func (s *PostgresStore) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap.Records())
	if err != nil {
		return eris.Wrap(err, "postgres: marshal records")
	}
	meta := snap.Meta()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO snapshots (id, extracted_date, schema_version, records, ingested_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET extracted_date = $2, schema_version = $3, records = $4, ingested_at = $5`,
		meta.SnapshotID, meta.ExtractedDate, meta.SchemaVersion, string(data), meta.IngestedAt.UTC(),
	)
	return eris.Wrap(err, "postgres: save snapshot")
}

// LoadLatest restores the most recently ingested snapshot.
func (s *PostgresStore) LoadLatest(ctx context.Context) (*Snapshot, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, extracted_date, schema_version, records, ingested_at FROM snapshots ORDER BY ingested_at DESC LIMIT 1`,
	)

	var meta SnapshotMeta
	var records string
	var ingestedAt time.Time
	err := row.Scan(&meta.SnapshotID, &meta.ExtractedDate, &meta.SchemaVersion, &records, &ingestedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load latest snapshot")
	}
	meta.IngestedAt = ingestedAt

	var recs []*model.ProductRecord
	if err := json.Unmarshal([]byte(records), &recs); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal records")
	}
	return NewSnapshot(meta, recs), nil
}

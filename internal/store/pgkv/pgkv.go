// Package pgkv persists collections in Postgres. Each collection is one row
// in the collections table with the records stored as a jsonb array, which
// keeps the write path a single atomic upsert.
package pgkv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bellasalon/booking-platform/pkg/logging"
)

// db is the slice of pgxpool.Pool the store needs. Tests inject pgxmock.
type db interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store is a Postgres-backed store.Backend.
type Store struct {
	db     db
	logger *logging.Logger
}

// New creates a Postgres-backed store.
func New(pool *pgxpool.Pool, logger *logging.Logger) *Store {
	if pool == nil {
		panic("pgkv: pgx pool required")
	}
	return newWithDB(pool, logger)
}

// NewWithDB allows injecting a mock database for testing.
func NewWithDB(db db, logger *logging.Logger) *Store {
	return newWithDB(db, logger)
}

func newWithDB(db db, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{db: db, logger: logger}
}

// ReadCollection returns the records under key. A missing row or an
// undecodable payload reads as an empty collection.
func (s *Store) ReadCollection(ctx context.Context, key string) ([]json.RawMessage, error) {
	var data []byte
	err := s.db.QueryRow(ctx, `SELECT records FROM collections WHERE key = $1`, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pgkv: select %s: %w", key, err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("collection payload corrupt, treating as empty", "key", key, "error", err)
		return []json.RawMessage{}, nil
	}
	return records, nil
}

// WriteCollection replaces the records under key.
func (s *Store) WriteCollection(ctx context.Context, key string, records []json.RawMessage) error {
	if records == nil {
		records = []json.RawMessage{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("pgkv: marshal %s: %w", key, err)
	}
	query := `
		INSERT INTO collections (key, records, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET records = EXCLUDED.records, updated_at = now()
	`
	if _, err := s.db.Exec(ctx, query, key, data); err != nil {
		return fmt.Errorf("pgkv: upsert %s: %w", key, err)
	}
	return nil
}

package collector

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the database surface the Postgres store needs. Satisfied by both
// *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore persists receipts in Postgres. The idempotency key carries a
// unique constraint, so duplicate detection happens in the insert itself
// rather than a read-then-write race.
type PGStore struct {
	db DBTX
}

// NewPGStore creates a store over an existing pool or transaction.
func NewPGStore(db DBTX) *PGStore {
	return &PGStore{db: db}
}

// Schema is the DDL for the receipts table. Applied by the collector
// entrypoint on startup; safe to re-run.
const Schema = `
CREATE TABLE IF NOT EXISTS chunk_receipts (
    id              UUID PRIMARY KEY,
    idempotency_key TEXT NOT NULL UNIQUE,
    site            TEXT NOT NULL,
    username        TEXT NOT NULL,
    algorithm       TEXT NOT NULL,
    encoding        TEXT NOT NULL,
    sequence        INT  NOT NULL,
    row_count       INT  NOT NULL,
    byte_size       INT  NOT NULL,
    received_at     TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// EnsureSchema creates the receipts table if it does not exist.
func EnsureSchema(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure receipts schema: %w", err)
	}
	return nil
}

// Save implements ReceiptStore. A conflicting idempotency key inserts
// nothing and reports ErrDuplicate.
func (s *PGStore) Save(ctx context.Context, r Receipt) error {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO chunk_receipts
			(id, idempotency_key, site, username, algorithm, encoding, sequence, row_count, byte_size, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (idempotency_key) DO NOTHING`,
		r.ID, r.IdempotencyKey, r.Site, r.User, r.Algorithm, r.Encoding, r.Sequence, r.Rows, r.ByteSize, r.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("save receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicate
	}
	return nil
}

// Count implements ReceiptStore.
func (s *PGStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM chunk_receipts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count receipts: %w", err)
	}
	return n, nil
}

package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgSchema = `CREATE TABLE IF NOT EXISTS collections (
	name       TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PGConn is the part of *pgxpool.Pool the backend uses.
type PGConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

var _ PGConn = (*pgxpool.Pool)(nil)

// PGBackend stores each collection as one jsonb row.
type PGBackend struct {
	db PGConn
}

func NewPGBackend(db PGConn) *PGBackend {
	return &PGBackend{db: db}
}

func (r *PGBackend) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, pgSchema)
	return err
}

func (r *PGBackend) Read(ctx context.Context, c Collection) ([]byte, error) {
	var payload []byte
	err := r.db.QueryRow(ctx, `SELECT payload FROM collections WHERE name=$1`, string(c)).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return payload, nil
}

func (r *PGBackend) Write(ctx context.Context, writes []Write) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, w := range writes {
		if _, err := tx.Exec(ctx, `INSERT INTO collections (name, payload, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
			string(w.Collection), w.Data); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

var _ Backend = (*PGBackend)(nil)

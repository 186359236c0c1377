// Package postgres implements a Postgres-backed storage.Sink using pgx v5.
// Batches go in through COPY, which is the fast path for bulk loads.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tablemend/internal/config"
	"tablemend/internal/layout"
	"tablemend/internal/records"
	"tablemend/internal/storage"
)

// Repository is a Postgres-backed implementation of storage.Sink.
type Repository struct {
	pool   *pgxpool.Pool
	table  string
	layout layout.Layout
}

// NewRepository constructs a Repository and returns a Close function for
// cleanup. When cfg.AutoCreateTable is set the destination table is created
// if missing.
func NewRepository(ctx context.Context, cfg config.DBConfig, l layout.Layout) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: pool: %w", err)
	}
	r := &Repository{pool: pool, table: cfg.Table, layout: l}
	if cfg.AutoCreateTable {
		if _, err := pool.Exec(ctx, storage.CreateTableSQL(pgFQN(cfg.Table), l)); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres: create table: %w", err)
		}
	}
	closeFn := func() { pool.Close() }
	return r, closeFn, nil
}

// WriteRecords COPYs recs into the configured table.
func (r *Repository) WriteRecords(ctx context.Context, recs []records.Logical) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	rows := storage.Values(r.layout, recs)
	n, err := r.pool.CopyFrom(ctx, splitFQN(r.table), storage.Columns(r.layout), pgx.CopyFromRows(rows))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return n, fmt.Errorf("postgres: copy: %s (%s)", pgErr.Detail, pgErr.SQLState())
		}
		return n, fmt.Errorf("postgres: copy: %w", err)
	}
	return n, nil
}

// Exec executes an arbitrary SQL statement (typically DDL) on the pool.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if _, err := r.pool.Exec(ctx, sqlText); err != nil {
		return fmt.Errorf("postgres: exec: %w", err)
	}
	return nil
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// pgFQN quotes a possibly schema-qualified name like "public.records" to
// "public"."records". If no dot is present, returns a single quoted ident.
func pgFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
// If no dot is present, returns {"table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}

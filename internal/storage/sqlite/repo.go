// Package sqlite implements a SQLite-backed storage.Sink using database/sql.
// It performs batched INSERTs inside a transaction; SQLite has no dedicated
// bulk-load API like Postgres COPY, but transactions keep performance
// acceptable for the volumes one reconstruction run produces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"tablemend/internal/config"
	"tablemend/internal/layout"
	"tablemend/internal/records"
	"tablemend/internal/storage"
)

// Repository is a SQLite-backed implementation of storage.Sink.
type Repository struct {
	db     *sql.DB
	table  string
	layout layout.Layout
}

// NewRepository opens a SQLite connection for cfg and returns a Repository
// plus a Close function for cleanup. When cfg.AutoCreateTable is set the
// destination table is created if missing.
//
// The DSN is passed directly to database/sql; for example:
//
//	"file:records.db?cache=shared"
//	"records.db"
func NewRepository(ctx context.Context, cfg config.DBConfig, l layout.Layout) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	r := &Repository{db: db, table: cfg.Table, layout: l}
	if cfg.AutoCreateTable {
		if _, err := db.ExecContext(ctx, storage.CreateTableSQL(cfg.Table, l)); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("sqlite: create table: %w", err)
		}
	}

	closeFn := func() { db.Close() }
	return r, closeFn, nil
}

// WriteRecords inserts recs into the configured table using a single
// transaction and a prepared INSERT statement.
func (r *Repository) WriteRecords(ctx context.Context, recs []records.Logical) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	columns := storage.Columns(r.layout)
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		r.table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, vals := range storage.Values(r.layout, recs) {
		if _, err := stmt.ExecContext(ctx, vals...); err != nil {
			_ = tx.Rollback()
			return inserted, fmt.Errorf("sqlite: insert seq=%v: %w", vals[0], err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// Exec executes an arbitrary SQL statement (typically DDL) on the underlying
// connection.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

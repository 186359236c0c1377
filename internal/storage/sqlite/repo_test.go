package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"tablemend/internal/config"
	"tablemend/internal/layout"
	"tablemend/internal/records"
)

var testLayout = layout.Layout{
	SeqTitle:      "S.NO.",
	EntityTitle:   "NAME OF COLLEGE",
	CategoryTitle: "NAME OF PROGRAM",
	NumericFields: []string{"UR", "OBC"},
}

/*
TestRepository_RoundTrip exercises the full path against a real on-disk
database: auto-create, batched insert, and a read-back of what landed.
*/
func TestRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cfg := config.DBConfig{
		DSN:             filepath.Join(t.TempDir(), "records.db"),
		Table:           "records",
		AutoCreateTable: true,
	}

	repo, closeFn, err := NewRepository(ctx, cfg, testLayout)
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	defer closeFn()

	recs := []records.Logical{
		{Seq: 1, Entity: "Alpha College", Category: "B.A.", Numeric: map[string]int{"UR": 5, "OBC": 2}},
		{Seq: 2, Entity: "Beta College", Category: "B.Sc.", Numeric: map[string]int{"UR": 3, "OBC": 1}},
	}
	n, err := repo.WriteRecords(ctx, recs)
	if err != nil {
		t.Fatalf("WriteRecords: %v", err)
	}
	if n != 2 {
		t.Fatalf("inserted=%d; want 2", n)
	}

	var count, total int
	row := repo.db.QueryRowContext(ctx, "SELECT COUNT(*), SUM(total) FROM records")
	if err := row.Scan(&count, &total); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if count != 2 || total != 11 {
		t.Fatalf("count=%d total=%d; want 2/11", count, total)
	}

	var entity string
	row = repo.db.QueryRowContext(ctx, "SELECT entity FROM records WHERE seq = 2")
	if err := row.Scan(&entity); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if entity != "Beta College" {
		t.Fatalf("entity=%q", entity)
	}
}

func TestRepository_EmptyBatch(t *testing.T) {
	ctx := context.Background()
	cfg := config.DBConfig{
		DSN:             filepath.Join(t.TempDir(), "records.db"),
		Table:           "records",
		AutoCreateTable: true,
	}
	repo, closeFn, err := NewRepository(ctx, cfg, testLayout)
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	defer closeFn()

	n, err := repo.WriteRecords(ctx, nil)
	if err != nil || n != 0 {
		t.Fatalf("empty batch: n=%d err=%v", n, err)
	}
}

func TestNewRepository_EmptyDSN(t *testing.T) {
	if _, _, err := NewRepository(context.Background(), config.DBConfig{Table: "t"}, testLayout); err == nil {
		t.Fatalf("want error for empty DSN")
	}
}

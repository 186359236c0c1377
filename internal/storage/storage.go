// Package storage persists reconstructed records. It defines a narrow Sink
// interface plus the column mapping shared by all backends; concrete database
// code lives in the sqlite and postgres subpackages.
package storage

import (
	"context"
	"fmt"
	"strings"

	"tablemend/internal/layout"
	"tablemend/internal/records"
)

// Sink writes a batch of reconstructed records to a destination.
type Sink interface {
	// WriteRecords inserts recs and returns the number of rows written.
	WriteRecords(ctx context.Context, recs []records.Logical) (int64, error)
}

// Fixed leading columns; numeric field columns follow in layout order.
var baseColumns = []string{"seq", "entity", "category"}

// Columns returns the destination column list for l: the fixed text columns
// followed by one column per numeric field plus a derived total.
func Columns(l layout.Layout) []string {
	out := make([]string, 0, len(baseColumns)+len(l.NumericFields)+1)
	out = append(out, baseColumns...)
	for _, f := range l.NumericFields {
		out = append(out, ColumnName(f))
	}
	return append(out, "total")
}

// ColumnName lowercases a numeric field caption into a SQL-friendly
// identifier, e.g. "PwBD" -> "pwbd", "NAME OF X" -> "name_of_x".
func ColumnName(field string) string {
	s := strings.ToLower(strings.TrimSpace(field))
	s = strings.Join(strings.Fields(s), "_")
	return s
}

// Values flattens recs into rows matching Columns(l) order.
func Values(l layout.Layout, recs []records.Logical) [][]any {
	rows := make([][]any, 0, len(recs))
	for _, rec := range recs {
		row := make([]any, 0, len(baseColumns)+len(l.NumericFields)+1)
		row = append(row, rec.Seq, rec.Entity, rec.Category)
		for _, f := range l.NumericFields {
			row = append(row, rec.Numeric[f])
		}
		row = append(row, rec.Total())
		rows = append(rows, row)
	}
	return rows
}

// CreateTableSQL returns portable DDL for the destination table. seq is the
// primary key; records carry dense identifiers, so a natural key exists.
func CreateTableSQL(table string, l layout.Layout) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", table)
	b.WriteString("  seq INTEGER PRIMARY KEY,\n")
	b.WriteString("  entity TEXT NOT NULL,\n")
	b.WriteString("  category TEXT NOT NULL,\n")
	for _, f := range l.NumericFields {
		fmt.Fprintf(&b, "  %s INTEGER NOT NULL DEFAULT 0,\n", ColumnName(f))
	}
	b.WriteString("  total INTEGER NOT NULL DEFAULT 0\n)")
	return b.String()
}

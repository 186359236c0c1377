package xlsx

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"tablemend/internal/layout"
	"tablemend/internal/reconstruct"
	"tablemend/internal/records"
)

var testLayout = layout.Layout{
	SeqTitle:      "S.NO.",
	EntityTitle:   "NAME OF COLLEGE",
	CategoryTitle: "NAME OF PROGRAM",
	NumericFields: []string{"UR", "OBC"},
}

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	recs := []records.Logical{
		{Seq: 1, Entity: "Alpha College", Category: "B.A.", Numeric: map[string]int{"UR": 5, "OBC": 2}},
		{Seq: 2, Entity: "Beta College", Category: "B.Sc.", Numeric: map[string]int{"UR": 3, "OBC": 1}},
	}
	st := reconstruct.Stats{RowsIn: 4, RowsOut: 2}

	if err := Write(path, testLayout, recs, st); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(recordsSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows=%d; want header + 2", len(rows))
	}
	if rows[0][1] != "NAME OF COLLEGE" || rows[0][5] != "TOTAL" {
		t.Fatalf("header=%v", rows[0])
	}
	if rows[1][1] != "Alpha College" || rows[1][5] != "7" {
		t.Fatalf("record row=%v", rows[1])
	}

	sum, err := f.GetRows(summarySheet)
	if err != nil {
		t.Fatalf("GetRows summary: %v", err)
	}
	found := false
	for _, r := range sum {
		if len(r) >= 2 && r[0] == "rows_in" && r[1] == "4" {
			found = true
		}
	}
	if !found {
		t.Fatalf("summary missing rows_in: %v", sum)
	}

	// Default sheet must be gone; only the two named sheets remain.
	names := f.GetSheetList()
	if len(names) != 2 {
		t.Fatalf("sheets=%v", names)
	}
}

func TestWrite_EmptyRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	if err := Write(path, testLayout, nil, reconstruct.Stats{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(recordsSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows=%d; want header only", len(rows))
	}
}

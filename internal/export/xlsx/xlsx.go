// Package xlsx writes reconstructed records and their run summary into an
// Excel workbook: a "Records" sheet with one row per logical record and a
// "Summary" sheet with run statistics and aggregate rollups.
package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"tablemend/internal/analytics"
	"tablemend/internal/layout"
	"tablemend/internal/reconstruct"
	"tablemend/internal/records"
)

const (
	recordsSheet = "Records"
	summarySheet = "Summary"
)

// Write builds the workbook and saves it at path.
func Write(path string, l layout.Layout, recs []records.Logical, st reconstruct.Stats) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeRecords(f, l, recs); err != nil {
		return err
	}
	if err := writeSummary(f, l, recs, st); err != nil {
		return err
	}

	// Drop the default sheet; Records becomes the front sheet.
	idx, err := f.GetSheetIndex(recordsSheet)
	if err != nil {
		return fmt.Errorf("xlsx: sheet index: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("xlsx: delete default sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx: save %s: %w", path, err)
	}
	return nil
}

func writeRecords(f *excelize.File, l layout.Layout, recs []records.Logical) error {
	if _, err := f.NewSheet(recordsSheet); err != nil {
		return fmt.Errorf("xlsx: new sheet: %w", err)
	}

	header := append([]string{l.SeqTitle, l.EntityTitle, l.CategoryTitle}, l.NumericFields...)
	header = append(header, "TOTAL")
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(recordsSheet, cell, h); err != nil {
			return fmt.Errorf("xlsx: header: %w", err)
		}
	}

	for rIdx, rec := range recs {
		vals := []any{rec.Seq, rec.Entity, rec.Category}
		for _, field := range l.NumericFields {
			vals = append(vals, rec.Numeric[field])
		}
		vals = append(vals, rec.Total())
		for cIdx, v := range vals {
			cell, _ := excelize.CoordinatesToCellName(cIdx+1, rIdx+2)
			if err := f.SetCellValue(recordsSheet, cell, v); err != nil {
				return fmt.Errorf("xlsx: record row %d: %w", rIdx+1, err)
			}
		}
	}

	// Make the text columns readable without manual resizing.
	if err := f.SetColWidth(recordsSheet, "B", "C", 42); err != nil {
		return fmt.Errorf("xlsx: col width: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, l layout.Layout, recs []records.Logical, st reconstruct.Stats) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("xlsx: new sheet: %w", err)
	}

	sum := analytics.Summarize(l, recs)
	row := 1
	put := func(k string, v any) error {
		kc, _ := excelize.CoordinatesToCellName(1, row)
		vc, _ := excelize.CoordinatesToCellName(2, row)
		if err := f.SetCellValue(summarySheet, kc, k); err != nil {
			return err
		}
		if err := f.SetCellValue(summarySheet, vc, v); err != nil {
			return err
		}
		row++
		return nil
	}

	pairs := []struct {
		k string
		v any
	}{
		{"rows_in", st.RowsIn},
		{"rows_out", st.RowsOut},
		{"blank_dropped", st.BlankDropped},
		{"headers_removed", st.HeadersRemoved},
		{"realign_merges", st.RealignMerges},
		{"continuation_merges", st.MergesTotal()},
		{"dropped", st.DroppedTotal()},
		{"context_hits", st.ContextHits},
		{"context_misses", st.ContextMisses},
		{"overrides_applied", st.OverridesApplied},
		{"grand_total", sum.Total},
	}
	for _, p := range pairs {
		if err := put(p.k, p.v); err != nil {
			return fmt.Errorf("xlsx: summary: %w", err)
		}
	}
	for _, field := range l.NumericFields {
		if err := put("total_"+field, sum.FieldTotals[field]); err != nil {
			return fmt.Errorf("xlsx: summary: %w", err)
		}
	}

	row++ // blank spacer
	if err := put("top entities", ""); err != nil {
		return fmt.Errorf("xlsx: summary: %w", err)
	}
	for _, r := range sum.TopEntities(10) {
		if err := put(r.Name, r.Total); err != nil {
			return fmt.Errorf("xlsx: summary: %w", err)
		}
	}

	if err := f.SetColWidth(summarySheet, "A", "A", 42); err != nil {
		return fmt.Errorf("xlsx: col width: %w", err)
	}
	return nil
}

package reconstruct

import (
	"strings"

	"tablemend/internal/row"
)

// normalizeRows is stage 1: drop fully blank rows, trim every cell, and
// coerce each row to the canonical column count. Nothing here is fatal; a row
// is never rejected outright, only corrected and counted.
func normalizeRows(in []row.Raw, pol Policy, st *Stats) []row.Raw {
	width := pol.Layout.Width()
	out := make([]row.Raw, 0, len(in))
	seen := make(map[uint64]struct{}, len(in))

	for _, r := range in {
		if r.Blank() {
			st.BlankDropped++
			continue
		}
		n := row.Raw{Cells: make([]string, width), Pos: r.Pos}
		for i := 0; i < width && i < len(r.Cells); i++ {
			n.Cells[i] = strings.TrimSpace(r.Cells[i])
		}
		switch {
		case len(r.Cells) < width:
			st.ShortPadded++
		case len(r.Cells) > width:
			st.LongTruncated++
		}
		// Exact duplicates are legal input (the extractor re-reads page
		// overlaps); they are counted for the audit trail but kept.
		fp := n.Fingerprint()
		if _, dup := seen[fp]; dup {
			st.DuplicateRows++
		} else {
			seen[fp] = struct{}{}
		}
		out = append(out, n)
	}
	return out
}

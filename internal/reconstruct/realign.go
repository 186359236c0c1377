package reconstruct

import (
	"strings"

	"tablemend/internal/layout"
	"tablemend/internal/row"
)

// realign is stage 3: repair the column shift where a qualifier token
// displaced the entity name. The pattern is two physical rows:
//
//	row i:   ["",  "Example College", "", "", ...]   (label only)
//	row i+1: ["1", "(Evening)", "B.A. Program", "10", ...]
//
// The qualifier match is strict: the entity cell of row i+1 must equal one of
// the configured literals exactly. A looser contains-match exists in the wild
// and produces false merges, so it is deliberately not offered.
//
// Unmatched label-only rows pass through untouched; the continuation resolver
// picks them up later.
func realign(in []row.Raw, pol Policy, st *Stats) []row.Raw {
	cl := pol.classifier()
	out := make([]row.Raw, 0, len(in))

	for i := 0; i < len(in); i++ {
		r := in[i]
		if i+1 < len(in) && labelOnly(r, cl) && qualifierRow(in[i+1], cl) {
			next := in[i+1].Clone()
			next.Cells[layout.EntityCol] = joinQualifier(
				strings.TrimSpace(r.Cell(layout.EntityCol)),
				strings.TrimSpace(in[i+1].Cell(layout.EntityCol)),
			)
			out = append(out, next)
			st.RealignMerges++
			i++ // both rows consumed
			continue
		}
		out = append(out, r)
	}
	return out
}

// labelOnly: entity text present and substantial, no sequence number, no
// category, no numeric payload.
func labelOnly(r row.Raw, cl row.Classifier) bool {
	if _, ok := r.Seq(); ok {
		return false
	}
	entity := strings.TrimSpace(r.Cell(layout.EntityCol))
	if len(entity) <= cl.MinEntityLen {
		return false
	}
	if strings.TrimSpace(r.Cell(layout.CategoryCol)) != "" {
		return false
	}
	return r.NumericEmpty(cl.Layout)
}

// qualifierRow: valid sequence number, entity cell holding exactly a
// qualifier literal, and a category present.
func qualifierRow(r row.Raw, cl row.Classifier) bool {
	if _, ok := r.Seq(); !ok {
		return false
	}
	if !cl.IsQualifier(r.Cell(layout.EntityCol)) {
		return false
	}
	return strings.TrimSpace(r.Cell(layout.CategoryCol)) != ""
}

// joinQualifier appends q to name unless name already carries it, which
// avoids doubled suffixes like "X College (W) (W)".
func joinQualifier(name, q string) string {
	if name == "" {
		return q
	}
	if q == "" || strings.HasSuffix(name, q) {
		return name
	}
	return name + " " + q
}

package reconstruct

import (
	"strings"

	"tablemend/internal/layout"
	"tablemend/internal/row"
)

// lookBack is stage 5, the context resolver: an index-based backward scan
// over the immutable pre-merge stream, bounded by Policy.ContextWindow. It
// returns the first recoverable entity name before position `from`:
//
//   - a complete row carrying a full, unqualified name, or
//   - a label-only continuation row whose text is substantial enough to be a
//     name on its own (the caller applies the qualifier composition rule).
//
// The scan deliberately walks the pre-merge rows, not the partially merged
// accumulator, so resolution is reproducible regardless of what earlier
// fragments did to the output.
func lookBack(pre []row.Raw, from int, cl row.Classifier, pol Policy) (string, bool) {
	lo := from - pol.ContextWindow
	if lo < 0 {
		lo = 0
	}
	for j := from - 1; j >= lo; j-- {
		r := pre[j]
		entity := strings.TrimSpace(r.Cell(layout.EntityCol))
		if entity == "" {
			continue
		}
		if _, keyed := r.Seq(); keyed {
			if cl.LongUnqualified(entity) {
				return entity, true
			}
			continue
		}
		// Label-only row: name text parked without a sequence number.
		if len(entity) > cl.MinEntityLen && !cl.IsQualifier(entity) &&
			strings.TrimSpace(r.Cell(layout.CategoryCol)) == "" && r.NumericEmpty(cl.Layout) {
			return entity, true
		}
	}
	return "", false
}

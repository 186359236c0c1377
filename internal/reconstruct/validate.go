package reconstruct

import (
	"strconv"
	"strings"

	"tablemend/internal/layout"
	"tablemend/internal/records"
	"tablemend/internal/row"
)

// validate is stage 7: drop rows the resolvers could not classify, apply the
// row-retention policy, assign dense 1-based sequence identifiers in stream
// order, and emit the final records. Original sequence cells are advisory by
// this point; the extractor's numbering is unreliable once rows have been
// merged or removed upstream.
func validate(in []row.Raw, pol Policy, st *Stats) []records.Logical {
	out := make([]records.Logical, 0, len(in))

	for _, r := range in {
		// Ambiguous rows pass through the resolvers unkeyed; every resolved
		// row carries a valid sequence number.
		if _, keyed := r.Seq(); !keyed {
			st.Dropped[DropAmbiguous]++
			continue
		}

		entity := strings.TrimSpace(r.Cell(layout.EntityCol))
		category := strings.TrimSpace(r.Cell(layout.CategoryCol))

		numeric := make(map[string]int, len(pol.Layout.NumericFields))
		allZero := true
		for i, name := range pol.Layout.NumericFields {
			v, err := strconv.Atoi(r.Cell(layout.NumericStart + i))
			if err != nil || v < 0 {
				v = 0
			}
			numeric[name] = v
			if v != 0 {
				allZero = false
			}
		}

		switch {
		case allZero && entity == "" && category == "":
			st.Dropped[DropEmptyRecord]++
			continue
		case pol.RequireEntityName && entity == "":
			st.Dropped[DropEmptyEntity]++
			continue
		case allZero && !pol.KeepZeroNumericRows:
			st.Dropped[DropZeroNumeric]++
			continue
		}

		out = append(out, records.Logical{
			Seq:      len(out) + 1,
			Entity:   entity,
			Category: category,
			Numeric:  numeric,
		})
	}
	return out
}

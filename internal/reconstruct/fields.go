package reconstruct

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"tablemend/internal/layout"
	"tablemend/internal/row"
)

// NormalizeFields is stage 6: numeric cells become canonical non-negative
// integer text (first embedded digit run, zero on anything else) and text
// cells get whitespace collapsed plus one consistent casing policy. The
// transform is idempotent: applying it to its own output changes nothing.
//
// Exported because downstream callers occasionally re-clean rows they edited
// by hand, and the idempotence property is part of the engine contract.
func NormalizeFields(in []row.Raw, pol Policy) []row.Raw {
	pol = pol.normalized()
	caser := caserFor(pol.Casing)
	width := pol.Layout.Width()

	out := make([]row.Raw, 0, len(in))
	for _, r := range in {
		n := r.Clone()
		// Hand-edited rows may arrive narrower than the canonical width.
		if len(n.Cells) < width {
			cells := make([]string, width)
			copy(cells, n.Cells)
			n.Cells = cells
		}
		n.Cells[layout.SeqCol] = strings.TrimSpace(n.Cell(layout.SeqCol))
		n.Cells[layout.EntityCol] = cleanText(n.Cell(layout.EntityCol), caser)
		n.Cells[layout.CategoryCol] = cleanText(n.Cell(layout.CategoryCol), caser)
		for i := layout.NumericStart; i < width; i++ {
			n.Cells[i] = strconv.Itoa(row.FirstDigitRun(n.Cell(i)))
		}
		out = append(out, n)
	}
	return out
}

func caserFor(policy string) *cases.Caser {
	switch policy {
	case "upper":
		c := cases.Upper(language.English)
		return &c
	case "title":
		c := cases.Title(language.English, cases.NoLower)
		return &c
	}
	return nil // preserve
}

// cleanText collapses internal whitespace runs to a single space, trims, and
// applies the casing policy. No per-character special cases.
func cleanText(s string, caser *cases.Caser) string {
	s = strings.Join(strings.Fields(s), " ")
	if caser != nil {
		s = caser.String(s)
	}
	return s
}

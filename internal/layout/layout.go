// Package layout defines the canonical column contract for reconstructed
// tables: one sequence-number cell, one entity-name cell, one category-label
// cell, and a fixed ordered set of named numeric fields. Every pipeline stage
// validates row shape against this contract.
package layout

import "fmt"

// Well-known cell positions. Numeric fields start at NumericStart.
const (
	SeqCol       = 0
	EntityCol    = 1
	CategoryCol  = 2
	NumericStart = 3
)

// Layout is the canonical column contract. It is JSON-serializable so a
// pipeline config can carry it alongside parser and storage options.
type Layout struct {
	// EntityTitle and CategoryTitle are the canonical header captions for the
	// text columns, e.g. "NAME OF THE COLLEGE". Used by the header filter and
	// by exporters.
	SeqTitle      string `json:"seq_title"`
	EntityTitle   string `json:"entity_title"`
	CategoryTitle string `json:"category_title"`

	// NumericFields names the numeric columns in order, e.g.
	// ["UR","OBC","SC","ST","EWS","SIKH","PwBD"].
	NumericFields []string `json:"numeric_fields"`
}

// Width is the canonical cell count of a row under this layout.
func (l Layout) Width() int { return NumericStart + len(l.NumericFields) }

// HeaderTitles returns all canonical column captions in column order.
func (l Layout) HeaderTitles() []string {
	out := make([]string, 0, l.Width())
	out = append(out, l.SeqTitle, l.EntityTitle, l.CategoryTitle)
	out = append(out, l.NumericFields...)
	return out
}

// Validate rejects layouts that cannot describe a reconstructable table.
// A layout without numeric fields fails the entire run before any row is
// processed.
func (l Layout) Validate() error {
	if len(l.NumericFields) == 0 {
		return fmt.Errorf("layout: at least one numeric field required")
	}
	seen := make(map[string]struct{}, len(l.NumericFields))
	for _, f := range l.NumericFields {
		if f == "" {
			return fmt.Errorf("layout: empty numeric field name")
		}
		if _, dup := seen[f]; dup {
			return fmt.Errorf("layout: duplicate numeric field %q", f)
		}
		seen[f] = struct{}{}
	}
	return nil
}

// Package analytics derives aggregate views over reconstructed records:
// field-wise totals, per-entity and per-category rollups, and top-N rankings.
// Aggregation is read-only; it never feeds back into reconstruction.
package analytics

import (
	"sort"

	"tablemend/internal/layout"
	"tablemend/internal/records"
)

// Rollup is one aggregation bucket (an entity or a category).
type Rollup struct {
	Name    string `json:"name"`
	Records int    `json:"records"`
	Total   int    `json:"total"`
}

// Summary aggregates one record set.
type Summary struct {
	Records int `json:"records"`
	Total   int `json:"total"`

	// FieldTotals sums each numeric field across all records, in layout order.
	FieldTotals map[string]int `json:"field_totals"`

	// ByEntity and ByCategory are sorted by descending total, ties broken by
	// name so output is deterministic.
	ByEntity   []Rollup `json:"by_entity"`
	ByCategory []Rollup `json:"by_category"`
}

// Summarize builds a Summary for recs under l.
func Summarize(l layout.Layout, recs []records.Logical) Summary {
	s := Summary{
		Records:     len(recs),
		FieldTotals: make(map[string]int, len(l.NumericFields)),
	}
	for _, f := range l.NumericFields {
		s.FieldTotals[f] = 0
	}

	entities := map[string]*Rollup{}
	categories := map[string]*Rollup{}
	for _, rec := range recs {
		t := rec.Total()
		s.Total += t
		for _, f := range l.NumericFields {
			s.FieldTotals[f] += rec.Numeric[f]
		}
		bump(entities, rec.Entity, t)
		bump(categories, rec.Category, t)
	}

	s.ByEntity = sorted(entities)
	s.ByCategory = sorted(categories)
	return s
}

// TopEntities returns the n highest-total entities. n larger than the entity
// count returns them all.
func (s Summary) TopEntities(n int) []Rollup {
	if n > len(s.ByEntity) {
		n = len(s.ByEntity)
	}
	if n < 0 {
		n = 0
	}
	return s.ByEntity[:n]
}

func bump(m map[string]*Rollup, name string, total int) {
	r, ok := m[name]
	if !ok {
		r = &Rollup{Name: name}
		m[name] = r
	}
	r.Records++
	r.Total += total
}

func sorted(m map[string]*Rollup) []Rollup {
	out := make([]Rollup, 0, len(m))
	for _, r := range m {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

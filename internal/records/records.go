// Package records defines the finalized output unit of the reconstruction
// engine. A Logical record is immutable once the validator has emitted it:
// it is never split or re-merged downstream.
package records

// Logical is one reconstructed table record.
//
// Seq is dense and equal to the record's 1-based output rank. Entity and
// Category are non-empty. Numeric holds every layout field, defaulting to
// zero, never negative.
type Logical struct {
	Seq      int            `json:"seq"`
	Entity   string         `json:"entity"`
	Category string         `json:"category"`
	Numeric  map[string]int `json:"numeric"`
}

// Total sums all numeric fields of r.
func (r Logical) Total() int {
	t := 0
	for _, v := range r.Numeric {
		t += v
	}
	return t
}

// Package reconstruct turns the noisy row stream produced by a
// document-table extractor into a clean sequence of logical records.
//
// The engine is a fixed seven-stage, single-threaded batch transform:
//
//	normalize → header filter → realign → continuation resolver
//	(→ context resolver per unresolved fragment) → field normalizer
//	→ validator
//
// Each stage is a pure transform over an ordered row slice; no stage
// re-examines output finalized by a later stage. One Policy value drives all
// heuristics, so the conservative-vs-aggressive trade-off is an explicit,
// testable input rather than a forked implementation.
package reconstruct

import (
	"fmt"
	"log"

	"tablemend/internal/layout"
	"tablemend/internal/metrics"
	"tablemend/internal/records"
	"tablemend/internal/row"
)

// Default tunables. Recovered from the reference corpus; all overridable via
// Policy.
const (
	DefaultHeaderThreshold = 2
	DefaultMinEntityLen    = 10
	DefaultEnumWindow      = 2
	DefaultContextWindow   = 50
)

// DefaultQualifiers are the suffix literals the realigner and the
// continuation resolver match exactly.
func DefaultQualifiers() []string { return []string{"(Evening)", "(W)"} }

// Policy parameterizes one reconstruction run.
type Policy struct {
	Layout layout.Layout

	// HeaderThreshold is the number of cells that must match canonical column
	// titles before a row is removed as a header restatement.
	HeaderThreshold int

	// Qualifiers are the exact suffix-tag literals, e.g. "(Evening)".
	Qualifiers []string

	// MinEntityLen separates full entity names from stray fragments: only
	// names longer than this update the entity-name context.
	MinEntityLen int

	// EnumWindow bounds the lookback for corrupted-enumeration repair.
	EnumWindow int

	// ContextWindow bounds the backward scan of the context resolver.
	ContextWindow int

	// Casing is the text-cell casing policy: "preserve" (default), "upper",
	// or "title".
	Casing string

	// NameOverrides maps known stray fragment text to the full entity name it
	// stands for. Injected lookup data; the engine carries no built-in table.
	NameOverrides map[string]string

	// RequireEntityName drops records whose entity name is still empty after
	// all repair stages. They are counted, never defaulted to a placeholder.
	RequireEntityName bool

	// KeepZeroNumericRows retains records whose numeric fields are all zero
	// unless entity and category are also both empty.
	KeepZeroNumericRows bool
}

// DefaultPolicy returns the engine defaults for l.
func DefaultPolicy(l layout.Layout) Policy {
	return Policy{
		Layout:              l,
		HeaderThreshold:     DefaultHeaderThreshold,
		Qualifiers:          DefaultQualifiers(),
		MinEntityLen:        DefaultMinEntityLen,
		EnumWindow:          DefaultEnumWindow,
		ContextWindow:       DefaultContextWindow,
		Casing:              "preserve",
		RequireEntityName:   true,
		KeepZeroNumericRows: true,
	}
}

// normalized fills zero-valued tunables with defaults. Boolean policy flags
// are taken as given.
func (p Policy) normalized() Policy {
	if p.HeaderThreshold <= 0 {
		p.HeaderThreshold = DefaultHeaderThreshold
	}
	if len(p.Qualifiers) == 0 {
		p.Qualifiers = DefaultQualifiers()
	}
	if p.MinEntityLen <= 0 {
		p.MinEntityLen = DefaultMinEntityLen
	}
	if p.EnumWindow <= 0 {
		p.EnumWindow = DefaultEnumWindow
	}
	if p.ContextWindow <= 0 {
		p.ContextWindow = DefaultContextWindow
	}
	if p.Casing == "" {
		p.Casing = "preserve"
	}
	return p
}

func (p Policy) classifier() row.Classifier {
	return row.Classifier{Layout: p.Layout, Qualifiers: p.Qualifiers, MinEntityLen: p.MinEntityLen}
}

// Drop reasons reported in Stats.Dropped. The set is closed; any new removal
// path must add its reason here so audits stay exhaustive.
const (
	DropAmbiguous          = "ambiguous"
	DropUnresolvedFragment = "unresolved_fragment"
	DropUnresolvedQual     = "unresolved_qualifier"
	DropEmptyEntity        = "empty_entity"
	DropEmptyRecord        = "empty_record"
	DropZeroNumeric        = "zero_numeric"
)

// Stats is the auditable summary of one run. Every row removed between input
// and output is accounted for: BlankDropped + HeadersRemoved + RealignMerges
// + sum(ContinuationMerges) + sum(Dropped) == RowsIn - RowsOut.
type Stats struct {
	RowsIn  int `json:"rows_in"`
	RowsOut int `json:"rows_out"`

	BlankDropped  int `json:"blank_dropped"`
	ShortPadded   int `json:"short_padded"`
	LongTruncated int `json:"long_truncated"`
	DuplicateRows int `json:"duplicate_rows"` // audit only, never dropped

	HeadersRemoved int `json:"headers_removed"`
	RealignMerges  int `json:"realign_merges"`

	// ContinuationMerges counts consumed fragments by class:
	// "label_prefix", "suffix_tag", "corrupted_enum".
	ContinuationMerges map[string]int `json:"continuation_merges"`

	ContextHits   int `json:"context_hits"`
	ContextMisses int `json:"context_misses"`

	OverridesApplied int `json:"overrides_applied"`

	Dropped map[string]int `json:"dropped"`
}

func newStats(rowsIn int) Stats {
	return Stats{
		RowsIn:             rowsIn,
		ContinuationMerges: map[string]int{},
		Dropped:            map[string]int{},
	}
}

// MergesTotal sums continuation merges across fragment classes.
func (s Stats) MergesTotal() int {
	t := 0
	for _, v := range s.ContinuationMerges {
		t += v
	}
	return t
}

// DroppedTotal sums drops across reasons.
func (s Stats) DroppedTotal() int {
	t := 0
	for _, v := range s.Dropped {
		t += v
	}
	return t
}

// StageError identifies the stage and row index at fault when a run fails
// fast. Row is -1 when no row applies (e.g. an invalid policy).
type StageError struct {
	Stage string
	Row   int
	Err   error
}

func (e *StageError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("reconstruct: stage %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("reconstruct: stage %s: row %d: %v", e.Stage, e.Row, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Run executes the full pipeline over rows under pol.
//
// rows is the extractor output in stream order; it is not mutated. The
// returned records carry dense 1-based sequence identifiers in stream order.
// The only fatal condition is an invalid policy; every per-row problem is
// recovered or surfaced through Stats.
func Run(rows []row.Raw, pol Policy) ([]records.Logical, Stats, error) {
	pol = pol.normalized()
	if err := pol.Layout.Validate(); err != nil {
		return nil, Stats{}, &StageError{Stage: "policy", Row: -1, Err: err}
	}

	st := newStats(len(rows))

	norm := normalizeRows(rows, pol, &st)
	kept := filterHeaders(norm, pol, &st)
	aligned := realign(kept, pol, &st)
	// aligned is the pre-merge snapshot the context resolver scans.
	cands := resolveContinuations(aligned, pol, &st)
	cleaned := NormalizeFields(cands, pol)
	out := validate(cleaned, pol, &st)

	st.RowsOut = len(out)

	metrics.RecordRows("reconstruct", "in", int64(st.RowsIn))
	metrics.RecordRows("reconstruct", "out", int64(st.RowsOut))
	metrics.RecordRows("reconstruct", "headers_removed", int64(st.HeadersRemoved))
	metrics.RecordRows("reconstruct", "merged", int64(st.RealignMerges+st.MergesTotal()))
	metrics.RecordRows("reconstruct", "dropped", int64(st.DroppedTotal()))

	log.Printf("reconstruct: in=%d out=%d headers=%d realign=%d merges=%d ctx=%d/%d dropped=%d",
		st.RowsIn, st.RowsOut, st.HeadersRemoved, st.RealignMerges, st.MergesTotal(),
		st.ContextHits, st.ContextHits+st.ContextMisses, st.DroppedTotal())

	return out, st, nil
}

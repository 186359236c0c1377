package reconstruct

import (
	"strings"

	"tablemend/internal/layout"
	"tablemend/internal/row"
)

// resolveContinuations is stage 4: a forward pass over the realigned stream
// that folds continuation fragments into their owning rows. It carries one
// piece of state, the entity-name context: the most recently observed full,
// unqualified entity name. Fragments are consumed by at most one merge and
// never reach the output standalone; what cannot be resolved is counted and
// dropped, never guessed. Ambiguous rows are never merged here; they pass
// through untouched and the validator drops them under a countable reason.
//
// `in` doubles as the pre-merge snapshot the context resolver scans when a
// fragment has no resolvable neighbor.
func resolveContinuations(in []row.Raw, pol Policy, st *Stats) []row.Raw {
	cl := pol.classifier()
	var out []row.Raw
	context := "" // entity-name context, scoped to this run

	for i := 0; i < len(in); i++ {
		r := in[i]
		switch cl.Classify(r) {
		case row.Complete:
			emit, drop := resolveComplete(r, i, in, &out, &context, cl, pol, st)
			if drop != "" {
				st.Dropped[drop]++
				continue
			}
			out = append(out, emit)

		case row.Continuation:
			switch cl.Fragment(r) {
			case row.LabelPrefix:
				mergeLabelPrefix(r, &out, &context, pol, st)
			case row.SuffixTag:
				mergeSuffixTag(r, i, in, &context, cl, pol, st)
			case row.CorruptedEnum:
				if !mergeEnumTail(r, nil, &out, pol, st) {
					st.ContextMisses++
					st.Dropped[DropUnresolvedFragment]++
				}
			}

		default: // row.Ambiguous
			out = append(out, r)
		}
	}
	return out
}

// resolveComplete finishes a row that carries a valid sequence number. The
// entity cell may still need repair: it can be empty, a stray fragment, a
// displaced qualifier, or the severed tail of an enumeration may sit in the
// category cell. Returns the row to emit, or a non-empty drop reason.
func resolveComplete(r row.Raw, i int, pre []row.Raw, out *[]row.Raw, context *string,
	cl row.Classifier, pol Policy, st *Stats) (row.Raw, string) {

	r = r.Clone()
	entity := strings.TrimSpace(r.Cell(layout.EntityCol))
	category := strings.TrimSpace(r.Cell(layout.CategoryCol))

	// Enumeration tail carried on a keyed row (the usual shape: the
	// incomplete head also has its own, now obsolete, sequence number).
	if entity == "" && row.CorruptedEnumTail(category) {
		if mergeEnumTail(r, &r, out, pol, st) {
			// The merge may inherit the head row's entity cell.
			entity = strings.TrimSpace(r.Cell(layout.EntityCol))
		}
	}

	switch {
	case pol.NameOverrides[entity] != "":
		r.Cells[layout.EntityCol] = pol.NameOverrides[entity]
		*context = pol.NameOverrides[entity]
		st.OverridesApplied++

	case cl.LongUnqualified(entity):
		*context = entity

	case cl.IsQualifier(entity):
		// Displaced qualifier the realigner had no label row for.
		if *context != "" {
			full := joinQualifier(*context, entity)
			r.Cells[layout.EntityCol] = full
			*context = full
		} else if name, ok := lookBack(pre, i, cl, pol); ok {
			st.ContextHits++
			full := joinQualifier(name, entity)
			r.Cells[layout.EntityCol] = full
			*context = full
		} else {
			st.ContextMisses++
			return row.Raw{}, DropUnresolvedQual
		}

	case entity == "":
		if *context != "" {
			r.Cells[layout.EntityCol] = *context
		} else if name, ok := lookBack(pre, i, cl, pol); ok {
			st.ContextHits++
			r.Cells[layout.EntityCol] = name
			*context = name
		}
		// Still empty: the validator applies the retention policy.

	default:
		// Short stray fragment, e.g. "College" or "Sciences".
		if *context != "" {
			full := joinQualifier(*context, entity)
			r.Cells[layout.EntityCol] = full
			*context = full
		} else if name, ok := lookBack(pre, i, cl, pol); ok {
			st.ContextHits++
			full := joinQualifier(name, entity)
			r.Cells[layout.EntityCol] = full
			*context = full
		}
		// Unresolvable fragments stay as-is; they are real keyed rows.
	}
	return r, ""
}

// mergeLabelPrefix folds a name fragment into the entity-name context. When
// the most recently emitted row was the context source and its name visibly
// breaks off mid-phrase, the repaired name is written back into that row;
// either way the following complete rows inherit the merged context.
func mergeLabelPrefix(r row.Raw, out *[]row.Raw, context *string, pol Policy, st *Stats) {
	frag := strings.TrimSpace(r.Cell(layout.EntityCol))
	prev := *context
	var merged string
	switch {
	case prev == "":
		merged = frag
	case row.NoSpaceJoin(prev, frag):
		merged = prev + frag
	default:
		merged = prev + " " + frag
	}

	if prev != "" && trailingIncomplete(prev) {
		// The context source is the most recently emitted keyed row; ambiguous
		// pass-through rows in between never carry the context name.
		for j := len(*out) - 1; j >= 0; j-- {
			if _, keyed := (*out)[j].Seq(); !keyed {
				continue
			}
			if strings.TrimSpace((*out)[j].Cell(layout.EntityCol)) == prev {
				(*out)[j].Cells[layout.EntityCol] = merged
			}
			break
		}
	}
	*context = merged
	st.ContinuationMerges[row.LabelPrefix.String()]++
}

// mergeSuffixTag resolves a bare qualifier row. Its owner carries the
// sequence number on a following row, so resolution happens through the
// context: either the live context value or, failing that, a bounded
// backward scan of the pre-merge stream. Unresolvable tags are dropped and
// counted, never attached to a guessed record.
func mergeSuffixTag(r row.Raw, i int, pre []row.Raw, context *string,
	cl row.Classifier, pol Policy, st *Stats) {

	q := strings.TrimSpace(r.Cell(layout.EntityCol))
	if *context != "" {
		*context = joinQualifier(*context, q)
		st.ContinuationMerges[row.SuffixTag.String()]++
		return
	}
	if name, ok := lookBack(pre, i, cl, pol); ok {
		st.ContextHits++
		*context = joinQualifier(name, q)
		st.ContinuationMerges[row.SuffixTag.String()]++
		return
	}
	st.ContextMisses++
	st.Dropped[DropUnresolvedFragment]++
}

// mergeEnumTail repairs a truncated alternative list. It scans the last
// Policy.EnumWindow emitted rows for an incomplete-enumeration head; on a
// match the head's text is prepended to the tail in the *later* row and the
// head row is removed.
//
// When target is non-nil the tail rides on a keyed row and the merge lands
// there; otherwise (a bare continuation fragment) the merge would need a
// target row, and without a head in the window there is nothing safe to
// attach to, so the caller drops the fragment. Returns whether a merge
// happened.
func mergeEnumTail(r row.Raw, target *row.Raw, out *[]row.Raw, pol Policy, st *Stats) bool {
	tail := strings.TrimSpace(r.Cell(layout.CategoryCol))

	// The window counts keyed candidates only; ambiguous pass-through rows
	// waiting for the validator do not shrink it.
	seen := 0
	for j := len(*out) - 1; j >= 0 && seen < pol.EnumWindow; j-- {
		head := (*out)[j]
		if _, keyed := head.Seq(); !keyed {
			continue
		}
		seen++
		headCat := strings.TrimSpace(head.Cell(layout.CategoryCol))
		if !row.IncompleteEnum(headCat) {
			continue
		}
		var full string
		if row.NoSpaceJoin(headCat, tail) {
			full = headCat + tail
		} else {
			full = headCat + " " + tail
		}

		if target == nil {
			// Bare fragment: the head row itself becomes the merge target and
			// keeps its position; nothing is removed.
			(*out)[j].Cells[layout.CategoryCol] = full
			st.ContinuationMerges[row.CorruptedEnum.String()]++
			return true
		}

		target.Cells[layout.CategoryCol] = full
		if strings.TrimSpace(target.Cell(layout.EntityCol)) == "" {
			target.Cells[layout.EntityCol] = head.Cell(layout.EntityCol)
		}
		*out = append((*out)[:j], (*out)[j+1:]...)
		st.ContinuationMerges[row.CorruptedEnum.String()]++
		return true
	}
	return false
}

// trailingIncomplete reports whether a name visibly breaks off mid-phrase.
func trailingIncomplete(s string) bool {
	s = strings.TrimRight(s, " ")
	if s == "" {
		return false
	}
	switch s[len(s)-1] {
	case '(', '+', '/', '-':
		return true
	}
	low := strings.ToLower(s)
	return strings.HasSuffix(low, " and") || strings.HasSuffix(low, " of")
}

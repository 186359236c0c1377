package reconstruct

import (
	"reflect"
	"testing"

	"tablemend/internal/row"
)

func TestNormalizeRows_ShapeCoercion(t *testing.T) {
	pol := DefaultPolicy(testLayout) // width 7
	st := newStats(4)

	in := []row.Raw{
		{Cells: []string{"  ", "", "   "}, Pos: 0},                                         // blank
		{Cells: []string{" 1 ", " Alpha College ", "B.A."}, Pos: 1},                        // short
		{Cells: []string{"2", "Beta", "B.Sc.", "1", "2", "3", "4", "extra", "x"}, Pos: 2},  // long
		{Cells: []string{"3", "Gamma", "B.Com.", "0", "0", "0", "0"}, Pos: 3},              // exact
	}
	out := normalizeRows(in, pol, &st)

	if len(out) != 3 {
		t.Fatalf("rows=%d; want 3", len(out))
	}
	if st.BlankDropped != 1 || st.ShortPadded != 1 || st.LongTruncated != 1 {
		t.Fatalf("blank=%d short=%d long=%d; want 1/1/1", st.BlankDropped, st.ShortPadded, st.LongTruncated)
	}
	for _, r := range out {
		if len(r.Cells) != pol.Layout.Width() {
			t.Fatalf("row %d width=%d; want %d", r.Pos, len(r.Cells), pol.Layout.Width())
		}
	}
	if out[0].Cells[0] != "1" || out[0].Cells[1] != "Alpha College" {
		t.Fatalf("cells not trimmed: %v", out[0].Cells)
	}
	// Stream positions survive shape coercion; the context resolver needs them.
	if out[0].Pos != 1 || out[2].Pos != 3 {
		t.Fatalf("positions=%d,%d; want 1,3", out[0].Pos, out[2].Pos)
	}
}

func TestNormalizeRows_CountsDuplicates(t *testing.T) {
	pol := DefaultPolicy(testLayout)
	st := newStats(3)
	in := []row.Raw{
		{Cells: []string{"1", "Alpha College", "B.A.", "1", "0", "0", "0"}, Pos: 0},
		{Cells: []string{"1", "Alpha College", "B.A.", "1", "0", "0", "0"}, Pos: 1},
		{Cells: []string{"2", "Beta College", "B.A.", "1", "0", "0", "0"}, Pos: 2},
	}
	out := normalizeRows(in, pol, &st)
	if len(out) != 3 {
		t.Fatalf("duplicates must be kept: rows=%d; want 3", len(out))
	}
	if st.DuplicateRows != 1 {
		t.Fatalf("duplicate_rows=%d; want 1", st.DuplicateRows)
	}
}

func TestFilterHeaders_Threshold(t *testing.T) {
	pol := DefaultPolicy(testLayout)
	st := newStats(3)
	in := []row.Raw{
		{Cells: []string{"s.no.", "name of college", "name of program", "", "", "", ""}},
		{Cells: []string{"UR", "", "", "", "", "", ""}}, // one match only
		{Cells: []string{"1", "Alpha College", "B.A.", "1", "0", "0", "0"}},
	}
	out := filterHeaders(in, pol, &st)
	if len(out) != 2 || st.HeadersRemoved != 1 {
		t.Fatalf("rows=%d removed=%d; want 2/1", len(out), st.HeadersRemoved)
	}
}

func TestRealign_StrictQualifierMatch(t *testing.T) {
	pol := DefaultPolicy(testLayout)

	label := row.Raw{Cells: []string{"", "Example College", "", "", "", "", ""}, Pos: 0}
	strict := row.Raw{Cells: []string{"1", "(Evening)", "B.A.", "10", "2", "0", "0"}, Pos: 1}
	loose := row.Raw{Cells: []string{"1", "(Evening) shift", "B.A.", "10", "2", "0", "0"}, Pos: 1}

	st := newStats(2)
	out := realign([]row.Raw{label, strict}, pol, &st)
	if len(out) != 1 || st.RealignMerges != 1 {
		t.Fatalf("strict: rows=%d merges=%d; want 1/1", len(out), st.RealignMerges)
	}
	if got := out[0].Cells[1]; got != "Example College (Evening)" {
		t.Fatalf("strict: entity=%q", got)
	}

	st = newStats(2)
	out = realign([]row.Raw{label, loose}, pol, &st)
	if len(out) != 2 || st.RealignMerges != 0 {
		t.Fatalf("loose token must not merge: rows=%d merges=%d", len(out), st.RealignMerges)
	}
}

func TestRealign_DeduplicatesTrailingQualifier(t *testing.T) {
	pol := DefaultPolicy(testLayout)
	st := newStats(2)
	in := []row.Raw{
		{Cells: []string{"", "Example College (W)", "", "", "", "", ""}},
		{Cells: []string{"1", "(W)", "B.A.", "1", "0", "0", "0"}},
	}
	out := realign(in, pol, &st)
	if len(out) != 1 {
		t.Fatalf("rows=%d; want 1", len(out))
	}
	if got := out[0].Cells[1]; got != "Example College (W)" {
		t.Fatalf("entity=%q; want no doubled qualifier", got)
	}
}

func TestLookBack_WindowBounded(t *testing.T) {
	pol := DefaultPolicy(testLayout)
	pol.ContextWindow = 2
	cl := pol.classifier()

	pre := []row.Raw{
		{Cells: []string{"1", "Faraway College of Arts", "B.A.", "1", "0", "0", "0"}},
		{Cells: []string{"", "", "filler one", "", "", "", ""}},
		{Cells: []string{"", "", "filler two", "", "", "", ""}},
		{Cells: []string{"", "(W)", "", "", "", "", ""}},
	}
	if name, ok := lookBack(pre, 3, cl, pol); ok {
		t.Fatalf("window=2 must not reach the name, got %q", name)
	}

	pol.ContextWindow = 10
	name, ok := lookBack(pre, 3, cl, pol)
	if !ok || name != "Faraway College of Arts" {
		t.Fatalf("lookBack=%q,%v; want name within widened window", name, ok)
	}
}

func TestLookBack_AcceptsLabelOnlyRow(t *testing.T) {
	pol := DefaultPolicy(testLayout)
	cl := pol.classifier()
	pre := []row.Raw{
		{Cells: []string{"", "Parked College Label", "", "", "", "", ""}},
		{Cells: []string{"", "(Evening)", "", "", "", "", ""}},
	}
	name, ok := lookBack(pre, 1, cl, pol)
	if !ok || name != "Parked College Label" {
		t.Fatalf("lookBack=%q,%v; want label-only text", name, ok)
	}
}

func TestValidate_EmptyRecordDroppedRegardless(t *testing.T) {
	pol := DefaultPolicy(testLayout)
	pol.RequireEntityName = false
	st := newStats(1)
	in := []row.Raw{
		{Cells: []string{"7", "", "", "0", "0", "0", "0"}},
	}
	out := validate(in, pol, &st)
	if len(out) != 0 || st.Dropped[DropEmptyRecord] != 1 {
		t.Fatalf("out=%d dropped=%v; want empty_record=1", len(out), st.Dropped)
	}
}

func TestResolveContinuations_AmbiguousPassesThrough(t *testing.T) {
	pol := DefaultPolicy(testLayout)
	st := newStats(1)
	in := []row.Raw{
		{Cells: []string{"", "", "", "9", "", "", ""}}, // numbers without a key
	}
	out := resolveContinuations(in, pol, &st)
	if len(out) != 1 {
		t.Fatalf("rows=%d; want the ambiguous row passed through", len(out))
	}
	if st.DroppedTotal() != 0 {
		t.Fatalf("dropped=%v; the resolver must not drop ambiguous rows", st.Dropped)
	}
}

func TestValidate_DropsUnkeyedRowsAsAmbiguous(t *testing.T) {
	pol := DefaultPolicy(testLayout)
	st := newStats(2)
	in := []row.Raw{
		{Cells: []string{"", "", "", "9", "0", "0", "0"}},
		{Cells: []string{"1", "Alpha College of Arts", "B.A.", "5", "1", "1", "1"}},
	}
	out := validate(in, pol, &st)
	if len(out) != 1 || st.Dropped[DropAmbiguous] != 1 {
		t.Fatalf("out=%d dropped=%v; want ambiguous=1", len(out), st.Dropped)
	}
	if out[0].Seq != 1 || out[0].Entity != "Alpha College of Arts" {
		t.Fatalf("record=%+v; want the keyed row ranked 1", out[0])
	}
}

func TestStatsTotals(t *testing.T) {
	st := newStats(0)
	st.ContinuationMerges["label_prefix"] = 2
	st.ContinuationMerges["suffix_tag"] = 1
	st.Dropped["ambiguous"] = 3
	st.Dropped["empty_entity"] = 1
	if st.MergesTotal() != 3 || st.DroppedTotal() != 4 {
		t.Fatalf("totals=%d/%d; want 3/4", st.MergesTotal(), st.DroppedTotal())
	}
	if !reflect.DeepEqual(newStats(5).ContinuationMerges, map[string]int{}) {
		t.Fatalf("fresh stats must carry initialized maps")
	}
}

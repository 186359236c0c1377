package row

import (
	"testing"

	"tablemend/internal/layout"
)

var testLayout = layout.Layout{
	SeqTitle:      "S.NO.",
	EntityTitle:   "NAME OF THE COLLEGE",
	CategoryTitle: "NAME OF THE PROGRAM",
	NumericFields: []string{"UR", "OBC", "SC", "ST"},
}

func TestSeq(t *testing.T) {
	cases := []struct {
		cell string
		want int
		ok   bool
	}{
		{"7", 7, true},
		{" 12 ", 12, true},
		{"", 0, false},
		{"0", 0, false},
		{"-3", 0, false},
		{"7a", 0, false},
		{"S.NO.", 0, false},
	}
	for _, tc := range cases {
		r := Raw{Cells: []string{tc.cell, "x", "y", "", "", "", ""}}
		n, ok := r.Seq()
		if n != tc.want || ok != tc.ok {
			t.Fatalf("Seq(%q)=(%d,%v); want (%d,%v)", tc.cell, n, ok, tc.want, tc.ok)
		}
	}
}

func TestFirstDigitRun(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"42", 42},
		{" 42 seats", 42},
		{"approx. 17/3", 17},
		{"", 0},
		{"none", 0},
		{"0", 0},
	}
	for _, tc := range cases {
		if got := FirstDigitRun(tc.in); got != tc.want {
			t.Fatalf("FirstDigitRun(%q)=%d; want %d", tc.in, got, tc.want)
		}
	}
}

func TestFingerprintStableAcrossPos(t *testing.T) {
	a := Raw{Cells: []string{"1", "X College", "B.A.", "5"}, Pos: 3}
	b := Raw{Cells: []string{"1", "X College", "B.A.", "5"}, Pos: 99}
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("fingerprint should ignore stream position")
	}
	c := Raw{Cells: []string{"1", "X College", "B.A", ".5"}, Pos: 3}
	if a.Fingerprint() == c.Fingerprint() {
		t.Fatalf("cell-boundary shuffle must change the fingerprint")
	}
}

func TestClassify(t *testing.T) {
	cl := Classifier{Layout: testLayout, Qualifiers: []string{"(Evening)", "(W)"}, MinEntityLen: 10}

	cases := []struct {
		name  string
		cells []string
		want  State
	}{
		{"complete", []string{"1", "Example College", "B.A.", "10", "2", "3", "4"}, Complete},
		{"complete zero numerics", []string{"2", "Example College", "B.A.", "", "", "", ""}, Complete},
		{"label prefix", []string{"", "Example College", "", "", "", "", ""}, Continuation},
		{"enum tail", []string{"", "", "W))", "", "", "", ""}, Continuation},
		{"both text cells", []string{"", "Example College", "B.A.", "", "", "", ""}, Ambiguous},
		{"numerics without seq", []string{"", "", "", "10", "", "", ""}, Ambiguous},
		{"empty", []string{"", "", "", "", "", "", ""}, Ambiguous},
	}
	for _, tc := range cases {
		if got := cl.Classify(Raw{Cells: tc.cells}); got != tc.want {
			t.Fatalf("%s: state=%v; want %v", tc.name, got, tc.want)
		}
	}
}

func TestFragmentSubtype(t *testing.T) {
	cl := Classifier{Layout: testLayout, Qualifiers: []string{"(Evening)", "(W)"}, MinEntityLen: 10}

	cases := []struct {
		cells []string
		want  FragmentClass
	}{
		{[]string{"", "Example College", "", "", "", "", ""}, LabelPrefix},
		{[]string{"", "(Evening)", "", "", "", "", ""}, SuffixTag},
		{[]string{"", "", "Science/Mathematics))", "", "", "", ""}, CorruptedEnum},
	}
	for _, tc := range cases {
		r := Raw{Cells: tc.cells}
		if got := cl.Fragment(r); got != tc.want {
			t.Fatalf("Fragment(%v)=%v; want %v", tc.cells, got, tc.want)
		}
	}
}

func TestEnumPredicates(t *testing.T) {
	if !IncompleteEnum("B.A. (English/Hindi/History/Pol.") {
		t.Fatalf("open-paren excess should read as incomplete")
	}
	if !IncompleteEnum("Any One Out Of These (") {
		t.Fatalf("trailing open paren should read as incomplete")
	}
	if IncompleteEnum("B.A. (Hons) English") {
		t.Fatalf("balanced text is not incomplete")
	}
	if !CorruptedEnumTail("Science/Economics/Mathematics))") {
		t.Fatalf("closing-paren excess should read as a severed tail")
	}
	if CorruptedEnumTail("B.Com (Hons)") {
		t.Fatalf("balanced text is not a severed tail")
	}
}

func TestLongUnqualified(t *testing.T) {
	cl := Classifier{Layout: testLayout, Qualifiers: []string{"(Evening)", "(W)"}, MinEntityLen: 10}
	if !cl.LongUnqualified("Shri Ram College of Commerce") {
		t.Fatalf("full name should qualify")
	}
	if cl.LongUnqualified("(Evening)") || cl.LongUnqualified("College") {
		t.Fatalf("qualifier literals and short fragments must not qualify")
	}
	if cl.LongUnqualified("(Something longer here)") {
		t.Fatalf("parentheticals never update context")
	}
}

func TestNoSpaceJoin(t *testing.T) {
	if !NoSpaceJoin("Department of (", "Romance") {
		t.Fatalf("open paren tail joins without a space")
	}
	if !NoSpaceJoin("B.A. (X/Y/Z", ")") {
		t.Fatalf("closing fragment joins without a space")
	}
	if NoSpaceJoin("Delhi College of Arts and", "Commerce") {
		t.Fatalf("word boundaries join with a space")
	}
}

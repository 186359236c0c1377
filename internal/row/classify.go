package row

import (
	"strings"

	"tablemend/internal/layout"
)

// State is the coarse classification of a row in stream order.
type State int

const (
	// Complete rows carry a valid sequence number and stand on their own.
	Complete State = iota
	// Continuation rows carry partial text belonging to a neighboring row:
	// no sequence number, empty numeric cells, and exactly one of the
	// entity/category cells non-empty.
	Continuation
	// Ambiguous rows match neither signature. They are never merged; the
	// validator drops them under an explicit, countable reason.
	Ambiguous
)

func (s State) String() string {
	switch s {
	case Complete:
		return "complete"
	case Continuation:
		return "continuation"
	default:
		return "ambiguous"
	}
}

// FragmentClass subtypes a Continuation row.
type FragmentClass int

const (
	// LabelPrefix fragments carry entity-name text that belongs at the front
	// of a neighboring record's name.
	LabelPrefix FragmentClass = iota
	// SuffixTag fragments hold only a short parenthetical qualifier, e.g.
	// "(Evening)", whose owner row follows later in the stream.
	SuffixTag
	// CorruptedEnum fragments hold the severed tail of an alternative list
	// in the category cell, e.g. "W))" continuing "B.A. (X/Y/Z".
	CorruptedEnum
)

func (c FragmentClass) String() string {
	switch c {
	case LabelPrefix:
		return "label_prefix"
	case SuffixTag:
		return "suffix_tag"
	default:
		return "corrupted_enum"
	}
}

// Classifier bundles the tunables the predicates depend on. Qualifiers are
// exact literals; MinEntityLen separates full names from stray fragments.
type Classifier struct {
	Layout       layout.Layout
	Qualifiers   []string // e.g. "(Evening)", "(W)"
	MinEntityLen int      // names at or below this length never update context
}

// IsQualifier reports whether s is exactly one of the configured qualifier
// literals. Matching is strict: "(Evening) " trims to a match, "(Evening"
// does not.
func (c Classifier) IsQualifier(s string) bool {
	s = strings.TrimSpace(s)
	for _, q := range c.Qualifiers {
		if s == q {
			return true
		}
	}
	return false
}

// LongUnqualified reports whether name is a full, unambiguous entity name:
// longer than MinEntityLen, not a qualifier literal, and not itself a
// parenthetical.
func (c Classifier) LongUnqualified(name string) bool {
	name = strings.TrimSpace(name)
	return len(name) > c.MinEntityLen && !c.IsQualifier(name) && !strings.HasPrefix(name, "(")
}

// Classify assigns the coarse state of r.
func (c Classifier) Classify(r Raw) State {
	if _, ok := r.Seq(); ok {
		return Complete
	}
	if !r.NumericEmpty(c.Layout) {
		return Ambiguous
	}
	entity := strings.TrimSpace(r.Cell(layout.EntityCol))
	category := strings.TrimSpace(r.Cell(layout.CategoryCol))
	if (entity != "") != (category != "") {
		return Continuation
	}
	return Ambiguous
}

// Fragment subtypes a row already classified as Continuation.
func (c Classifier) Fragment(r Raw) FragmentClass {
	entity := strings.TrimSpace(r.Cell(layout.EntityCol))
	if entity != "" {
		if c.IsQualifier(entity) {
			return SuffixTag
		}
		return LabelPrefix
	}
	return CorruptedEnum
}

// IncompleteEnum reports whether s looks like the head of a truncated
// alternative list: unbalanced open parens or a trailing alternation mark.
func IncompleteEnum(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if strings.HasSuffix(s, "/") || strings.HasSuffix(s, "(") {
		return true
	}
	return strings.Count(s, "(") > strings.Count(s, ")")
}

// CorruptedEnumTail reports whether s looks like the severed tail of an
// alternative list: more closing parens than opening ones.
func CorruptedEnumTail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return strings.Count(s, ")") > strings.Count(s, "(")
}

// NoSpaceJoin reports whether fragment should be glued to base without a
// separator, e.g. when base ends mid-token on an open paren, slash, or
// hyphen.
func NoSpaceJoin(base, fragment string) bool {
	base = strings.TrimRight(base, " ")
	if base == "" {
		return true
	}
	switch base[len(base)-1] {
	case '(', '/', '-':
		return true
	}
	return strings.HasPrefix(strings.TrimLeft(fragment, " "), ")")
}

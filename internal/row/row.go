// Package row defines the raw row type emitted by the extraction collaborator
// and the shared classification predicates used by the reconstruction stages.
//
// A Raw row is immutable once produced: stages that change cell content build
// new rows instead of mutating extractor output in place.
package row

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/zeebo/xxh3"

	"tablemend/internal/layout"
)

// Raw is one physical row from the extracted table: a fixed-length list of
// text cells plus the row's original position in the input stream (0-based).
type Raw struct {
	Cells []string
	Pos   int
}

// Clone returns a deep copy of r. Stages use it to derive modified rows
// without touching extractor output.
func (r Raw) Clone() Raw {
	c := Raw{Cells: make([]string, len(r.Cells)), Pos: r.Pos}
	copy(c.Cells, r.Cells)
	return c
}

// Cell returns the i-th cell or "" when the row is shorter than i+1.
func (r Raw) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}

// Seq returns the parsed sequence number and whether the sequence cell holds
// a valid positive integer.
func (r Raw) Seq() (int, bool) {
	s := strings.TrimSpace(r.Cell(layout.SeqCol))
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// NumericEmpty reports whether every numeric cell of r is empty under l.
func (r Raw) NumericEmpty(l layout.Layout) bool {
	for i := layout.NumericStart; i < l.Width(); i++ {
		if strings.TrimSpace(r.Cell(i)) != "" {
			return false
		}
	}
	return true
}

// Blank reports whether every cell is empty or whitespace.
func (r Raw) Blank() bool {
	for _, c := range r.Cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Fingerprint hashes the cell contents. Two rows with identical cells collide
// regardless of stream position, which is exactly what duplicate accounting
// wants.
func (r Raw) Fingerprint() uint64 {
	var b strings.Builder
	for i, c := range r.Cells {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		b.WriteString(c)
	}
	return xxh3.HashString(b.String())
}

// FirstDigitRun extracts the first maximal run of digits in s as a
// non-negative integer. Returns 0 when s holds no digits or the run
// overflows. This tolerates stray unit markers around numbers.
func FirstDigitRun(s string) int {
	start := -1
	for i, r := range s {
		if unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			n, err := strconv.Atoi(s[start:i])
			if err != nil {
				return 0
			}
			return n
		}
	}
	if start >= 0 {
		n, err := strconv.Atoi(s[start:])
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

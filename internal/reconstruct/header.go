package reconstruct

import (
	"strings"

	"tablemend/internal/row"
)

// filterHeaders is stage 2: remove rows that restate the column headers
// mid-stream. A row is a header restatement when at least
// Policy.HeaderThreshold of its cells case-insensitively equal a canonical
// column title. The threshold sits above the number of header-like tokens
// that plausibly co-occur in real entity or category text, so genuine data
// rows survive.
func filterHeaders(in []row.Raw, pol Policy, st *Stats) []row.Raw {
	titles := make(map[string]struct{}, pol.Layout.Width())
	for _, t := range pol.Layout.HeaderTitles() {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			titles[t] = struct{}{}
		}
	}

	out := make([]row.Raw, 0, len(in))
	for _, r := range in {
		matches := 0
		for _, c := range r.Cells {
			c = strings.ToUpper(strings.TrimSpace(c))
			if c == "" {
				continue
			}
			if _, ok := titles[c]; ok {
				matches++
			}
		}
		if matches >= pol.HeaderThreshold {
			st.HeadersRemoved++
			continue
		}
		out = append(out, r)
	}
	return out
}

// Package extract reads raw cell rows out of extractor dumps. It performs no
// cleanup beyond transport concerns (delimiters, quoting, BOM); every
// content-level repair belongs to the reconstruction engine, which needs the
// noise intact to count it.
package extract

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"tablemend/internal/config"
	"tablemend/internal/row"
)

const utf8BOM = "\uFEFF"

// ReadCSV reads every row from r into the raw stream, preserving stream
// positions. Ragged rows are kept as-is; the normalizer coerces shape later.
//
// Recognized options:
//   - comma (string; first rune used; default ',')
//   - trim_space (bool; default false; the normalizer trims and counts)
//   - lazy_quotes (bool; default true, extractor dumps quote carelessly)
//   - skip_rows (int; leading rows to discard, e.g. a title banner)
func ReadCSV(ctx context.Context, r io.Reader, opt config.Options) ([]row.Raw, error) {
	cr := csv.NewReader(r)
	cr.Comma = opt.Rune("comma", ',')
	cr.LazyQuotes = opt.Bool("lazy_quotes", true)
	cr.FieldsPerRecord = -1 // ragged input is the whole point
	cr.ReuseRecord = true

	trim := opt.Bool("trim_space", false)
	skip := opt.Int("skip_rows", 0)

	var out []row.Raw
	pos := 0
	for line := 0; ; line++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("extract: csv line %d: %w", line+1, err)
		}
		if line < skip {
			continue
		}

		cells := make([]string, len(rec))
		copy(cells, rec)
		if len(cells) > 0 {
			cells[0] = strings.TrimPrefix(cells[0], utf8BOM)
		}
		if trim {
			for i := range cells {
				cells[i] = strings.TrimSpace(cells[i])
			}
		}
		out = append(out, row.Raw{Cells: cells, Pos: pos})
		pos++
	}
}

// ReadCSVFile is ReadCSV over a local file.
func ReadCSVFile(ctx context.Context, path string, opt config.Options) ([]row.Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("extract: open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(ctx, f, opt)
}

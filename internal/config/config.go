// Package config defines the canonical, JSON-serializable configuration model
// for reconstruction jobs. It is intentionally small and explicit so that job
// files can be loaded from disk and passed through the program without
// additional glue code.
//
// Design goals:
//
//  1. Stability: Changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: Field names in Go mirror the JSON structure used in job files
//     under configs/jobs/*.json.
//  3. Minimalism: Decoding is performed by the standard library, with a light
//     Options helper for typed access to free-form blocks.
//
// Example (trimmed):
//
//	{
//	  "job":     "du-admissions-2016",
//	  "source":  { "kind": "file", "file": { "path": "data/seats.csv" } },
//	  "reader":  { "kind": "csv", "options": { "comma": ",", "skip_rows": 0 } },
//	  "layout":  { "seq_title": "S.NO.", "entity_title": "NAME OF COLLEGE", ... },
//	  "policy":  { "header_threshold": 2, "casing": "title" },
//	  "storage": { "kind": "sqlite", "db": { "dsn": "out.db", "table": "records" } }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"tablemend/internal/layout"
)

// Job is the top-level object decoded from a job file.
type Job struct {
	// Job names the run; it labels metrics and log lines.
	Job string `json:"job"`

	// Source describes where input data comes from (e.g., local file).
	Source Source `json:"source"`

	// Reader configures how raw bytes are turned into row streams (e.g., CSV).
	Reader Reader `json:"reader"`

	// Layout fixes the column geometry of the table being reconstructed.
	Layout layout.Layout `json:"layout"`

	// Policy is a free-form bag of reconstruction tunables; see
	// reconstruct.PolicyFromOptions for the recognized keys.
	Policy Options `json:"policy"`

	// Storage describes where reconstructed records are written. Optional;
	// an empty kind disables persistence.
	Storage Storage `json:"storage"`

	// Export optionally writes a workbook with the records and run summary.
	Export Export `json:"export"`
}

// Source identifies the data source. Additional kinds can be added over time.
type Source struct {
	// Kind selects the source implementation. Current value: "file".
	Kind string `json:"kind"`

	// File carries options for the "file" source kind.
	File SourceFile `json:"file"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is the local filesystem path to the input file.
	Path string `json:"path"`
}

// Reader selects how to parse the raw source into cell rows.
type Reader struct {
	// Kind selects the reader implementation. Current value: "csv".
	Kind string `json:"kind"`

	// Options is a free-form map interpreted by the reader implementation.
	// For CSV, recognized keys are:
	//   comma (string), skip_rows (int), trim_space (bool)
	Options Options `json:"options"`
}

// Storage selects the sink used to persist reconstructed records.
type Storage struct {
	// Kind selects the storage implementation: "sqlite" or "postgres".
	// Empty means no persistence.
	Kind string `json:"kind"`

	// DB configures the selected database sink.
	DB DBConfig `json:"db"`
}

// DBConfig configures a database sink.
type DBConfig struct {
	// DSN is the connection string: a file path for sqlite, a
	// postgresql:// URL for pgx/pgxpool.
	DSN string `json:"dsn"`

	// Table is the destination table name (schema-qualified for postgres).
	Table string `json:"table"`

	// AutoCreateTable creates the destination table when it does not exist.
	AutoCreateTable bool `json:"auto_create_table"`
}

// Export configures the optional workbook export.
type Export struct {
	// Kind selects the export implementation. Current value: "xlsx".
	// Empty means no export.
	Kind string `json:"kind"`

	// Path is the output file path.
	Path string `json:"path"`
}

// Load reads and decodes a job file.
func Load(path string) (Job, error) {
	var j Job
	b, err := os.ReadFile(path)
	if err != nil {
		return j, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, &j); err != nil {
		return j, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return j, nil
}

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without introducing third-party configuration libraries. It purposefully
// performs only minimal type coercion and returns provided defaults when a key
// is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers are decoded as
// float64 by encoding/json, so this method accepts float64 and casts to int.
// If the value is neither float64 nor int, def is returned.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. This is useful for single-character reader settings such
// as a CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored. Returns an empty map
// when the key is missing or the value is not an object.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// StringSlice returns a []string for key when the value is an array of strings
// (or an array of interface values containing strings). Returns nil when the
// key is missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// Any returns the raw value for key (which may itself be a nested
// map[string]any, []any, or primitive).
func (o Options) Any(key string) any {
	if v, ok := o[key]; ok {
		return v
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler so that an explicit null options
// object decodes to a non-nil, empty Options map. A field absent from the JSON
// never reaches UnmarshalJSON and stays nil; that is fine, every accessor
// treats a nil map as empty.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}

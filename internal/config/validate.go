// This file adds a lightweight linter/validator for Job values. It performs
// static checks over a decoded Job and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Job.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "layout.numeric_fields"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ValidateJob performs static validation / linting of a Job.
//
// It does not mutate the job. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
func ValidateJob(j Job) []Issue {
	var issues []Issue

	if strings.TrimSpace(j.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateSource(j.Source)...)
	issues = append(issues, validateReader(j.Reader)...)
	issues = append(issues, validateLayout(j)...)
	issues = append(issues, validateStorage(j.Storage)...)
	issues = append(issues, validateExport(j.Export)...)

	return issues
}

// validateSource validates Source configuration.
func validateSource(s Source) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  "source.kind must not be empty",
		})
		return issues
	}

	// Unknown kinds are warnings, for forward compatibility.
	known := map[string]struct{}{
		"file": {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unknown source kind %q; ensure a matching implementation exists", s.Kind),
		})
	}

	switch s.Kind {
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.file.path",
				Message:  "file source requires a non-empty path",
			})
		}
	}

	return issues
}

// validateReader validates reader configuration.
func validateReader(r Reader) []Issue {
	var issues []Issue

	if strings.TrimSpace(r.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "reader.kind",
			Message:  "reader.kind must not be empty",
		})
		return issues
	}

	known := map[string]struct{}{
		"csv": {},
	}
	if _, ok := known[r.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "reader.kind",
			Message:  fmt.Sprintf("unknown reader kind %q; ensure a matching implementation exists", r.Kind),
		})
	}

	switch r.Kind {
	case "csv":
		if n := r.Options.Int("skip_rows", 0); n < 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "reader.options.skip_rows",
				Message:  "skip_rows must not be negative",
			})
		}
	}

	return issues
}

// validateLayout checks the column geometry plus the policy keys that depend
// on it.
func validateLayout(j Job) []Issue {
	var issues []Issue

	if err := j.Layout.Validate(); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "layout",
			Message:  err.Error(),
		})
	}
	if n := j.Policy.Int("header_threshold", 2); n < 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "policy.header_threshold",
			Message:  "header_threshold must be at least 1",
		})
	}
	switch c := j.Policy.String("casing", "preserve"); c {
	case "preserve", "upper", "title":
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "policy.casing",
			Message:  fmt.Sprintf("unknown casing %q; falling back to preserve", c),
		})
	}

	return issues
}

// validateStorage validates storage configuration and DB settings. An empty
// kind means persistence is disabled and is not an error.
func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		return issues
	}

	known := map[string]struct{}{
		"postgres": {},
		"sqlite":   {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}

	db := s.DB
	if strings.TrimSpace(db.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.dsn",
			Message:  "storage.db.dsn must not be empty",
		})
	}
	if strings.TrimSpace(db.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.table",
			Message:  "storage.db.table must not be empty",
		})
	}

	return issues
}

// validateExport validates the optional workbook export block.
func validateExport(e Export) []Issue {
	var issues []Issue

	if strings.TrimSpace(e.Kind) == "" {
		return issues
	}
	if e.Kind != "xlsx" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "export.kind",
			Message:  fmt.Sprintf("unknown export kind %q; ensure a matching implementation exists", e.Kind),
		})
	}
	if strings.TrimSpace(e.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "export.path",
			Message:  "export requires a non-empty path",
		})
	}

	return issues
}

// Package metrics is a small, backend-agnostic facade for recording
// operational metrics from reconstruction runs.
//
// It exposes a narrow Backend interface (counters and histograms) behind a
// global, pluggable backend that defaults to a no-op implementation, so
// metric calls are always safe even when nothing is configured. The rest of
// the codebase depends only on this package; concrete metric systems stay
// isolated behind SetBackend.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it.
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordRun measures one pipeline run: latency plus success/failure.
func RecordRun(job string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "status": status}
	backend.IncCounter("tablemend_run_total", 1, lbls)
	backend.ObserveHistogram("tablemend_run_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for the given job and kind.
//
// Kinds mirror the run-statistics fields, e.g. "in", "out",
// "headers_removed", "merged", "dropped".
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("tablemend_rows_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

package ingest

import (
	"fmt"
	"time"
)

// RunStats tracks counts and errors from one run. Never persisted.
type RunStats struct {
	Sport string `json:"sport"`

	UnitsPlanned int `json:"units_planned"`
	UnitsVisited int `json:"units_visited"`
	UnitsFailed  int `json:"units_failed"`

	RecordsFetched    int `json:"records_fetched"`
	RecordsWritten    int `json:"records_written"`
	RecordsSkipped    int `json:"records_skipped"`
	SkippedExisting   int `json:"skipped_existing"`
	SkippedUnmappable int `json:"skipped_unmappable"`
	RecordsFailed     int `json:"records_failed"`

	DetailFetches  int `json:"detail_fetches"`
	DetailFailures int `json:"detail_failures"`

	Cancelled bool          `json:"cancelled"`
	Duration  time.Duration `json:"duration_ns"`
	Errors    []string      `json:"errors"`
}

// Add merges another RunStats into this one (multi-sport runs).
func (r *RunStats) Add(other RunStats) {
	r.UnitsPlanned += other.UnitsPlanned
	r.UnitsVisited += other.UnitsVisited
	r.UnitsFailed += other.UnitsFailed
	r.RecordsFetched += other.RecordsFetched
	r.RecordsWritten += other.RecordsWritten
	r.RecordsSkipped += other.RecordsSkipped
	r.SkippedExisting += other.SkippedExisting
	r.SkippedUnmappable += other.SkippedUnmappable
	r.RecordsFailed += other.RecordsFailed
	r.DetailFetches += other.DetailFetches
	r.DetailFailures += other.DetailFailures
	r.Cancelled = r.Cancelled || other.Cancelled
	r.Duration += other.Duration
	r.Errors = append(r.Errors, other.Errors...)
}

// AddErrorf records a formatted error message.
func (r *RunStats) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the run.
func (r *RunStats) Summary() string {
	s := fmt.Sprintf(
		"units=%d/%d units_failed=%d fetched=%d written=%d skipped=%d (existing=%d unmappable=%d) failed=%d details=%d detail_failures=%d errors=%d duration=%s",
		r.UnitsVisited, r.UnitsPlanned, r.UnitsFailed,
		r.RecordsFetched, r.RecordsWritten, r.RecordsSkipped,
		r.SkippedExisting, r.SkippedUnmappable, r.RecordsFailed,
		r.DetailFetches, r.DetailFailures, len(r.Errors),
		r.Duration.Round(time.Millisecond),
	)
	if r.Cancelled {
		s += " cancelled"
	}
	return s
}

// Package report accumulates per-run counters and renders the end-of-run
// summary.
package report

import (
	"fmt"
	"io"
	"time"
)

// maxListedErrors caps how many per-file errors the summary prints.
const maxListedErrors = 5

// FileError records one file that could not be processed.
type FileError struct {
	Name   string
	Reason string
}

// Stats is the result accumulator for a batch run. It is a plain value
// threaded through the run and returned at the end, so it can be inspected
// and tested without a live store.
type Stats struct {
	Inserted   int
	Duplicates int
	Failed     int
	TotalSeen  int
	Started    time.Time
	FileErrors []FileError
}

// NewStats returns an empty accumulator with the clock started.
func NewStats() Stats {
	return Stats{Started: time.Now()}
}

// RecordInserted counts one successful insert.
func (s *Stats) RecordInserted() {
	s.Inserted++
	s.TotalSeen++
}

// RecordDuplicate counts one insert rejected by the uniqueness constraint.
func (s *Stats) RecordDuplicate() {
	s.Duplicates++
	s.TotalSeen++
}

// RecordFailure counts one file that could not be processed.
func (s *Stats) RecordFailure(name string, err error) {
	s.Failed++
	s.TotalSeen++
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	s.FileErrors = append(s.FileErrors, FileError{Name: name, Reason: reason})
}

// Elapsed returns the wall-clock time since the run started.
func (s *Stats) Elapsed() time.Duration {
	return time.Since(s.Started)
}

// Throughput returns successfully inserted documents per second.
func (s *Stats) Throughput() float64 {
	secs := s.Elapsed().Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.Inserted) / secs
}

// WriteSummary renders the end-of-run summary. collectionCount is the live
// collection size cross-check; pass a negative value when it is unavailable.
// Rendering reads the accumulated counts but never modifies them.
func (s *Stats) WriteSummary(w io.Writer, collectionCount int64) {
	line := "============================================================"
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "PROCESSING SUMMARY")
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "Documents inserted:    %d\n", s.Inserted)
	fmt.Fprintf(w, "Duplicates skipped:    %d\n", s.Duplicates)
	fmt.Fprintf(w, "Errors:                %d\n", s.Failed)
	fmt.Fprintf(w, "Elapsed time:          %.2f seconds\n", s.Elapsed().Seconds())
	fmt.Fprintf(w, "Average throughput:    %.2f docs/second\n", s.Throughput())
	if collectionCount >= 0 {
		fmt.Fprintf(w, "Documents in collection: %d\n", collectionCount)
	}
	fmt.Fprintln(w, line)

	if len(s.FileErrors) == 0 {
		return
	}
	fmt.Fprintln(w, "\nFILES WITH ERRORS:")
	for i, fe := range s.FileErrors {
		if i == maxListedErrors {
			fmt.Fprintf(w, "  ... and %d more\n", len(s.FileErrors)-maxListedErrors)
			break
		}
		fmt.Fprintf(w, "  %s: %s\n", fe.Name, fe.Reason)
	}
}

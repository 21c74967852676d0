// Package pipeline runs the batch: enumerate the corpus, build a document per
// file, and attempt one insert each.
package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/ksuazo/corpusvec/internal/corpus"
	"github.com/ksuazo/corpusvec/internal/document"
	"github.com/ksuazo/corpusvec/internal/logger"
	"github.com/ksuazo/corpusvec/internal/report"
	"github.com/ksuazo/corpusvec/internal/store"
)

// Writer is the store surface the runner needs.
type Writer interface {
	Insert(ctx context.Context, doc *document.Document) (store.Outcome, error)
}

// Periodic pause so a large corpus does not hammer the store continuously.
const (
	throttleEvery = 50
	throttleDelay = 100 * time.Millisecond
)

// Runner processes every matching file in the corpus directory exactly once.
// Processing is sequential: one file is fully read, embedded, and inserted
// before the next begins.
type Runner struct {
	dir     string
	ext     string
	builder *document.Builder
	writer  Writer
	sleep   func(time.Duration)
}

// NewRunner creates a Runner over the given corpus directory.
func NewRunner(dir, ext string, builder *document.Builder, writer Writer) *Runner {
	return &Runner{
		dir:     dir,
		ext:     ext,
		builder: builder,
		writer:  writer,
		sleep:   time.Sleep,
	}
}

// Run executes the batch and returns the accumulated stats. A missing corpus
// directory is fatal and reported as an error before any processing. Every
// per-file failure is converted into a counted outcome and a log line; none
// of them stop the batch. Cancelling the context stops the batch between
// files: the stats accumulated so far are returned along with the context
// error, and the remaining files are left unprocessed rather than counted.
func (r *Runner) Run(ctx context.Context) (report.Stats, error) {
	stats := report.NewStats()

	files, err := corpus.List(r.dir, r.ext)
	if err != nil {
		return stats, err
	}
	if len(files) == 0 {
		logger.Warn("No %s files found in %s, nothing to do", r.ext, r.dir)
		return stats, nil
	}

	logger.Info("Found %d files to process in %s", len(files), r.dir)

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			logger.Warn("Run stopped after %d of %d files: %v", i, len(files), err)
			return stats, err
		}

		r.processFile(ctx, path, &stats)

		if (i+1)%throttleEvery == 0 {
			r.sleep(throttleDelay)
		}
	}
	return stats, nil
}

// processFile walks one file through read, build, and insert, recording the
// terminal outcome.
func (r *Runner) processFile(ctx context.Context, path string, stats *report.Stats) {
	name := filepath.Base(path)

	text, err := corpus.ReadFile(path)
	if err != nil {
		logger.Error("Error reading %s: %v", name, err)
		stats.RecordFailure(name, err)
		return
	}

	doc, err := r.builder.Build(ctx, path, text)
	if err != nil {
		logger.Error("Error processing %s: %v", name, err)
		stats.RecordFailure(name, err)
		return
	}

	outcome, err := r.writer.Insert(ctx, doc)
	switch outcome {
	case store.Inserted:
		logger.Debug("Insert %s: %s as %s", outcome, name, doc.ID)
		stats.RecordInserted()
	case store.Duplicate:
		logger.Warn("Insert %s: %s", outcome, name)
		stats.RecordDuplicate()
	default:
		logger.Error("Insert %s: %s: %v", outcome, name, err)
		stats.RecordFailure(name, err)
	}
}

// Package audit runs the read-only post-run checks against the collection.
// It reports problems; it never repairs them and never touches the counters
// accumulated during ingestion.
package audit

import (
	"context"

	"github.com/ksuazo/corpusvec/internal/document"
	"github.com/ksuazo/corpusvec/internal/logger"
	"github.com/ksuazo/corpusvec/internal/store"
)

// Reader is the read-side store surface the audit needs.
type Reader interface {
	Count(ctx context.Context) (int64, error)
	SampleOne(ctx context.Context) (*document.Document, error)
	EmbeddingSizeDistribution(ctx context.Context) ([]store.SizeBucket, error)
	CountMissingField(ctx context.Context, field string) (int64, error)
	ReplicaSetStatus(ctx context.Context) (*store.ReplicaStatus, error)
}

// Report is the outcome of one audit pass.
type Report struct {
	TotalDocuments   int64
	SampleOK         bool
	Sizes            []store.SizeBucket
	Consistent       bool
	MissingText      int64
	MissingEmbedding int64
	ReplicaHealthy   bool
}

// Run audits the collection: sample document shape, embedding length
// distribution, required-field presence, and replica set health. expectedDim
// is the embedding length every document should have. Individual check
// failures are logged and leave the corresponding report field at its zero
// value; only a failing count query aborts the audit.
func Run(ctx context.Context, r Reader, expectedDim int) (*Report, error) {
	rep := &Report{}

	total, err := r.Count(ctx)
	if err != nil {
		return nil, err
	}
	rep.TotalDocuments = total
	logger.Info("Audit: %d documents in the collection", total)

	if total == 0 {
		logger.Warn("Audit: collection is empty, skipping shape checks")
		return rep, nil
	}

	checkSample(ctx, r, rep)
	checkSizes(ctx, r, rep, expectedDim)
	checkRequiredFields(ctx, r, rep)
	checkReplicaSet(ctx, r, rep)

	return rep, nil
}

func checkSample(ctx context.Context, r Reader, rep *Report) {
	sample, err := r.SampleOne(ctx)
	if err != nil {
		logger.Warn("Audit: could not read a sample document: %v", err)
		return
	}
	if sample == nil {
		return
	}
	rep.SampleOK = sample.ID != "" && sample.Text != "" && len(sample.Embedding) > 0
	if !rep.SampleOK {
		logger.Warn("Audit: sample document is missing required fields")
		return
	}
	idPrefix := sample.ID
	if len(idPrefix) > 16 {
		idPrefix = idPrefix[:16]
	}
	logger.Info("Audit: sample document id=%s..., text length=%d, dimension=%d",
		idPrefix, len(sample.Text), len(sample.Embedding))
	logger.Info("Audit: sample preview: %s...", document.Preview(sample.Text, document.PreviewWords))
}

func checkSizes(ctx context.Context, r Reader, rep *Report, expectedDim int) {
	sizes, err := r.EmbeddingSizeDistribution(ctx)
	if err != nil {
		logger.Warn("Audit: could not compute embedding size distribution: %v", err)
		return
	}
	rep.Sizes = sizes
	rep.Consistent = len(sizes) == 1 && int(sizes[0].Size) == expectedDim
	if rep.Consistent {
		logger.Info("Audit: all %d documents have %d-dimensional embeddings", sizes[0].Count, expectedDim)
		return
	}
	logger.Warn("Audit: inconsistent embedding dimensions detected:")
	for _, b := range sizes {
		logger.Warn("  %d documents with %d dimensions", b.Count, b.Size)
	}
}

func checkRequiredFields(ctx context.Context, r Reader, rep *Report) {
	missingText, err := r.CountMissingField(ctx, "text")
	if err != nil {
		logger.Warn("Audit: could not count documents missing text: %v", err)
		return
	}
	missingEmbedding, err := r.CountMissingField(ctx, "embedding")
	if err != nil {
		logger.Warn("Audit: could not count documents missing embedding: %v", err)
		return
	}
	rep.MissingText = missingText
	rep.MissingEmbedding = missingEmbedding
	if missingText == 0 && missingEmbedding == 0 {
		logger.Info("Audit: all documents carry the required fields")
		return
	}
	if missingText > 0 {
		logger.Warn("Audit: %d documents missing the text field", missingText)
	}
	if missingEmbedding > 0 {
		logger.Warn("Audit: %d documents missing the embedding field", missingEmbedding)
	}
}

func checkReplicaSet(ctx context.Context, r Reader, rep *Report) {
	status, err := r.ReplicaSetStatus(ctx)
	if err != nil {
		logger.Warn("Audit: could not check replica set status: %v", err)
		return
	}
	primaries := status.PrimaryCount()
	rep.ReplicaHealthy = primaries == 1
	logger.Info("Audit: replica set %q with %d members", status.Set, len(status.Members))
	if rep.ReplicaHealthy {
		logger.Info("Audit: one primary active")
	} else {
		logger.Warn("Audit: %d primaries detected, expected exactly 1", primaries)
	}
}

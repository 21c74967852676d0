package document

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ksuazo/corpusvec/internal/embed"
)

// ErrEmptyText reports that a source file had no usable content. It is a
// per-document condition, distinct from embedding or storage failures.
var ErrEmptyText = errors.New("document text is empty")

// Builder assembles Documents from source text using the embedding service.
type Builder struct {
	embedder embed.Service
	now      func() time.Time
}

// NewBuilder creates a Builder backed by the given embedding service.
func NewBuilder(embedder embed.Service) *Builder {
	return &Builder{
		embedder: embedder,
		now:      time.Now,
	}
}

// Build creates the Document for one source file. The id is derived from the
// text, never supplied externally, and the metadata comes purely from the
// path and text.
func (b *Builder) Build(ctx context.Context, path, text string) (*Document, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	vector, err := b.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}

	return &Document{
		ID:        Hash(text),
		Text:      text,
		Embedding: vector,
		Metadata: &Metadata{
			Filename:    filepath.Base(path),
			ProcessedAt: b.now().UTC(),
			TextLength:  len(text),
			Preview:     Preview(text, PreviewWords),
		},
	}, nil
}

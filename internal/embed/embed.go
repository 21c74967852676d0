package embed

import "context"

// Service defines the interface for generating text embeddings.
type Service interface {
	// EmbedText generates an embedding vector for the given text.
	EmbedText(ctx context.Context, text string) ([]float32, error)
	// Dimension returns the dimensionality of the produced vectors.
	Dimension() int
}

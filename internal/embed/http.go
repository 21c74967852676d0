package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ksuazo/corpusvec/internal/logger"
)

// ErrEmptyInput reports that there was nothing to embed.
var ErrEmptyInput = errors.New("cannot embed empty text")

// HTTPEmbedder calls an OpenAI-compatible embeddings endpoint, such as a
// locally served sentence-transformers model. The model behind the endpoint is
// loaded once by the serving process, so requests are cheap relative to a
// fresh model load per call.
type HTTPEmbedder struct {
	baseURL   string
	apiKey    string
	model     string
	dimension int
	client    *http.Client
}

// Config configures the embeddings client.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	// Dimension is the expected vector length. When zero it is learned from
	// the first response; when set, any deviation is treated as an error.
	Dimension int
	Timeout   time.Duration
}

// NewHTTPEmbedder creates a client for the configured embeddings endpoint.
func NewHTTPEmbedder(cfg Config) (*HTTPEmbedder, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("embedder base URL is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPEmbedder{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		dimension: cfg.Dimension,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

// Warmup verifies that the embedding service is reachable and produces
// vectors of the expected dimension. Intended to run once at startup so a
// dead or misconfigured service fails the run before any file is processed.
func (e *HTTPEmbedder) Warmup(ctx context.Context) error {
	vec, err := e.EmbedText(ctx, "warmup")
	if err != nil {
		return fmt.Errorf("embedding service warmup failed: %w", err)
	}
	logger.Info("Embedding service ready, model=%s dimension=%d", e.model, len(vec))
	return nil
}

// EmbedText generates an embedding vector for the given text.
func (e *HTTPEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	body, err := json.Marshal(struct {
		Input string `json:"input"`
		Model string `json:"model"`
	}{Input: text, Model: e.model})
	if err != nil {
		return nil, fmt.Errorf("failed to encode embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embedding request failed: %s", resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding response: %w", err)
	}

	vec, err := decodeEmbedding(payload)
	if err != nil {
		return nil, err
	}

	if e.dimension == 0 {
		e.dimension = len(vec)
	} else if len(vec) != e.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(vec), e.dimension)
	}
	return vec, nil
}

// Dimension returns the dimensionality of the produced vectors.
func (e *HTTPEmbedder) Dimension() int {
	return e.dimension
}

// decodeEmbedding accepts the OpenAI response shape and falls back to the
// Ollama-native shape, so either kind of local serving stack works.
func decodeEmbedding(payload []byte) ([]float32, error) {
	var openaiOut struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &openaiOut); err == nil {
		if len(openaiOut.Data) > 0 && len(openaiOut.Data[0].Embedding) > 0 {
			return openaiOut.Data[0].Embedding, nil
		}
	}

	var ollamaOut struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(payload, &ollamaOut); err == nil {
		if len(ollamaOut.Embedding) > 0 {
			return ollamaOut.Embedding, nil
		}
	}

	return nil, errors.New("no embedding returned")
}

package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksuazo/corpusvec/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init(false)
	os.Exit(m.Run())
}

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newEmbedder(t *testing.T, srv *httptest.Server, dim int) *HTTPEmbedder {
	t.Helper()
	e, err := NewHTTPEmbedder(Config{
		BaseURL:   srv.URL,
		Model:     "all-MiniLM-L6-v2",
		Dimension: dim,
	})
	require.NoError(t, err)
	return e
}

func TestEmbedText_OpenAIShape(t *testing.T) {
	var gotModel, gotInput string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		var req struct {
			Input string `json:"input"`
			Model string `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotModel, gotInput = req.Model, req.Input

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{0.1, 0.2, 0.3}}},
		})
	})

	e := newEmbedder(t, srv, 3)
	vec, err := e.EmbedText(context.Background(), "hello world")
	require.NoError(t, err)

	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "all-MiniLM-L6-v2", gotModel)
	assert.Equal(t, "hello world", gotInput)
}

func TestEmbedText_OllamaShape(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embedding": []float32{1, 2},
		})
	})

	e := newEmbedder(t, srv, 2)
	vec, err := e.EmbedText(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, vec)
}

func TestEmbedText_EmptyInput(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty input")
	})

	e := newEmbedder(t, srv, 3)
	for _, text := range []string{"", "   \n"} {
		_, err := e.EmbedText(context.Background(), text)
		assert.ErrorIs(t, err, ErrEmptyInput)
	}
}

func TestEmbedText_ServerError(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	})

	e := newEmbedder(t, srv, 3)
	_, err := e.EmbedText(context.Background(), "text")
	assert.Error(t, err)
}

func TestEmbedText_NoEmbeddingInResponse(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	e := newEmbedder(t, srv, 3)
	_, err := e.EmbedText(context.Background(), "text")
	assert.ErrorContains(t, err, "no embedding returned")
}

func TestEmbedText_DimensionMismatch(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{1, 2, 3, 4}}},
		})
	})

	e := newEmbedder(t, srv, 3)
	_, err := e.EmbedText(context.Background(), "text")
	assert.ErrorContains(t, err, "dimension mismatch")
}

func TestEmbedText_LearnsDimension(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{1, 2, 3, 4, 5}}},
		})
	})

	e := newEmbedder(t, srv, 0)
	assert.Equal(t, 0, e.Dimension())

	_, err := e.EmbedText(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, 5, e.Dimension())
}

func TestWarmup(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{1, 2, 3}}},
		})
	})

	e := newEmbedder(t, srv, 3)
	assert.NoError(t, e.Warmup(context.Background()))
}

func TestWarmup_Unreachable(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	e := newEmbedder(t, srv, 3)
	assert.Error(t, e.Warmup(context.Background()))
}

func TestNewHTTPEmbedder_RequiresBaseURL(t *testing.T) {
	_, err := NewHTTPEmbedder(Config{})
	assert.Error(t, err)
}

func TestEmbedText_SendsAPIKey(t *testing.T) {
	var gotAuth string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{1}}},
		})
	})

	e, err := NewHTTPEmbedder(Config{BaseURL: srv.URL, APIKey: "secret", Dimension: 1})
	require.NoError(t, err)

	_, err = e.EmbedText(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", gotAuth)
}

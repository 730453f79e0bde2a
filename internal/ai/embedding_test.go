package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *EmbeddingClient {
	return NewEmbeddingClient(EmbeddingConfig{
		BaseURL:   url,
		Model:     "bge-large",
		Dimension: 4,
		Timeout:   2 * time.Second,
	})
}

func TestEmbedSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)

		var body struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "bge-large", body.Model)
		assert.Equal(t, "질의 텍스트", body.Prompt)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"embedding": []float32{0.1, 0.2, 0.3, 0.4},
		})
	}))
	defer srv.Close()

	vec, err := newTestClient(srv.URL).Embed(context.Background(), "질의 텍스트")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3, 0.4}, vec)
}

func TestEmbedEmptyInput(t *testing.T) {
	_, err := newTestClient("http://127.0.0.1:0").Embed(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrInputRejected)
}

func TestEmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Embed(context.Background(), "텍스트")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestEmbedRejectedInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "prompt too long", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Embed(context.Background(), "텍스트")
	assert.ErrorIs(t, err, ErrInputRejected)
}

func TestEmbedConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	_, err := newTestClient(srv.URL).Embed(context.Background(), "텍스트")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestEmbedEmptyVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"embedding": []float32{}})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Embed(context.Background(), "텍스트")
	assert.Error(t, err)
}

func TestEmbedToleratesDimensionDrift(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"embedding": []float32{0.1, 0.2}, // configured dimension is 4
		})
	}))
	defer srv.Close()

	vec, err := newTestClient(srv.URL).Embed(context.Background(), "텍스트")
	require.NoError(t, err, "dimension mismatch is a warning, not a failure")
	assert.Len(t, vec, 2)
}

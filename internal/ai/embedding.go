package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrServiceUnavailable means the embedding service could not be reached
	// or answered with a server-side failure.
	ErrServiceUnavailable = errors.New("embedding service unavailable")
	// ErrInputRejected means the service answered but refused the input.
	ErrInputRejected = errors.New("embedding input rejected")
)

// EmbeddingConfig holds API settings for the embedding endpoint.
type EmbeddingConfig struct {
	BaseURL   string
	Model     string
	Dimension int
	Timeout   time.Duration
}

// EmbeddingClient calls an Ollama-style embedding endpoint:
// POST {base}/api/embeddings {"model","prompt"} -> {"embedding":[...]}.
type EmbeddingClient struct {
	cfg        EmbeddingConfig
	httpClient *http.Client
}

func NewEmbeddingClient(cfg EmbeddingConfig) *EmbeddingClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &EmbeddingClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Dimension reports the vector dimension this deployment expects.
func (c *EmbeddingClient) Dimension() int {
	return c.cfg.Dimension
}

// Ping checks that the embedding service answers at all. Ollama responds to a
// plain GET on its base URL.
func (c *EmbeddingClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL, nil)
	if err != nil {
		return fmt.Errorf("build embedding ping failed: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
	}
	return nil
}

// Embed returns the embedding vector for the given text. A vector whose
// dimension differs from the configured one is returned with a logged
// warning rather than an error, to tolerate model version drift.
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInputRejected)
	}

	reqBody := map[string]interface{}{
		"model":  c.cfg.Model,
		"prompt": text,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request failed: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/api/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build embedding request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response failed: %w", err)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrServiceUnavailable, resp.StatusCode, string(raw))
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrInputRejected, resp.StatusCode, string(raw))
	}

	var parsed struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse embedding json failed: %w", err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding in response", ErrInputRejected)
	}
	if c.cfg.Dimension > 0 && len(parsed.Embedding) != c.cfg.Dimension {
		log.Printf("embedding dimension mismatch: expected %d, got %d", c.cfg.Dimension, len(parsed.Embedding))
	}
	return parsed.Embedding, nil
}

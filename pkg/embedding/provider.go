// Package embedding integrates the external text-embedding provider and
// supplies vector caching and similarity utilities for semantic matching.
package embedding

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Provider generates fixed-dimension embedding vectors for text. The
// engine treats it as a potentially slow, retryable dependency; callers
// apply their own timeout via ctx.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// HTTPProvider calls an OpenAI-compatible embeddings endpoint.
type HTTPProvider struct {
	endpoint   string
	apiKey     string
	model      string
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries int
	logger     *slog.Logger
}

// HTTPProviderOption configures an HTTPProvider.
type HTTPProviderOption func(*HTTPProvider)

// WithHTTPClient overrides the HTTP client (tests use httptest servers).
func WithHTTPClient(c *http.Client) HTTPProviderOption {
	return func(p *HTTPProvider) { p.client = c }
}

// WithRateLimit caps outbound embedding calls per second.
func WithRateLimit(rps float64, burst int) HTTPProviderOption {
	return func(p *HTTPProvider) { p.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithMaxRetries sets the retry budget for transient failures.
func WithMaxRetries(n int) HTTPProviderOption {
	return func(p *HTTPProvider) { p.maxRetries = n }
}

// NewHTTPProvider creates a provider for the given embeddings endpoint.
func NewHTTPProvider(endpoint, apiKey, model string, opts ...HTTPProviderOption) *HTTPProvider {
	p := &HTTPProvider{
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      model,
		client:     &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(10), 20),
		maxRetries: 3,
		logger:     slog.Default().With("component", "embedding"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for a single text.
func (p *HTTPProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns one vector per input text, in input order.
func (p *HTTPProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(embedRequest{Model: p.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("embedding: marshal request: %w", err)
	}

	var resp embedResponse
	if err := p.post(ctx, body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding: got %d vectors for %d texts", len(resp.Data), len(texts))
	}

	vecs := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("embedding: vector index %d out of range", d.Index)
		}
		vecs[d.Index] = d.Embedding
	}
	for i, v := range vecs {
		if len(v) == 0 {
			return nil, fmt.Errorf("embedding: empty vector for input %d", i)
		}
		if len(v) != len(vecs[0]) {
			return nil, fmt.Errorf("embedding: mixed vector dimensions %d and %d", len(vecs[0]), len(v))
		}
	}
	return vecs, nil
}

// post sends the request with rate limiting and retries on transient
// failures using exponential backoff plus jitter.
func (p *HTTPProvider) post(ctx context.Context, body []byte, out any) error {
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("embedding: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if p.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+p.apiKey)
		}

		resp, err := p.client.Do(req)
		if err == nil && resp.StatusCode == http.StatusOK {
			decErr := json.NewDecoder(resp.Body).Decode(out)
			_ = resp.Body.Close()
			if decErr != nil {
				return fmt.Errorf("embedding: decode response: %w", decErr)
			}
			return nil
		}

		if err != nil {
			lastErr = err
		} else {
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("embedding: provider returned %d", resp.StatusCode)
			// Client errors will not improve on retry.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return lastErr
			}
		}

		if attempt == p.maxRetries {
			break
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * 100 * time.Millisecond
		jitter := time.Duration(0)
		if n, err := rand.Int(rand.Reader, big.NewInt(50)); err == nil {
			jitter = time.Duration(n.Int64()) * time.Millisecond
		}
		p.logger.Warn("embedding call failed, retrying",
			"attempt", attempt+1, "backoff", backoff+jitter, "error", lastErr)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff + jitter):
		}
	}

	return lastErr
}

// Package ollama is a small resilient client for the local model server used
// to summarize applications.
package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ollama/ollama/api"
)

var (
	ErrCircuitOpen  = errors.New("ollama circuit open")
	ErrModelMissing = errors.New("ollama model not pulled")
)

// package-level logger for pkg/ollama; can be replaced by callers
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger sets the logger used by pkg/ollama. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// Client wraps the Ollama API client with per-call timeouts, retries and a
// circuit breaker shared by every call.
type Client struct {
	api     *api.Client
	http    *http.Client
	cfg     Config
	breaker *breaker
	closed  atomic.Bool
}

// GenerateResult is the concatenated model output plus the final stream frame.
type GenerateResult struct {
	Text string          `json:"text"`
	Raw  json.RawMessage `json:"raw"`
	Meta map[string]any  `json:"meta,omitempty"`
}

// ModelInfo is a pulled model as reported by /api/tags.
type ModelInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	u, err := url.ParseRequestURI(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	c := &Client{
		api:     api.NewClient(u, httpClient),
		http:    httpClient,
		cfg:     cfg,
		breaker: newBreaker(cfg.CircuitFailureThreshold, cfg.CircuitReset),
	}
	logger.Info("ollama: client created", slog.String("base_url", cfg.BaseURL), slog.Duration("timeout", cfg.Timeout))
	return c, nil
}

// NewDefaultClient builds a client on a tuned transport for a long-lived process.
func NewDefaultClient(cfg Config) (*Client, error) {
	return NewClient(cfg, &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 15 * time.Second,
			}).DialContext,
			MaxIdleConns:        16,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	})
}

// Close releases idle connections. Calls after the first are no-ops.
func (c *Client) Close() error {
	if c == nil || !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if tr, ok := c.http.Transport.(interface{ CloseIdleConnections() }); ok {
		tr.CloseIdleConnections()
		logger.Debug("ollama: idle connections closed")
	}
	return nil
}

// ListModels returns the models pulled on the server.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	if !c.breaker.allow() {
		return nil, ErrCircuitOpen
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.api.List(ctx)
	if err != nil {
		c.breaker.failure()
		return nil, fmt.Errorf("list models: %w", err)
	}
	c.breaker.success()

	out := make([]ModelInfo, 0, len(resp.Models))
	for _, m := range resp.Models {
		out = append(out, ModelInfo{Name: m.Name, Size: m.Size})
	}
	return out, nil
}

// Health reports whether the server answers and, when model is set, whether
// that model is pulled. "llama3" matches "llama3:latest".
func (c *Client) Health(ctx context.Context, model string) error {
	models, err := c.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if len(models) == 0 {
		return fmt.Errorf("health check failed: %w: none available", ErrModelMissing)
	}
	if model == "" {
		return nil
	}
	for _, m := range models {
		if m.Name == model || strings.TrimSuffix(m.Name, ":latest") == model {
			return nil
		}
	}
	return fmt.Errorf("health check failed: %w: %s", ErrModelMissing, model)
}

// Generate sends a prompt to the model and returns the streamed response
// joined into one text. Failures are retried with linear backoff until the
// retries run out, ctx ends or the breaker opens.
func (c *Client) Generate(ctx context.Context, model string, prompt string) (GenerateResult, error) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.Retries+1; attempt++ {
		if !c.breaker.allow() {
			return GenerateResult{}, ErrCircuitOpen
		}
		res, err := c.generateOnce(ctx, model, prompt)
		if err == nil {
			c.breaker.success()
			res.Meta["attempts"] = attempt
			return res, nil
		}
		lastErr = err
		c.breaker.failure()
		logger.Warn("ollama: generate failed", "model", model, "attempt", attempt, "err", err)
		if ctx.Err() != nil {
			return GenerateResult{}, ctx.Err()
		}
		if attempt > c.cfg.Retries {
			break
		}
		select {
		case <-time.After(c.cfg.Backoff * time.Duration(attempt)):
		case <-ctx.Done():
			return GenerateResult{}, ctx.Err()
		}
	}
	return GenerateResult{}, fmt.Errorf("generate failed after retries: %w", lastErr)
}

func (c *Client) generateOnce(ctx context.Context, model, prompt string) (GenerateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req := &api.GenerateRequest{Model: model, Prompt: prompt, Options: c.cfg.options()}
	var text strings.Builder
	var last api.GenerateResponse
	start := time.Now()
	err := c.api.Generate(ctx, req, func(r api.GenerateResponse) error {
		text.WriteString(r.Response)
		last = r
		return nil
	})
	if err != nil {
		return GenerateResult{}, err
	}
	raw, _ := json.Marshal(last)
	return GenerateResult{
		Text: text.String(),
		Raw:  raw,
		Meta: map[string]any{"model": model, "latency_ms": time.Since(start).Milliseconds()},
	}, nil
}

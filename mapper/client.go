// Package mapper resolves field names that the synchronous pipeline could
// not, by asking an external language-model service which raw field name
// corresponds to a semantic key. Responses are validated against the actual
// field list before anything is trusted.
package mapper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/c360studio/formroute/config"
	"github.com/c360studio/formroute/semantic"
	"github.com/c360studio/formroute/similarity"
)

// noMatchToken is the literal the service answers when no field fits a key.
const noMatchToken = "NO_MATCH"

// defaultBaseURLs maps provider names to their standard endpoints.
var defaultBaseURLs = map[string]string{
	"openai": "https://api.openai.com/v1",
	"ollama": "http://localhost:11434",
}

// Client calls a mapping service through a registered provider. All calls
// are rate limited to at least cfg.MinInterval apart, and transient failures
// are retried with backoff.
type Client struct {
	cfg        config.MapperConfig
	provider   Provider
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retry      RetryConfig
	logger     *slog.Logger

	mu       sync.Mutex
	lastCall time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithAPIKey sets the provider API key. Keys live in the environment, not in
// config files.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(rc RetryConfig) Option {
	return func(c *Client) {
		c.retry = rc
	}
}

// New creates a mapping client for the configured provider.
func New(cfg config.MapperConfig, opts ...Option) (*Client, error) {
	provider, err := GetProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:        cfg,
		provider:   provider,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		retry:      DefaultRetryConfig(),
		logger:     slog.Default(),
	}
	if cfg.MaxRetries > 0 {
		c.retry.MaxAttempts = cfg.MaxRetries
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.baseURL == "" {
		c.baseURL = defaultBaseURLs[cfg.Provider]
	}
	if c.baseURL == "" {
		return nil, fmt.Errorf("no base URL configured for provider %q", cfg.Provider)
	}

	return c, nil
}

// MapField asks the service which of availableFields corresponds to key.
// The returned name is always an exact member of availableFields. ErrNoMatch
// means the service answered convincingly that nothing fits.
func (c *Client) MapField(ctx context.Context, availableFields []string, key semantic.Key) (string, error) {
	if len(availableFields) == 0 {
		return "", ErrNoMatch
	}

	raw, err := c.complete(ctx, buildPrompt(key, availableFields))
	if err != nil {
		return "", fmt.Errorf("mapping %s: %w", key, err)
	}

	field, err := c.matchResult(raw, availableFields)
	if err != nil {
		c.logger.Debug("mapper answer rejected",
			"key", key.String(),
			"answer", raw,
			"error", err)
		return "", err
	}

	c.logger.Debug("mapper resolved field",
		"key", key.String(),
		"field", field)
	return field, nil
}

// MapFields maps several keys against the same field list in a single
// request. Keys the service could not map are absent from the result.
func (c *Client) MapFields(ctx context.Context, availableFields []string, keys []semantic.Key) (map[semantic.Key]string, error) {
	if len(availableFields) == 0 || len(keys) == 0 {
		return map[semantic.Key]string{}, nil
	}

	raw, err := c.complete(ctx, buildBatchPrompt(keys, availableFields))
	if err != nil {
		return nil, fmt.Errorf("batch mapping: %w", err)
	}

	wanted := make(map[semantic.Key]bool, len(keys))
	for _, k := range keys {
		wanted[k] = true
	}

	results := make(map[semantic.Key]string)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key := semantic.Key(strings.TrimSpace(name))
		if !wanted[key] {
			continue
		}
		field, err := c.matchResult(value, availableFields)
		if err != nil {
			continue
		}
		results[key] = field
	}

	return results, nil
}

// matchResult validates a service answer against the real field list. Exact
// membership is trusted outright. A containment match is trusted only when
// its similarity to the actual field clears the configured threshold.
func (c *Client) matchResult(raw string, availableFields []string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'`")
	clean = strings.TrimSpace(clean)

	if clean == "" || strings.Contains(clean, noMatchToken) {
		return "", ErrNoMatch
	}

	for _, f := range availableFields {
		if f == clean {
			return f, nil
		}
	}
	for _, f := range availableFields {
		if strings.EqualFold(f, clean) {
			return f, nil
		}
	}

	// The model sometimes answers with a fragment of the field. Accept the
	// closest containing field, but only above the confidence threshold.
	best := ""
	bestScore := 0.0
	lowerClean := strings.ToLower(clean)
	for _, f := range availableFields {
		lowerField := strings.ToLower(f)
		if !strings.Contains(lowerField, lowerClean) && !strings.Contains(lowerClean, lowerField) {
			continue
		}
		score := similarity.Score(f, []string{clean})
		if score > bestScore {
			best = f
			bestScore = score
		}
	}
	if best != "" && bestScore >= c.cfg.ConfidenceThreshold {
		return best, nil
	}

	return "", fmt.Errorf("%w: answer %q names no available field", ErrNoMatch, clean)
}

// complete sends the prompt and returns the raw completion text.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	if err := c.waitForInterval(ctx); err != nil {
		return "", err
	}

	var content string
	err := withRetry(ctx, c.retry, func() error {
		var callErr error
		content, callErr = c.doRequest(ctx, prompt)
		return callErr
	})
	return content, err
}

// waitForInterval blocks until at least MinInterval has passed since the
// previous call. Holding the lock across the wait serializes concurrent
// callers, which is the point.
func (c *Client) waitForInterval(ctx context.Context) error {
	if c.cfg.MinInterval <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	wait := c.cfg.MinInterval - time.Since(c.lastCall)
	if wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	c.lastCall = time.Now()
	return nil
}

func (c *Client) doRequest(ctx context.Context, prompt string) (string, error) {
	body, err := c.provider.BuildRequestBody(c.cfg.Model, prompt, c.cfg.Temperature, c.cfg.MaxTokens)
	if err != nil {
		return "", NewFatalError(fmt.Errorf("failed to build request body: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.provider.BuildURL(c.baseURL), bytes.NewReader(body))
	if err != nil {
		return "", NewFatalError(fmt.Errorf("failed to create request: %w", err))
	}
	c.provider.SetHeaders(req, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", NewTransientError(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewTransientError(fmt.Errorf("failed to read response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return "", NewTransientError(fmt.Errorf("service returned status %d: %s", resp.StatusCode, string(respBody)))
	default:
		return "", NewFatalError(fmt.Errorf("service returned status %d: %s", resp.StatusCode, string(respBody)))
	}

	content, err := c.provider.ParseResponse(respBody)
	if err != nil {
		return "", NewFatalError(err)
	}
	return content, nil
}

package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	mmerrors "github.com/unixblacksteel/mindmap/pkg/errors"
	"github.com/unixblacksteel/mindmap/pkg/httputil"
)

const (
	defaultTimeout = 60 * time.Second
	maxErrorBody   = 4 << 10
)

// Config holds connection settings. Only APIKey is required.
type Config struct {
	Endpoint   string
	APIKey     string
	TextModel  string
	ImageModel string
	Timeout    time.Duration
	RateLimit  float64 // requests per second, zero for unlimited
	Burst      int
}

func (c *Config) setDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	c.Endpoint = strings.TrimRight(c.Endpoint, "/")
	if c.TextModel == "" {
		c.TextModel = DefaultTextModel
	}
	if c.ImageModel == "" {
		c.ImageModel = DefaultImageModel
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Client talks to the generateContent endpoint. It is safe for concurrent use.
type Client struct {
	cfg    Config
	http   *http.Client
	guard  *httputil.Guard
	logger *log.Logger
	tokens atomic.Int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithGuard replaces the rate limiter, breaker and retry policy.
func WithGuard(g *httputil.Guard) Option {
	return func(c *Client) {
		if g != nil {
			c.guard = g
		}
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a Client for cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, mmerrors.New(mmerrors.ErrCodeInvalidConfig, "api key is required (set MINDMAP_API_KEY or GEMINI_API_KEY)")
	}
	cfg.setDefaults()
	if err := mmerrors.ValidateURL(cfg.Endpoint); err != nil {
		return nil, mmerrors.Wrap(mmerrors.ErrCodeInvalidConfig, err, "endpoint")
	}

	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout, Transport: &httputil.Transport{}},
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.guard == nil {
		c.guard = httputil.NewGuard(httputil.GuardConfig{
			Name:      "gemini",
			RateLimit: cfg.RateLimit,
			Burst:     cfg.Burst,
		}, c.logger)
	}
	return c, nil
}

// TextModel returns the model used for text and mind maps.
func (c *Client) TextModel() string { return c.cfg.TextModel }

// ImageModel returns the model used for images.
func (c *Client) ImageModel() string { return c.cfg.ImageModel }

// TokensUsed is the total token count reported by the API so far.
func (c *Client) TokensUsed() int64 { return c.tokens.Load() }

func (c *Client) generate(ctx context.Context, model string, req *generateRequest) (*generateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, mmerrors.Wrap(mmerrors.ErrCodeInternal, err, "encode request")
	}
	url := c.cfg.Endpoint + "/models/" + model + ":generateContent"

	var resp generateResponse
	err = c.guard.Do(ctx, func(ctx context.Context) error {
		resp = generateResponse{}
		return c.post(ctx, url, body, &resp)
	})
	if err != nil {
		return nil, err
	}
	if u := resp.UsageMetadata; u != nil {
		c.tokens.Add(u.TotalTokenCount)
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, url string, body []byte, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return mmerrors.Wrap(mmerrors.ErrCodeInternal, err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return httputil.Retryable(mmerrors.Wrap(mmerrors.ErrCodeTimeout, err, "request timed out"))
		}
		return httputil.Retryable(mmerrors.Wrap(mmerrors.ErrCodeNetwork, err, "request failed"))
	}
	defer resp.Body.Close()
	c.logger.Debug("generateContent", "status", resp.StatusCode, "elapsed", time.Since(start).Round(time.Millisecond))

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return mmerrors.Wrap(mmerrors.ErrCodeNetwork, err, "decode response")
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}
	msg := errorMessage(resp)
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return mmerrors.New(mmerrors.ErrCodeUnauthorized, "status %d: %s", code, msg)
	case code == http.StatusNotFound:
		return mmerrors.New(mmerrors.ErrCodeNotFound, "status %d: %s", code, msg)
	case code == http.StatusTooManyRequests:
		after, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return httputil.Retryable(mmerrors.Wrap(mmerrors.ErrCodeRateLimited,
			&mmerrors.RateLimitedError{RetryAfter: after, Message: msg}, "status %d", code))
	case code >= 500:
		return httputil.Retryable(mmerrors.New(mmerrors.ErrCodeNetwork, "status %d: %s", code, msg))
	default:
		return mmerrors.New(mmerrors.ErrCodeInvalidInput, "status %d: %s", code, msg)
	}
}

func errorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var apiErr apiError
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	if s := strings.TrimSpace(string(raw)); s != "" {
		return s
	}
	return http.StatusText(resp.StatusCode)
}

// fail wraps err as GENERATION. The cause, including context errors, stays
// reachable through errors.Is.
func fail(err error, op string) error {
	return mmerrors.Wrap(mmerrors.ErrCodeGeneration, err, "%s", op)
}

package httputil

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	mmerrors "github.com/unixblacksteel/mindmap/pkg/errors"
)

// GuardConfig configures a Guard. Zero fields take the defaults noted.
type GuardConfig struct {
	Name string

	// RateLimit is the sustained requests per second. Zero or less means
	// unlimited.
	RateLimit float64
	Burst     int // default 1

	Attempts int           // default 3
	Delay    time.Duration // initial backoff, default 1s

	// FailureThreshold consecutive retryable failures open the breaker
	// (default 5). It stays open for OpenTimeout (default 30s).
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

func (c *GuardConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "http"
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	if c.Attempts <= 0 {
		c.Attempts = 3
	}
	if c.Delay <= 0 {
		c.Delay = time.Second
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 5
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 30 * time.Second
	}
}

// Guard combines rate limiting, circuit breaking and retries for one
// upstream service. It is safe for concurrent use.
type Guard struct {
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	attempts int
	delay    time.Duration
}

// NewGuard builds a Guard. A nil logger discards breaker state changes.
func NewGuard(cfg GuardConfig, logger *log.Logger) *Guard {
	cfg.setDefaults()
	if logger == nil {
		logger = log.New(io.Discard)
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		// a 4xx says nothing about upstream health
		IsSuccessful: func(err error) bool {
			return err == nil || !IsRetryable(err)
		},
	})

	return &Guard{
		limiter:  rate.NewLimiter(limit, cfg.Burst),
		breaker:  breaker,
		attempts: cfg.Attempts,
		delay:    cfg.Delay,
	}
}

// Do runs fn with retries. Each attempt first waits for the rate limiter
// and then passes through the circuit breaker.
func (g *Guard) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return Retry(ctx, g.attempts, g.delay, func() error {
		if err := g.limiter.Wait(ctx); err != nil {
			return err
		}
		_, err := g.breaker.Execute(func() (any, error) {
			return nil, fn(ctx)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return mmerrors.Wrap(mmerrors.ErrCodeNetwork, err, "upstream unavailable")
		}
		return err
	})
}

// State returns the breaker state: "closed", "half-open" or "open".
func (g *Guard) State() string {
	return g.breaker.State().String()
}

// Package resilience wraps provider HTTP calls with a client-side rate limit,
// a circuit breaker and exponential backoff.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/devskill-org/stargazing/logger"
	"github.com/devskill-org/stargazing/metrics"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Config describes one provider's resilience envelope.
type Config struct {
	Name    string
	Backoff BackoffConfig

	// RatePerSecond <= 0 disables the limiter.
	RatePerSecond float64
	Burst         int

	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// DefaultConfig returns the settings used by every provider client.
func DefaultConfig(name string) Config {
	return Config{
		Name: name,
		Backoff: BackoffConfig{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		RatePerSecond:    2,
		Burst:            2,
		FailureThreshold: 5,
		OpenTimeout:      2 * time.Minute,
	}
}

var (
	// ErrCircuitOpen is returned without contacting the provider while the breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")
	errNoBuilder   = errors.New("request builder is nil")
)

// StatusError reports a retryable HTTP status that survived every retry.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Status)
}

// Retryable reports whether the status code is worth another attempt.
func Retryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// Doer executes requests for a single provider. It is safe for concurrent use.
type Doer struct {
	name    string
	client  *http.Client
	backoff BackoffConfig
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
	logger  *zap.SugaredLogger
}

// Option customises a Doer.
type Option func(*Doer)

// WithMetrics records request outcomes and retries.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Doer) { d.metrics = m }
}

// WithLogger sets the logger used for retries and breaker transitions.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(d *Doer) { d.logger = logger.OrNop(l) }
}

// New builds a Doer. A nil client means http.DefaultClient.
func New(client *http.Client, cfg Config, opts ...Option) *Doer {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.Backoff.MaxRetries < 0 {
		cfg.Backoff.MaxRetries = 0
	}
	if cfg.Backoff.InitialInterval <= 0 {
		cfg.Backoff.InitialInterval = 500 * time.Millisecond
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 2 * time.Minute
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	d := &Doer{
		name:    cfg.Name,
		client:  client,
		backoff: cfg.Backoff,
		limiter: rate.NewLimiter(limit, burst),
		logger:  zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(d)
	}

	threshold := cfg.FailureThreshold
	d.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			d.logger.Warnw("circuit breaker state changed", "provider", name, "from", from.String(), "to", to.String())
		},
	})
	return d
}

// Name returns the provider name.
func (d *Doer) Name() string { return d.name }

// Do runs buildRequest until it yields a non-retryable response or the retry
// budget is spent. Client errors (4xx except 429) are returned as responses so
// callers can decode the provider's error body; the caller closes the body.
func (d *Doer) Do(ctx context.Context, buildRequest func() (*http.Request, error)) (*http.Response, error) {
	if buildRequest == nil {
		return nil, errNoBuilder
	}

	var attempt int
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)

		start := time.Now()
		result, err := d.breaker.Execute(func() (interface{}, error) {
			resp, execErr := d.client.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			if Retryable(resp.StatusCode) {
				resp.Body.Close()
				return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
			}
			return resp, nil
		})

		if err == nil {
			d.metrics.ObserveProvider(d.name, "success", time.Since(start))
			return result.(*http.Response), nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			d.metrics.ObserveProvider(d.name, "circuit_open", time.Since(start))
			return nil, fmt.Errorf("%s: %w", d.name, ErrCircuitOpen)
		}
		d.metrics.ObserveProvider(d.name, "error", time.Since(start))

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if attempt >= d.backoff.MaxRetries {
			return nil, err
		}

		delay := d.delay(attempt)
		d.logger.Debugw("retrying provider request", "provider", d.name, "attempt", attempt+1, "delay", delay, "error", err)
		d.metrics.ObserveRetry(d.name)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		attempt++
	}
}

func (d *Doer) delay(attempt int) time.Duration {
	delay := d.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
	if d.backoff.MaxInterval > 0 && delay > d.backoff.MaxInterval {
		delay = d.backoff.MaxInterval
	}
	return delay
}

// State reports the breaker state, for status endpoints.
func (d *Doer) State() string { return d.breaker.State().String() }

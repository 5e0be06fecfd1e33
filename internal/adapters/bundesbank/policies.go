package bundesbank

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/fx_reference_rates/internal/apperrors"
	"github.com/SscSPs/fx_reference_rates/internal/middleware"
	"github.com/SscSPs/fx_reference_rates/internal/platform/metrics"
	"github.com/eapache/go-resiliency/retrier"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/semaphore"
)

// Throttle bounds the number of in-flight provider calls across all currencies.
// When the bound is reached a caller waits at most MaxWait, then fails with apperrors.ErrTooBusy.
type Throttle struct {
	next    Fetcher
	sem     *semaphore.Weighted
	maxWait time.Duration
	metrics *metrics.Metrics
}

// NewThrottle wraps next. maxWait <= 0 fails fast when saturated.
func NewThrottle(next Fetcher, maxConcurrent int64, maxWait time.Duration, m *metrics.Metrics) *Throttle {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Throttle{
		next:    next,
		sem:     semaphore.NewWeighted(maxConcurrent),
		maxWait: maxWait,
		metrics: m,
	}
}

func (t *Throttle) FetchCSV(ctx context.Context, currency string) (string, error) {
	if !t.acquire(ctx) {
		t.metrics.RecordSourceRequest("throttled", 0)
		middleware.GetLoggerFromCtx(ctx).Warn("Provider call throttled", slog.String("currency", currency), slog.Duration("max_wait", t.maxWait))
		return "", fmt.Errorf("%w: %s", apperrors.ErrTooBusy, currency)
	}
	defer t.sem.Release(1)

	return t.next.FetchCSV(ctx, currency)
}

func (t *Throttle) acquire(ctx context.Context) bool {
	if t.sem.TryAcquire(1) {
		return true
	}
	if t.maxWait <= 0 {
		return false
	}
	waitCtx, cancel := context.WithTimeout(ctx, t.maxWait)
	defer cancel()
	return t.sem.Acquire(waitCtx, 1) == nil
}

// transientClassifier retries only failures IsTransient accepts.
type transientClassifier struct{}

func (transientClassifier) Classify(err error) retrier.Action {
	switch {
	case err == nil:
		return retrier.Succeed
	case IsTransient(err):
		return retrier.Retry
	default:
		return retrier.Fail
	}
}

// Retry re-runs transient failures with exponential backoff.
// Permanent failures (4xx, open breaker, cancellation) return immediately.
type Retry struct {
	next    Fetcher
	retrier *retrier.Retrier
	metrics *metrics.Metrics
}

// NewRetry wraps next so that a call is attempted at most attempts times.
// A positive maxBackoff caps the delay between attempts.
func NewRetry(next Fetcher, attempts int, initialBackoff, maxBackoff time.Duration, m *metrics.Metrics) *Retry {
	if attempts < 1 {
		attempts = 1
	}
	backoff := retrier.ExponentialBackoff(attempts-1, initialBackoff)
	if maxBackoff > 0 {
		backoff = retrier.LimitedExponentialBackoff(attempts-1, initialBackoff, maxBackoff)
	}
	r := retrier.New(backoff, transientClassifier{})
	r.SetJitter(0.25)
	return &Retry{next: next, retrier: r, metrics: m}
}

func (r *Retry) FetchCSV(ctx context.Context, currency string) (string, error) {
	var body string
	attempt := 0
	err := r.retrier.RunCtx(ctx, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			r.metrics.RecordSourceRequest("retry", 0)
		}
		var err error
		body, err = r.next.FetchCSV(ctx, currency)
		if err != nil && IsTransient(err) {
			middleware.GetLoggerFromCtx(ctx).Warn("Transient provider failure",
				slog.String("currency", currency),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
		}
		return err
	})
	if err != nil {
		return "", err
	}
	return body, nil
}

// BreakerConfig configures Breaker.
type BreakerConfig struct {
	Name             string
	FailureThreshold uint32        // consecutive transient failures that open the breaker
	OpenTimeout      time.Duration // time spent open before allowing trial calls
	HalfOpenMaxCalls uint32        // trial calls allowed while half-open
}

// Breaker fails fast with apperrors.ErrCircuitOpen after repeated transient failures.
// Permanent rejections such as HTTP 404 do not count against it.
type Breaker struct {
	next Fetcher
	cb   *gobreaker.CircuitBreaker[string]
}

// NewBreaker wraps next with a gobreaker circuit breaker.
func NewBreaker(next Fetcher, cfg BreakerConfig, m *metrics.Metrics) *Breaker {
	if cfg.Name == "" {
		cfg.Name = "bundesbank"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMaxCalls == 0 {
		cfg.HalfOpenMaxCalls = 1
	}

	m.SetBreakerState(metrics.BreakerClosed)
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenMaxCalls,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Default().Warn("Circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			m.SetBreakerState(breakerGauge(to))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !IsTransient(err)
		},
	}
	return &Breaker{next: next, cb: gobreaker.NewCircuitBreaker[string](settings)}
}

func (b *Breaker) FetchCSV(ctx context.Context, currency string) (string, error) {
	body, err := b.cb.Execute(func() (string, error) {
		return b.next.FetchCSV(ctx, currency)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %s", apperrors.ErrCircuitOpen, currency)
	}
	return body, err
}

// State exposes the current breaker state name, mainly for diagnostics.
func (b *Breaker) State() string {
	return b.cb.State().String()
}

func breakerGauge(s gobreaker.State) int {
	switch s {
	case gobreaker.StateOpen:
		return metrics.BreakerOpen
	case gobreaker.StateHalfOpen:
		return metrics.BreakerHalfOpen
	default:
		return metrics.BreakerClosed
	}
}

package bundesbank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/fx_reference_rates/internal/apperrors"
	"github.com/SscSPs/fx_reference_rates/internal/platform/metrics"
)

// ResilienceConfig holds the throttle, retry and breaker knobs.
type ResilienceConfig struct {
	MaxConcurrent   int64
	MaxWait         time.Duration
	RetryAttempts   int
	RetryBackoff    time.Duration
	RetryMaxBackoff time.Duration
	Breaker         BreakerConfig
}

// DefaultResilienceConfig mirrors the production defaults.
func DefaultResilienceConfig() ResilienceConfig {
	return ResilienceConfig{
		MaxConcurrent:   4,
		MaxWait:         2 * time.Second,
		RetryAttempts:   3,
		RetryBackoff:    500 * time.Millisecond,
		RetryMaxBackoff: 5 * time.Second,
		Breaker: BreakerConfig{
			Name:             "bundesbank",
			FailureThreshold: 5,
			OpenTimeout:      30 * time.Second,
			HalfOpenMaxCalls: 1,
		},
	}
}

// ResilientClient composes Throttle -> Retry -> Breaker -> inner Fetcher and
// normalises every failure into apperrors.ErrTooBusy, apperrors.ErrCircuitOpen
// or apperrors.ErrDownstreamUnavailable.
type ResilientClient struct {
	chain   Fetcher
	breaker *Breaker
}

// NewResilientClient wraps inner with the configured policies.
func NewResilientClient(inner Fetcher, cfg ResilienceConfig, m *metrics.Metrics) *ResilientClient {
	breaker := NewBreaker(inner, cfg.Breaker, m)
	retry := NewRetry(breaker, cfg.RetryAttempts, cfg.RetryBackoff, cfg.RetryMaxBackoff, m)
	throttle := NewThrottle(retry, cfg.MaxConcurrent, cfg.MaxWait, m)
	return &ResilientClient{chain: throttle, breaker: breaker}
}

// FetchCSV implements Fetcher.
func (c *ResilientClient) FetchCSV(ctx context.Context, currency string) (string, error) {
	body, err := c.chain.FetchCSV(ctx, currency)
	if err == nil {
		return body, nil
	}
	if errors.Is(err, apperrors.ErrTooBusy) || errors.Is(err, apperrors.ErrDownstreamUnavailable) {
		return "", err
	}
	return "", fmt.Errorf("%w: %s: %w", apperrors.ErrDownstreamUnavailable, currency, err)
}

// BreakerState returns the breaker state name ("closed", "half-open", "open").
func (c *ResilientClient) BreakerState() string {
	return c.breaker.State()
}

// Package bundesbank fetches daily EUR reference rates from the Deutsche Bundesbank
// time-series REST API and wraps the call in throttle, retry and circuit-breaker policies.
package bundesbank

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/fx_reference_rates/internal/middleware"
	"github.com/SscSPs/fx_reference_rates/internal/platform/metrics"
)

const (
	// DefaultBaseURL is the BBEX3 (exchange rates) dataflow root.
	DefaultBaseURL = "https://api.statistiken.bundesbank.de/rest/data/BBEX3"
	// DefaultFormatSuffix selects the EUR reference series as English CSV.
	DefaultFormatSuffix = "EUR.BB.AC.000?format=csv&lang=en"

	userAgent       = "fx-reference-rates/1.0"
	maxResponseSize = 16 << 20
)

// Fetcher returns the raw CSV published for one currency.
type Fetcher interface {
	FetchCSV(ctx context.Context, currency string) (string, error)
}

// StatusError is returned for a non-2xx provider response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned HTTP %d: %s", e.StatusCode, e.Body)
}

// Transient reports whether retrying the request may succeed.
func (e *StatusError) Transient() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusRequestTimeout
}

// IsTransient classifies an error from HTTPClient: network failures, timeouts,
// 5xx, 408 and 429 are transient; other HTTP statuses and cancellation are not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Transient()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}

// ClientConfig configures HTTPClient.
type ClientConfig struct {
	BaseURL      string
	FormatSuffix string
	Timeout      time.Duration
}

// HTTPClient performs the bare GET {BaseURL}/D.{currency}.{FormatSuffix}.
type HTTPClient struct {
	httpClient   *http.Client
	baseURL      string
	formatSuffix string
	metrics      *metrics.Metrics
}

// NewHTTPClient builds a client with the given per-request timeout (10s when unset).
func NewHTTPClient(cfg ClientConfig, m *metrics.Metrics) *HTTPClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.FormatSuffix == "" {
		cfg.FormatSuffix = DefaultFormatSuffix
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
	}

	return &HTTPClient{
		httpClient:   &http.Client{Timeout: cfg.Timeout, Transport: transport},
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		formatSuffix: cfg.FormatSuffix,
		metrics:      m,
	}
}

// URL returns the series URL for currency.
func (c *HTTPClient) URL(currency string) string {
	return fmt.Sprintf("%s/D.%s.%s", c.baseURL, currency, c.formatSuffix)
}

// FetchCSV implements Fetcher. An empty body is returned as "" with a nil error.
func (c *HTTPClient) FetchCSV(ctx context.Context, currency string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(currency), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordSourceRequest("transport_error", time.Since(start))
		return "", fmt.Errorf("GET %s: %w", currency, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.RecordSourceRequest("transport_error", elapsed)
		return "", fmt.Errorf("read body for %s: %w", currency, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.RecordSourceRequest(fmt.Sprintf("http_%d", resp.StatusCode), elapsed)
		snippet := string(body)
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return "", &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(snippet)}
	}

	c.metrics.RecordSourceRequest("success", elapsed)
	middleware.GetLoggerFromCtx(ctx).Debug("Fetched provider CSV", slog.String("currency", currency), slog.Int("bytes", len(body)), slog.Duration("latency", elapsed))
	return string(body), nil
}

package bundesbank_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/fx_reference_rates/internal/adapters/bundesbank"
	"github.com/SscSPs/fx_reference_rates/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "TIME_PERIOD,OBS_VALUE\n2024-01-02,1.0956\n"

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(baseURL string) *bundesbank.HTTPClient {
	return bundesbank.NewHTTPClient(bundesbank.ClientConfig{BaseURL: baseURL, Timeout: 2 * time.Second}, nil)
}

func fastConfig() bundesbank.ResilienceConfig {
	return bundesbank.ResilienceConfig{
		MaxConcurrent: 2,
		MaxWait:       0,
		RetryAttempts: 3,
		RetryBackoff:  time.Millisecond,
		Breaker: bundesbank.BreakerConfig{
			FailureThreshold: 5,
			OpenTimeout:      time.Minute,
			HalfOpenMaxCalls: 1,
		},
	}
}

func TestHTTPClient_FetchCSV(t *testing.T) {
	var gotPath, gotAccept string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		assert.Equal(t, "csv", r.URL.Query().Get("format"))
		_, _ = w.Write([]byte(sampleCSV))
	})

	body, err := newClient(srv.URL).FetchCSV(context.Background(), "USD")

	require.NoError(t, err)
	assert.Equal(t, sampleCSV, body)
	assert.Equal(t, "/D.USD.EUR.BB.AC.000", gotPath)
	assert.Equal(t, "text/csv", gotAccept)
}

func TestHTTPClient_URL(t *testing.T) {
	c := bundesbank.NewHTTPClient(bundesbank.ClientConfig{BaseURL: "https://example.test/rest/data/BBEX3/", FormatSuffix: "EUR.BB.AC.000?format=csv"}, nil)
	assert.Equal(t, "https://example.test/rest/data/BBEX3/D.GBP.EUR.BB.AC.000?format=csv", c.URL("GBP"))
}

func TestHTTPClient_StatusErrors(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "No results found", http.StatusNotFound)
	})

	_, err := newClient(srv.URL).FetchCSV(context.Background(), "XXX")

	var statusErr *bundesbank.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.False(t, bundesbank.IsTransient(err))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, bundesbank.IsTransient(&bundesbank.StatusError{StatusCode: 503}))
	assert.True(t, bundesbank.IsTransient(&bundesbank.StatusError{StatusCode: 429}))
	assert.False(t, bundesbank.IsTransient(&bundesbank.StatusError{StatusCode: 400}))
	assert.True(t, bundesbank.IsTransient(context.DeadlineExceeded))
	assert.False(t, bundesbank.IsTransient(context.Canceled))
	assert.False(t, bundesbank.IsTransient(apperrors.ErrCircuitOpen))
	assert.False(t, bundesbank.IsTransient(nil))
}

func TestResilientClient_RetriesTransientFailures(t *testing.T) {
	var hits int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(sampleCSV))
	})

	client := bundesbank.NewResilientClient(newClient(srv.URL), fastConfig(), nil)
	body, err := client.FetchCSV(context.Background(), "USD")

	require.NoError(t, err)
	assert.Equal(t, sampleCSV, body)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestResilientClient_GivesUpAfterMaxAttempts(t *testing.T) {
	var hits int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	})

	client := bundesbank.NewResilientClient(newClient(srv.URL), fastConfig(), nil)
	_, err := client.FetchCSV(context.Background(), "USD")

	require.ErrorIs(t, err, apperrors.ErrDownstreamUnavailable)
	assert.NotErrorIs(t, err, apperrors.ErrCircuitOpen)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestResilientClient_DoesNotRetryClientErrors(t *testing.T) {
	var hits int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	})

	cfg := fastConfig()
	cfg.Breaker.FailureThreshold = 1
	client := bundesbank.NewResilientClient(newClient(srv.URL), cfg, nil)

	for i := 0; i < 3; i++ {
		_, err := client.FetchCSV(context.Background(), "XXX")
		require.ErrorIs(t, err, apperrors.ErrDownstreamUnavailable)
		assert.NotErrorIs(t, err, apperrors.ErrCircuitOpen, "4xx must not open the breaker")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
	assert.Equal(t, "closed", client.BreakerState())
}

func TestResilientClient_BreakerOpensAndRecovers(t *testing.T) {
	var healthy atomic.Bool
	var hits int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if !healthy.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(sampleCSV))
	})

	cfg := fastConfig()
	cfg.RetryAttempts = 1
	cfg.Breaker.FailureThreshold = 2
	cfg.Breaker.OpenTimeout = 50 * time.Millisecond
	client := bundesbank.NewResilientClient(newClient(srv.URL), cfg, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := client.FetchCSV(ctx, "USD")
		require.ErrorIs(t, err, apperrors.ErrDownstreamUnavailable)
	}

	_, err := client.FetchCSV(ctx, "USD")
	require.ErrorIs(t, err, apperrors.ErrCircuitOpen)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "open breaker must not reach the provider")
	assert.Equal(t, "open", client.BreakerState())

	healthy.Store(true)
	time.Sleep(80 * time.Millisecond)

	body, err := client.FetchCSV(ctx, "USD")
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, body)
	assert.Equal(t, "closed", client.BreakerState())
}

func TestResilientClient_RetryStopsWhenBreakerOpens(t *testing.T) {
	var hits int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	cfg := fastConfig()
	cfg.RetryAttempts = 5
	cfg.Breaker.FailureThreshold = 2
	client := bundesbank.NewResilientClient(newClient(srv.URL), cfg, nil)

	_, err := client.FetchCSV(context.Background(), "USD")

	require.ErrorIs(t, err, apperrors.ErrCircuitOpen)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestResilientClient_EmptyBodyIsSuccess(t *testing.T) {
	var hits int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	})

	cfg := fastConfig()
	cfg.Breaker.FailureThreshold = 1
	client := bundesbank.NewResilientClient(newClient(srv.URL), cfg, nil)

	for i := 0; i < 3; i++ {
		body, err := client.FetchCSV(context.Background(), "USD")
		require.NoError(t, err)
		assert.Empty(t, body)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits), "no retries for an empty payload")
}

type blockingFetcher struct {
	started chan struct{}
	unblock chan struct{}
}

func (f *blockingFetcher) FetchCSV(ctx context.Context, currency string) (string, error) {
	f.started <- struct{}{}
	select {
	case <-f.unblock:
		return sampleCSV, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestThrottle_FailsFastWhenSaturated(t *testing.T) {
	inner := &blockingFetcher{started: make(chan struct{}, 1), unblock: make(chan struct{})}
	throttle := bundesbank.NewThrottle(inner, 1, 0, nil)

	done := make(chan error, 1)
	go func() {
		_, err := throttle.FetchCSV(context.Background(), "USD")
		done <- err
	}()
	<-inner.started

	_, err := throttle.FetchCSV(context.Background(), "GBP")
	require.ErrorIs(t, err, apperrors.ErrTooBusy)

	close(inner.unblock)
	require.NoError(t, <-done)
}

func TestThrottle_BoundedWait(t *testing.T) {
	inner := &blockingFetcher{started: make(chan struct{}, 2), unblock: make(chan struct{})}
	throttle := bundesbank.NewThrottle(inner, 1, 30*time.Millisecond, nil)

	go func() { _, _ = throttle.FetchCSV(context.Background(), "USD") }()
	<-inner.started

	start := time.Now()
	_, err := throttle.FetchCSV(context.Background(), "GBP")
	assert.ErrorIs(t, err, apperrors.ErrTooBusy)
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)

	close(inner.unblock)
}

type failingFetcher struct{ err error }

func (f failingFetcher) FetchCSV(context.Context, string) (string, error) { return "", f.err }

func TestResilientClient_WrapsUnknownErrors(t *testing.T) {
	cause := errors.New("tls: handshake failure")
	cfg := fastConfig()
	cfg.RetryAttempts = 1
	client := bundesbank.NewResilientClient(failingFetcher{err: cause}, cfg, nil)

	_, err := client.FetchCSV(context.Background(), "CHF")

	assert.ErrorIs(t, err, apperrors.ErrDownstreamUnavailable)
	assert.ErrorIs(t, err, cause)
}

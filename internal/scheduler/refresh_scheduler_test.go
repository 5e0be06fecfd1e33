package scheduler_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SscSPs/fx_reference_rates/internal/core/domain"
	"github.com/SscSPs/fx_reference_rates/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockIngestionService struct {
	mock.Mock
}

func (m *MockIngestionService) Ingest(ctx context.Context, currency string) (*domain.IngestResult, error) {
	args := m.Called(ctx, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IngestResult), args.Error(1)
}

func (m *MockIngestionService) IngestAll(ctx context.Context) []domain.IngestResult {
	args := m.Called(ctx)
	return args.Get(0).([]domain.IngestResult)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewRefreshScheduler_InvalidSpec(t *testing.T) {
	_, err := scheduler.NewRefreshScheduler(new(MockIngestionService), "every day please", 0, quietLogger())
	assert.Error(t, err)
}

func TestNewRefreshScheduler_DefaultSpec(t *testing.T) {
	_, err := scheduler.NewRefreshScheduler(new(MockIngestionService), "0 30 16 * * MON-FRI", 0, quietLogger())
	assert.NoError(t, err)
}

func TestRunOnce_AppliesTimeout(t *testing.T) {
	ingestion := new(MockIngestionService)
	results := []domain.IngestResult{
		{Currency: "USD", Status: domain.IngestStored, Inserted: 2},
		{Currency: "GBP", Status: domain.IngestUnavailable},
	}
	ingestion.On("IngestAll", mock.MatchedBy(func(ctx context.Context) bool {
		_, hasDeadline := ctx.Deadline()
		return hasDeadline
	})).Return(results).Once()

	s, err := scheduler.NewRefreshScheduler(ingestion, "@every 1h", time.Minute, quietLogger())
	require.NoError(t, err)

	got := s.RunOnce(context.Background())

	assert.Equal(t, results, got)
	ingestion.AssertExpectations(t)
}

func TestStart_FiresJobUntilContextCancelled(t *testing.T) {
	ingestion := new(MockIngestionService)
	fired := make(chan struct{}, 10)
	ingestion.On("IngestAll", mock.Anything).Return([]domain.IngestResult{}).Run(func(mock.Arguments) {
		fired <- struct{}{}
	})

	s, err := scheduler.NewRefreshScheduler(ingestion, "@every 1s", 0, quietLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled refresh did not run")
	}

	cancel()
	s.Stop()
}

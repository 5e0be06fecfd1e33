package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/fx_reference_rates/internal/core/domain"
	portsrepo "github.com/SscSPs/fx_reference_rates/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fx_reference_rates/internal/core/ports/services"
	"github.com/SscSPs/fx_reference_rates/internal/core/ports/sources"
	"github.com/SscSPs/fx_reference_rates/internal/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock ExchangeRateRepository ---
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) FindExact(ctx context.Context, currency string, date time.Time) (*domain.RateObservation, error) {
	args := m.Called(ctx, currency, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateObservation), args.Error(1)
}

func (m *MockExchangeRateRepository) FindExistingDates(ctx context.Context, currency string, dates []time.Time) (map[time.Time]struct{}, error) {
	args := m.Called(ctx, currency, dates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[time.Time]struct{}), args.Error(1)
}

func (m *MockExchangeRateRepository) FindLatestOnOrBefore(ctx context.Context, currency string, date time.Time) (*domain.RateObservation, error) {
	args := m.Called(ctx, currency, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateObservation), args.Error(1)
}

func (m *MockExchangeRateRepository) ListAll(ctx context.Context, page domain.PageRequest) (*domain.RatePage, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatePage), args.Error(1)
}

func (m *MockExchangeRateRepository) ListByDate(ctx context.Context, date time.Time, page domain.PageRequest) (*domain.RatePage, error) {
	args := m.Called(ctx, date, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatePage), args.Error(1)
}

func (m *MockExchangeRateRepository) InsertNew(ctx context.Context, rows []domain.RateObservation) (int, error) {
	args := m.Called(ctx, rows)
	return args.Int(0), args.Error(1)
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*MockExchangeRateRepository)(nil)

// --- Mock RateSource ---
type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) FetchCSV(ctx context.Context, currency string) (string, error) {
	args := m.Called(ctx, currency)
	return args.String(0), args.Error(1)
}

var _ sources.RateSource = (*MockRateSource)(nil)

// --- Mock IngestionService ---
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
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.IngestResult)
}

var _ portssvc.IngestionSvcFacade = (*MockIngestionService)(nil)

// --- Mock Publisher ---
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishRatesIngested(ctx context.Context, event events.RatesIngestedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

var _ events.Publisher = (*MockPublisher)(nil)

// --- Helpers ---

func day(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func observation(currency, date, rate string) *domain.RateObservation {
	return &domain.RateObservation{Currency: currency, Rate: decimal.RequireFromString(rate), RateDate: day(date)}
}

// staticSource answers every fetch with the same payload, or err when set.
type staticSource struct {
	payload string
	err     error
}

func (s staticSource) FetchCSV(_ context.Context, _ string) (string, error) {
	return s.payload, s.err
}

// gatedSource blocks every fetch until release is closed.
type gatedSource struct {
	payload string
	entered chan struct{}
	release chan struct{}
}

func newGatedSource(payload string) *gatedSource {
	return &gatedSource{payload: payload, entered: make(chan struct{}, 64), release: make(chan struct{})}
}

func (s *gatedSource) FetchCSV(ctx context.Context, _ string) (string, error) {
	s.entered <- struct{}{}
	select {
	case <-s.release:
		return s.payload, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

const usdPayload = "TIME_PERIOD,OBS_VALUE,OBS_STATUS\n" +
	"2024-01-02,1.0956,\n" +
	"2024-01-03,1.0919,\n" +
	"2024-01-04,1.0953,\n" +
	"2024-01-05,.,\n"

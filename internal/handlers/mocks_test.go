package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/fx_reference_rates/internal/core/domain"
	portssvc "github.com/SscSPs/fx_reference_rates/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock ExchangeRateService ---
type MockExchangeRateService struct {
	mock.Mock
}

func (m *MockExchangeRateService) ListCurrencies(ctx context.Context) []string {
	args := m.Called(ctx)
	return args.Get(0).([]string)
}

func (m *MockExchangeRateService) GetRates(ctx context.Context, date *time.Time, page domain.PageRequest) (*domain.RatePage, error) {
	args := m.Called(ctx, date, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatePage), args.Error(1)
}

func (m *MockExchangeRateService) ResolveRate(ctx context.Context, currency string, date time.Time) (*domain.ResolvedRate, error) {
	args := m.Called(ctx, currency, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResolvedRate), args.Error(1)
}

func (m *MockExchangeRateService) Convert(ctx context.Context, currency string, amount decimal.Decimal, date time.Time) (*domain.ConversionResult, error) {
	args := m.Called(ctx, currency, amount, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConversionResult), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.ExchangeRateSvcFacade = (*MockExchangeRateService)(nil)

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
	return args.Get(0).([]domain.IngestResult)
}

// Ensure mock implements the interface
var _ portssvc.IngestionSvcFacade = (*MockIngestionService)(nil)

func day(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func observation(currency, date, rate string) domain.RateObservation {
	return domain.RateObservation{Currency: currency, Rate: decimal.RequireFromString(rate), RateDate: day(date)}
}

func dateIs(expected string) interface{} {
	return mock.MatchedBy(func(d *time.Time) bool {
		if expected == "" {
			return d == nil
		}
		return d != nil && d.Equal(day(expected))
	})
}

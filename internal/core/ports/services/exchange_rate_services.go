package services

import (
	"context"
	"time"

	"github.com/SscSPs/fx_reference_rates/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExchangeRateReaderSvc defines read operations for exchange rate data
type ExchangeRateReaderSvc interface {
	// ListCurrencies returns the configured supported currency codes.
	ListCurrencies(ctx context.Context) []string

	// GetRates pages through stored rates, optionally restricted to one date.
	// An empty store triggers one load of all currencies before giving up with apperrors.ErrRateNotFound.
	GetRates(ctx context.Context, date *time.Time, page domain.PageRequest) (*domain.RatePage, error)

	// ResolveRate finds the rate for currency on date: exact, then after a refresh, then the latest prior.
	ResolveRate(ctx context.Context, currency string, date time.Time) (*domain.ResolvedRate, error)
}

// ConversionSvc converts foreign amounts into EUR.
type ConversionSvc interface {
	// Convert divides amount by the resolved rate, rounded half-up to 6 decimals.
	Convert(ctx context.Context, currency string, amount decimal.Decimal, date time.Time) (*domain.ConversionResult, error)
}

// ExchangeRateSvcFacade combines all exchange rate-related service interfaces
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	ConversionSvc
}

// IngestionSvcFacade pulls provider data into the store.
type IngestionSvcFacade interface {
	// Ingest refreshes one currency. Provider and lock problems are reported through
	// IngestResult.Status rather than as errors; only store failures are returned.
	Ingest(ctx context.Context, currency string) (*domain.IngestResult, error)

	// IngestAll refreshes every supported currency independently.
	IngestAll(ctx context.Context) []domain.IngestResult
}

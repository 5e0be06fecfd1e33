package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/fx_reference_rates/internal/core/domain"
)

// ExchangeRateReader defines read operations for stored rate observations.
// Single-row lookups return apperrors.ErrNotFound when nothing matches.
type ExchangeRateReader interface {
	// FindExact returns the observation for currency on exactly date.
	FindExact(ctx context.Context, currency string, date time.Time) (*domain.RateObservation, error)

	// FindExistingDates returns which of dates are already stored for currency, in one round trip.
	FindExistingDates(ctx context.Context, currency string, dates []time.Time) (map[time.Time]struct{}, error)

	// FindLatestOnOrBefore returns the most recent observation with rate_date <= date.
	FindLatestOnOrBefore(ctx context.Context, currency string, date time.Time) (*domain.RateObservation, error)

	// ListAll pages through every stored observation, newest date first.
	ListAll(ctx context.Context, page domain.PageRequest) (*domain.RatePage, error)

	// ListByDate pages through all currencies' observations for one date.
	ListByDate(ctx context.Context, date time.Time, page domain.PageRequest) (*domain.RatePage, error)
}

// ExchangeRateWriter defines write operations for rate observations.
type ExchangeRateWriter interface {
	// InsertNew stores rows atomically, silently ignoring (currency, rate_date) pairs that already exist.
	// It returns the number of rows actually inserted. A uniqueness race that cannot be absorbed
	// in-statement is reported as apperrors.ErrDuplicate.
	InsertNew(ctx context.Context, rows []domain.RateObservation) (int, error)
}

// ExchangeRateRepositoryFacade combines all exchange rate-related repository interfaces
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}


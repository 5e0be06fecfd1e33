// Package memory is an in-process exchange rate store with the same semantics as the
// PostgreSQL repository: unique (currency, rate_date), atomic batch insert, idempotent duplicates.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/fx_reference_rates/internal/apperrors"
	"github.com/SscSPs/fx_reference_rates/internal/core/domain"
	portsrepo "github.com/SscSPs/fx_reference_rates/internal/core/ports/repositories"
)

type rateKey struct {
	currency string
	date     time.Time
}

// ExchangeRateRepository keeps observations in a map guarded by a RWMutex.
type ExchangeRateRepository struct {
	mu    sync.RWMutex
	rates map[rateKey]domain.RateObservation
}

// NewExchangeRateRepository returns an empty store.
func NewExchangeRateRepository() *ExchangeRateRepository {
	return &ExchangeRateRepository{rates: make(map[rateKey]domain.RateObservation)}
}

// NewRepositoryProvider wires the in-memory repositories.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{ExchangeRateRepo: NewExchangeRateRepository()}
}

func (r *ExchangeRateRepository) FindExact(ctx context.Context, currency string, date time.Time) (*domain.RateObservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	obs, ok := r.rates[rateKey{currency, domain.DateOf(date)}]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no exchange rate for %s on %s", currency, date.Format(domain.DateLayout)))
	}
	return &obs, nil
}

func (r *ExchangeRateRepository) FindExistingDates(ctx context.Context, currency string, dates []time.Time) (map[time.Time]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	existing := make(map[time.Time]struct{})
	for _, d := range dates {
		day := domain.DateOf(d)
		if _, ok := r.rates[rateKey{currency, day}]; ok {
			existing[day] = struct{}{}
		}
	}
	return existing, nil
}

func (r *ExchangeRateRepository) FindLatestOnOrBefore(ctx context.Context, currency string, date time.Time) (*domain.RateObservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := domain.DateOf(date)
	var best *domain.RateObservation
	for k, obs := range r.rates {
		if k.currency != currency || k.date.After(limit) {
			continue
		}
		if best == nil || obs.RateDate.After(best.RateDate) {
			o := obs
			best = &o
		}
	}
	if best == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no exchange rate for %s on or before %s", currency, limit.Format(domain.DateLayout)))
	}
	return best, nil
}

// InsertNew stores rows whose key is not yet present and returns how many were added.
func (r *ExchangeRateRepository) InsertNew(ctx context.Context, rows []domain.RateObservation) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	inserted := 0
	for _, row := range rows {
		key := rateKey{row.Currency, domain.DateOf(row.RateDate)}
		if _, ok := r.rates[key]; ok {
			continue
		}
		row.RateDate = key.date
		r.rates[key] = row
		inserted++
	}
	return inserted, nil
}

func (r *ExchangeRateRepository) ListAll(ctx context.Context, page domain.PageRequest) (*domain.RatePage, error) {
	return r.list(ctx, page, func(domain.RateObservation) bool { return true })
}

func (r *ExchangeRateRepository) ListByDate(ctx context.Context, date time.Time, page domain.PageRequest) (*domain.RatePage, error) {
	day := domain.DateOf(date)
	return r.list(ctx, page, func(o domain.RateObservation) bool { return o.RateDate.Equal(day) })
}

// Count returns the number of stored observations.
func (r *ExchangeRateRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rates)
}

func (r *ExchangeRateRepository) list(ctx context.Context, page domain.PageRequest, keep func(domain.RateObservation) bool) (*domain.RatePage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	matched := make([]domain.RateObservation, 0, len(r.rates))
	for _, obs := range r.rates {
		if keep(obs) {
			matched = append(matched, obs)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].RateDate.Equal(matched[j].RateDate) {
			return matched[i].RateDate.After(matched[j].RateDate)
		}
		return matched[i].Currency < matched[j].Currency
	})

	start := page.Offset()
	if start < 0 || start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if page.Size > 0 && page.Size < end-start {
		end = start + page.Size
	}

	return &domain.RatePage{
		Items: matched[start:end],
		Page:  page.Page,
		Size:  page.Size,
		Total: len(matched),
	}, nil
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*ExchangeRateRepository)(nil)

package pgsql

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SscSPs/fx_reference_rates/internal/apperrors"
	"github.com/SscSPs/fx_reference_rates/internal/core/domain"
	"github.com/SscSPs/fx_reference_rates/internal/models"
	"github.com/SscSPs/fx_reference_rates/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const (
	selectRateColumns = `SELECT currency, rate, rate_date FROM exchange_rates`

	findExactQuery = selectRateColumns + `
		WHERE currency = $1 AND rate_date = $2`

	findLatestOnOrBeforeQuery = selectRateColumns + `
		WHERE currency = $1 AND rate_date <= $2
		ORDER BY rate_date DESC
		LIMIT 1`

	findExistingDatesQuery = `
		SELECT rate_date FROM exchange_rates
		WHERE currency = $1 AND rate_date = ANY($2)`

	insertRateQuery = `
		INSERT INTO exchange_rates (currency, rate, rate_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (currency, rate_date) DO NOTHING`

	countAllQuery = `SELECT COUNT(*) FROM exchange_rates`

	listAllQuery = selectRateColumns + `
		ORDER BY rate_date DESC, currency
		LIMIT $1 OFFSET $2`

	countByDateQuery = `SELECT COUNT(*) FROM exchange_rates WHERE rate_date = $1`

	listByDateQuery = selectRateColumns + `
		WHERE rate_date = $1
		ORDER BY currency
		LIMIT $2 OFFSET $3`
)

// PgxExchangeRateRepository implements repositories.ExchangeRateRepositoryFacade on PostgreSQL.
type PgxExchangeRateRepository struct {
	BaseRepository
}

// NewPgxExchangeRateRepository creates a new PgxExchangeRateRepository.
func NewPgxExchangeRateRepository(db DB) *PgxExchangeRateRepository {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{DB: db},
	}
}

// FindExact retrieves the observation for currency on date.
func (r *PgxExchangeRateRepository) FindExact(ctx context.Context, currency string, date time.Time) (*domain.RateObservation, error) {
	return r.findOne(ctx, findExactQuery, currency, domain.DateOf(date))
}

// FindLatestOnOrBefore retrieves the most recent observation dated on or before date.
func (r *PgxExchangeRateRepository) FindLatestOnOrBefore(ctx context.Context, currency string, date time.Time) (*domain.RateObservation, error) {
	return r.findOne(ctx, findLatestOnOrBeforeQuery, currency, domain.DateOf(date))
}

func (r *PgxExchangeRateRepository) findOne(ctx context.Context, query string, currency string, date time.Time) (*domain.RateObservation, error) {
	var modelRate models.ExchangeRate
	err := r.DB.QueryRow(ctx, query, currency, date).Scan(&modelRate.Currency, &modelRate.Rate, &modelRate.RateDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("no exchange rate for %s on or before %s", currency, date.Format(domain.DateLayout)))
		}
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to find exchange rate", err)
	}

	obs := mapping.ToDomainExchangeRate(modelRate)
	return &obs, nil
}

// FindExistingDates returns the subset of dates already stored for currency.
func (r *PgxExchangeRateRepository) FindExistingDates(ctx context.Context, currency string, dates []time.Time) (map[time.Time]struct{}, error) {
	existing := make(map[time.Time]struct{})
	if len(dates) == 0 {
		return existing, nil
	}

	normalized := make([]time.Time, len(dates))
	for i, d := range dates {
		normalized[i] = domain.DateOf(d)
	}

	rows, err := r.DB.Query(ctx, findExistingDatesQuery, currency, normalized)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to query existing rate dates", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to scan rate date", err)
		}
		existing[domain.DateOf(d)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "error iterating rate dates", err)
	}

	return existing, nil
}

// InsertNew inserts rows in a single transaction; rows whose (currency, rate_date) already exist are skipped.
func (r *PgxExchangeRateRepository) InsertNew(ctx context.Context, rows []domain.RateObservation) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, row := range rows {
		modelRate := mapping.ToModelExchangeRate(row)
		tag, err := tx.Exec(ctx, insertRateQuery, modelRate.Currency, modelRate.Rate, modelRate.RateDate)
		if err != nil {
			_ = r.Rollback(ctx, tx)
			if isUniqueViolation(err) {
				return 0, fmt.Errorf("%w: %s on %s", apperrors.ErrDuplicate, modelRate.Currency, modelRate.RateDate.Format(domain.DateLayout))
			}
			return 0, apperrors.NewAppError(http.StatusInternalServerError, "failed to insert exchange rate", err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := r.Commit(ctx, tx); err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: commit: %v", apperrors.ErrDuplicate, err)
		}
		return 0, err
	}
	return inserted, nil
}

// ListAll pages through all observations, newest first.
func (r *PgxExchangeRateRepository) ListAll(ctx context.Context, page domain.PageRequest) (*domain.RatePage, error) {
	var total int
	if err := r.DB.QueryRow(ctx, countAllQuery).Scan(&total); err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to count exchange rates", err)
	}
	if total == 0 {
		return &domain.RatePage{Items: []domain.RateObservation{}, Page: page.Page, Size: page.Size}, nil
	}

	items, err := r.list(ctx, listAllQuery, page.Size, page.Offset())
	if err != nil {
		return nil, err
	}
	return &domain.RatePage{Items: items, Page: page.Page, Size: page.Size, Total: total}, nil
}

// ListByDate pages through the observations of every currency for date.
func (r *PgxExchangeRateRepository) ListByDate(ctx context.Context, date time.Time, page domain.PageRequest) (*domain.RatePage, error) {
	day := domain.DateOf(date)

	var total int
	if err := r.DB.QueryRow(ctx, countByDateQuery, day).Scan(&total); err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to count exchange rates", err)
	}
	if total == 0 {
		return &domain.RatePage{Items: []domain.RateObservation{}, Page: page.Page, Size: page.Size}, nil
	}

	items, err := r.list(ctx, listByDateQuery, day, page.Size, page.Offset())
	if err != nil {
		return nil, err
	}
	return &domain.RatePage{Items: items, Page: page.Page, Size: page.Size, Total: total}, nil
}

func (r *PgxExchangeRateRepository) list(ctx context.Context, query string, args ...any) ([]domain.RateObservation, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to list exchange rates", err)
	}
	defer rows.Close()

	var modelRates []models.ExchangeRate
	for rows.Next() {
		var modelRate models.ExchangeRate
		if err := rows.Scan(&modelRate.Currency, &modelRate.Rate, &modelRate.RateDate); err != nil {
			return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to scan exchange rate", err)
		}
		modelRates = append(modelRates, modelRate)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "error iterating exchange rates", err)
	}

	return mapping.ToDomainExchangeRates(modelRates), nil
}

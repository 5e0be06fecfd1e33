package pgsql_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/SscSPs/fx_reference_rates/internal/apperrors"
	"github.com/SscSPs/fx_reference_rates/internal/core/domain"
	"github.com/SscSPs/fx_reference_rates/internal/repositories/database/pgsql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newRepo(t *testing.T) (pgxmock.PgxPoolIface, *pgsql.PgxExchangeRateRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, pgsql.NewPgxExchangeRateRepository(mock)
}

func TestFindExact_Found(t *testing.T) {
	mock, repo := newRepo(t)
	rate := decimal.RequireFromString("1.0956")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE currency = $1 AND rate_date = $2")).
		WithArgs("USD", day("2024-01-02")).
		WillReturnRows(pgxmock.NewRows([]string{"currency", "rate", "rate_date"}).
			AddRow("USD", rate, day("2024-01-02")))

	obs, err := repo.FindExact(context.Background(), "USD", day("2024-01-02"))

	require.NoError(t, err)
	assert.Equal(t, "USD", obs.Currency)
	assert.True(t, rate.Equal(obs.Rate))
	assert.Equal(t, day("2024-01-02"), obs.RateDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindExact_NotFound(t *testing.T) {
	mock, repo := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE currency = $1 AND rate_date = $2")).
		WithArgs("USD", day("2024-01-06")).
		WillReturnError(pgx.ErrNoRows)

	obs, err := repo.FindExact(context.Background(), "USD", day("2024-01-06"))

	assert.Nil(t, obs)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindLatestOnOrBefore(t *testing.T) {
	mock, repo := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("rate_date <= $2")).
		WithArgs("USD", day("2024-01-10")).
		WillReturnRows(pgxmock.NewRows([]string{"currency", "rate", "rate_date"}).
			AddRow("USD", decimal.RequireFromString("1.5"), day("2024-01-05")))

	obs, err := repo.FindLatestOnOrBefore(context.Background(), "USD", day("2024-01-10"))

	require.NoError(t, err)
	assert.Equal(t, day("2024-01-05"), obs.RateDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindLatestOnOrBefore_DatabaseError(t *testing.T) {
	mock, repo := newRepo(t)
	dbErr := errors.New("connection refused")

	mock.ExpectQuery(regexp.QuoteMeta("rate_date <= $2")).
		WithArgs("USD", day("2024-01-10")).
		WillReturnError(dbErr)

	_, err := repo.FindLatestOnOrBefore(context.Background(), "USD", day("2024-01-10"))

	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFindExistingDates(t *testing.T) {
	mock, repo := newRepo(t)
	dates := []time.Time{day("2024-01-02"), day("2024-01-03"), day("2024-01-04")}

	mock.ExpectQuery(regexp.QuoteMeta("rate_date = ANY($2)")).
		WithArgs("USD", dates).
		WillReturnRows(pgxmock.NewRows([]string{"rate_date"}).
			AddRow(day("2024-01-03")))

	existing, err := repo.FindExistingDates(context.Background(), "USD", dates)

	require.NoError(t, err)
	assert.Len(t, existing, 1)
	assert.Contains(t, existing, day("2024-01-03"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindExistingDates_EmptyInputSkipsQuery(t *testing.T) {
	mock, repo := newRepo(t)

	existing, err := repo.FindExistingDates(context.Background(), "USD", nil)

	require.NoError(t, err)
	assert.Empty(t, existing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertNew_CountsInsertedRows(t *testing.T) {
	mock, repo := newRepo(t)
	rows := []domain.RateObservation{
		{Currency: "USD", Rate: decimal.RequireFromString("1.09"), RateDate: day("2024-01-02")},
		{Currency: "USD", Rate: decimal.RequireFromString("1.10"), RateDate: day("2024-01-03")},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exchange_rates")).
		WithArgs("USD", pgxmock.AnyArg(), day("2024-01-02")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exchange_rates")).
		WithArgs("USD", pgxmock.AnyArg(), day("2024-01-03")).
		WillReturnResult(pgxmock.NewResult("INSERT", 0)) // already present, ON CONFLICT DO NOTHING
	mock.ExpectCommit()

	inserted, err := repo.InsertNew(context.Background(), rows)

	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertNew_UniqueViolationRollsBack(t *testing.T) {
	mock, repo := newRepo(t)
	rows := []domain.RateObservation{
		{Currency: "USD", Rate: decimal.RequireFromString("1.09"), RateDate: day("2024-01-02")},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exchange_rates")).
		WithArgs("USD", pgxmock.AnyArg(), day("2024-01-02")).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	inserted, err := repo.InsertNew(context.Background(), rows)

	assert.Zero(t, inserted)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertNew_OtherErrorRollsBack(t *testing.T) {
	mock, repo := newRepo(t)
	rows := []domain.RateObservation{
		{Currency: "USD", Rate: decimal.RequireFromString("1.09"), RateDate: day("2024-01-02")},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exchange_rates")).
		WithArgs("USD", pgxmock.AnyArg(), day("2024-01-02")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.InsertNew(context.Background(), rows)

	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertNew_NoRows(t *testing.T) {
	mock, repo := newRepo(t)

	inserted, err := repo.InsertNew(context.Background(), nil)

	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAll(t *testing.T) {
	mock, repo := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM exchange_rates")).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $1 OFFSET $2")).
		WithArgs(2, 2).
		WillReturnRows(pgxmock.NewRows([]string{"currency", "rate", "rate_date"}).
			AddRow("GBP", decimal.RequireFromString("0.86"), day("2024-01-02")))

	page, err := repo.ListAll(context.Background(), domain.PageRequest{Page: 2, Size: 2})

	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages())
	require.Len(t, page.Items, 1)
	assert.Equal(t, "GBP", page.Items[0].Currency)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByDate_Empty(t *testing.T) {
	mock, repo := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE rate_date = $1")).
		WithArgs(day("2024-01-06")).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

	page, err := repo.ListByDate(context.Background(), day("2024-01-06"), domain.PageRequest{Page: 1, Size: 20})

	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/fx_reference_rates/internal/apperrors"
	"github.com/SscSPs/fx_reference_rates/internal/core/domain"
	portsrepo "github.com/SscSPs/fx_reference_rates/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fx_reference_rates/internal/core/ports/services"
	"github.com/SscSPs/fx_reference_rates/internal/core/ports/sources"
	"github.com/SscSPs/fx_reference_rates/internal/events"
	"github.com/SscSPs/fx_reference_rates/internal/platform/metrics"
	"github.com/SscSPs/fx_reference_rates/internal/utils"
	"github.com/SscSPs/fx_reference_rates/internal/utils/keylock"
	"github.com/SscSPs/fx_reference_rates/internal/utils/ratecsv"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultIngestLockTimeout = 15 * time.Second
	defaultIngestParallelism = 2
)

// ingestionService implements the IngestionSvcFacade interface
type ingestionService struct {
	BaseService
	rateRepo    portsrepo.ExchangeRateRepositoryFacade
	source      sources.RateSource
	currencies  []string
	locks       *keylock.KeyLock
	lockTimeout time.Duration
	parallelism int
	publisher   events.Publisher
	metrics     *metrics.Metrics
	now         func() time.Time
}

// IngestionOption is a functional option for configuring the ingestion service
type IngestionOption func(*ingestionService)

// WithLockTimeout bounds how long Ingest waits for another ingestion of the same currency.
func WithLockTimeout(d time.Duration) IngestionOption {
	return func(s *ingestionService) {
		s.lockTimeout = d
	}
}

// WithIngestParallelism limits how many currencies IngestAll refreshes at once.
func WithIngestParallelism(n int) IngestionOption {
	return func(s *ingestionService) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// WithPublisher sends a RatesIngested event after every successful write.
func WithPublisher(p events.Publisher) IngestionOption {
	return func(s *ingestionService) {
		s.publisher = p
	}
}

// WithIngestionMetrics records ingestion outcomes.
func WithIngestionMetrics(m *metrics.Metrics) IngestionOption {
	return func(s *ingestionService) {
		s.metrics = m
	}
}

// NewIngestionService creates the ingestion pipeline for the given supported currencies.
func NewIngestionService(repo portsrepo.ExchangeRateRepositoryFacade, source sources.RateSource, currencies []string, options ...IngestionOption) portssvc.IngestionSvcFacade {
	svc := &ingestionService{
		rateRepo:    repo,
		source:      source,
		currencies:  append([]string(nil), currencies...),
		locks:       keylock.New(),
		lockTimeout: defaultIngestLockTimeout,
		parallelism: defaultIngestParallelism,
		now:         time.Now,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

func (s *ingestionService) Ingest(ctx context.Context, currency string) (*domain.IngestResult, error) {
	currency = utils.NormalizeCurrencyCode(currency)
	logger := s.GetLogger(ctx).With(slog.String("currency", currency))

	release, acquired := s.locks.Acquire(ctx, currency, s.lockTimeout)
	if !acquired {
		logger.Info("Ingestion already running for currency, skipping", slog.Duration("waited", s.lockTimeout))
		return s.finish(&domain.IngestResult{Currency: currency, Status: domain.IngestInProgress}), nil
	}
	defer release()

	raw, err := s.source.FetchCSV(ctx, currency)
	if err != nil {
		logger.Warn("Rate provider unavailable, no new data this cycle", slog.String("error", err.Error()))
		return s.finish(&domain.IngestResult{Currency: currency, Status: domain.IngestUnavailable}), nil
	}

	parsed := ratecsv.Parse(raw, currency, logger)
	if parsed.Empty() {
		logger.Info("Provider returned no usable rows", slog.Int("skipped", parsed.Skipped))
		return s.finish(&domain.IngestResult{Currency: currency, Status: domain.IngestEmpty, Skipped: parsed.Skipped}), nil
	}

	observations := uniqueByDate(parsed.Observations(currency))
	dates := make([]time.Time, len(observations))
	for i, obs := range observations {
		dates[i] = obs.RateDate
	}

	existing, err := s.rateRepo.FindExistingDates(ctx, currency, dates)
	if err != nil {
		s.LogError(ctx, err, "Failed to check stored rate dates", slog.String("currency", currency))
		s.finish(&domain.IngestResult{Currency: currency, Status: domain.IngestFailed, Skipped: parsed.Skipped})
		return nil, fmt.Errorf("check stored dates for %s: %w", currency, err)
	}

	fresh := make([]domain.RateObservation, 0, len(observations))
	for _, obs := range observations {
		if _, stored := existing[obs.RateDate]; !stored {
			fresh = append(fresh, obs)
		}
	}

	if len(fresh) == 0 {
		logger.Debug("All parsed rates already stored", slog.Int("parsed", len(observations)))
		return s.finish(&domain.IngestResult{
			Currency:     currency,
			Status:       domain.IngestUpToDate,
			Observations: observations,
			Skipped:      parsed.Skipped,
		}), nil
	}

	inserted, err := s.rateRepo.InsertNew(ctx, fresh)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Info("Concurrent writer stored the rates first", slog.String("error", err.Error()))
			return s.finish(&domain.IngestResult{
				Currency:     currency,
				Status:       domain.IngestUpToDate,
				Observations: observations,
				Skipped:      parsed.Skipped,
			}), nil
		}
		s.LogError(ctx, err, "Failed to store exchange rates", slog.String("currency", currency), slog.Int("rows", len(fresh)))
		s.finish(&domain.IngestResult{Currency: currency, Status: domain.IngestFailed, Skipped: parsed.Skipped})
		return nil, fmt.Errorf("store rates for %s: %w", currency, err)
	}

	logger.Info("Stored new exchange rates", slog.Int("inserted", inserted), slog.Int("parsed", len(observations)), slog.Int("skipped", parsed.Skipped))
	if inserted > 0 {
		s.publish(ctx, logger, currency, inserted, fresh)
	}

	return s.finish(&domain.IngestResult{
		Currency:     currency,
		Status:       domain.IngestStored,
		Observations: fresh,
		Inserted:     inserted,
		Skipped:      parsed.Skipped,
	}), nil
}

func (s *ingestionService) IngestAll(ctx context.Context) []domain.IngestResult {
	results := make([]domain.IngestResult, len(s.currencies))

	var g errgroup.Group
	g.SetLimit(s.parallelism)
	for i, currency := range s.currencies {
		i, currency := i, currency
		g.Go(func() error {
			res, err := s.Ingest(ctx, currency)
			if err != nil {
				results[i] = domain.IngestResult{Currency: currency, Status: domain.IngestFailed}
				return nil
			}
			results[i] = *res
			return nil
		})
	}
	_ = g.Wait()

	s.LogInfo(ctx, "Finished loading all currencies", slog.Int("currencies", len(results)))
	return results
}

func (s *ingestionService) finish(res *domain.IngestResult) *domain.IngestResult {
	s.metrics.RecordIngestion(res.Currency, string(res.Status), res.Inserted, res.Skipped)
	return res
}

func (s *ingestionService) publish(ctx context.Context, logger *slog.Logger, currency string, inserted int, rows []domain.RateObservation) {
	if s.publisher == nil {
		return
	}

	first, last := rows[0].RateDate, rows[0].RateDate
	for _, row := range rows[1:] {
		if row.RateDate.Before(first) {
			first = row.RateDate
		}
		if row.RateDate.After(last) {
			last = row.RateDate
		}
	}

	event := events.RatesIngestedEvent{
		EventID:    uuid.NewString(),
		Currency:   currency,
		Inserted:   inserted,
		FirstDate:  first.Format(domain.DateLayout),
		LastDate:   last.Format(domain.DateLayout),
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.PublishRatesIngested(ctx, event); err != nil {
		logger.Warn("Failed to publish rates ingested event", slog.String("event_id", event.EventID), slog.String("error", err.Error()))
	}
}

// uniqueByDate keeps the first observation seen for each date.
func uniqueByDate(rows []domain.RateObservation) []domain.RateObservation {
	seen := make(map[time.Time]struct{}, len(rows))
	out := make([]domain.RateObservation, 0, len(rows))
	for _, row := range rows {
		if _, dup := seen[row.RateDate]; dup {
			continue
		}
		seen[row.RateDate] = struct{}{}
		out = append(out, row)
	}
	return out
}

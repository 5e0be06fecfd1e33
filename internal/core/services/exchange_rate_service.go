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
	"github.com/SscSPs/fx_reference_rates/internal/platform/metrics"
	"github.com/SscSPs/fx_reference_rates/internal/utils"
	"github.com/SscSPs/fx_reference_rates/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// exchangeRateService resolves and converts rates, refreshing from the provider on a miss.
type exchangeRateService struct {
	BaseService
	rateRepo   portsrepo.ExchangeRateReader
	ingestion  portssvc.IngestionSvcFacade
	currencies []string
	metrics    *metrics.Metrics
}

// ExchangeRateOption is a functional option for configuring the exchange rate service
type ExchangeRateOption func(*exchangeRateService)

// WithExchangeRateMetrics records resolution tiers and conversion outcomes.
func WithExchangeRateMetrics(m *metrics.Metrics) ExchangeRateOption {
	return func(s *exchangeRateService) {
		s.metrics = m
	}
}

// NewExchangeRateService creates a new exchange rate service.
func NewExchangeRateService(repo portsrepo.ExchangeRateReader, ingestion portssvc.IngestionSvcFacade, currencies []string, options ...ExchangeRateOption) portssvc.ExchangeRateSvcFacade {
	svc := &exchangeRateService{
		rateRepo:   repo,
		ingestion:  ingestion,
		currencies: append([]string(nil), currencies...),
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

func (s *exchangeRateService) ListCurrencies(_ context.Context) []string {
	return append([]string(nil), s.currencies...)
}

func (s *exchangeRateService) GetRates(ctx context.Context, date *time.Time, page domain.PageRequest) (*domain.RatePage, error) {
	list := func() (*domain.RatePage, error) {
		if date != nil {
			return s.rateRepo.ListByDate(ctx, *date, page)
		}
		return s.rateRepo.ListAll(ctx, page)
	}

	rates, err := list()
	if err != nil {
		s.LogError(ctx, err, "Failed to list exchange rates")
		return nil, err
	}
	if rates.Total > 0 {
		return rates, nil
	}

	s.LogInfo(ctx, "No stored rates for query, loading all currencies")
	s.ingestion.IngestAll(ctx)

	rates, err = list()
	if err != nil {
		s.LogError(ctx, err, "Failed to list exchange rates after load")
		return nil, err
	}
	if rates.Total == 0 {
		if date != nil {
			return nil, fmt.Errorf("%w: no exchange rate data available for date: %s", apperrors.ErrRateNotFound, date.Format(domain.DateLayout))
		}
		return nil, fmt.Errorf("%w: no exchange rate data available", apperrors.ErrRateNotFound)
	}
	return rates, nil
}

// ResolveRate walks exact match, one synchronous refresh, then the latest rate on or before date.
func (s *exchangeRateService) ResolveRate(ctx context.Context, currency string, date time.Time) (*domain.ResolvedRate, error) {
	currency = utils.NormalizeCurrencyCode(currency)
	day := domain.DateOf(date)
	logger := s.GetLogger(ctx).With(slog.String("currency", currency), slog.String("date", day.Format(domain.DateLayout)))

	obs, err := s.rateRepo.FindExact(ctx, currency, day)
	if err == nil {
		return s.resolved(obs, day, domain.TierExact), nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to look up exchange rate", slog.String("currency", currency))
		return nil, err
	}

	res, err := s.ingestion.Ingest(ctx, currency)
	if err != nil {
		logger.Warn("On-demand refresh failed, using fallback lookup", slog.String("error", err.Error()))
	} else {
		logger.Debug("On-demand refresh finished", slog.String("status", string(res.Status)), slog.Int("inserted", res.Inserted))
		obs, err = s.rateRepo.FindExact(ctx, currency, day)
		if err == nil {
			return s.resolved(obs, day, domain.TierRefreshed), nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to look up exchange rate after refresh", slog.String("currency", currency))
			return nil, err
		}
	}

	obs, err = s.rateRepo.FindLatestOnOrBefore(ctx, currency, day)
	if err == nil {
		logger.Info("Using most recent prior exchange rate", slog.String("rate_date", obs.RateDate.Format(domain.DateLayout)))
		return s.resolved(obs, day, domain.TierFallback), nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed fallback exchange rate lookup", slog.String("currency", currency))
		return nil, err
	}

	s.metrics.RecordResolution("NOT_FOUND")
	return nil, fmt.Errorf("%w: %s on or before %s", apperrors.ErrRateNotFound, currency, day.Format(domain.DateLayout))
}

func (s *exchangeRateService) Convert(ctx context.Context, currency string, amount decimal.Decimal, date time.Time) (*domain.ConversionResult, error) {
	if !amount.IsPositive() {
		s.metrics.RecordConversion("invalid_amount")
		return nil, fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrValidation)
	}

	resolved, err := s.ResolveRate(ctx, currency, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrRateNotFound) {
			s.metrics.RecordConversion("rate_not_found")
		} else {
			s.metrics.RecordConversion("error")
		}
		return nil, err
	}

	converted, err := accounting.ConvertAmount(amount, resolved.Observation.Rate)
	if err != nil {
		s.LogError(ctx, err, "Cannot convert with stored rate",
			slog.String("currency", resolved.Observation.Currency),
			slog.String("rate_date", resolved.Observation.RateDate.Format(domain.DateLayout)))
		s.metrics.RecordConversion("invalid_rate")
		return nil, err
	}

	s.metrics.RecordConversion("success")
	return &domain.ConversionResult{
		Currency:        resolved.Observation.Currency,
		OriginalAmount:  amount,
		RateUsed:        resolved.Observation.Rate,
		ConvertedAmount: converted,
		RequestedDate:   resolved.RequestedDate,
		RateDateUsed:    resolved.Observation.RateDate,
		FallbackUsed:    resolved.FallbackUsed(),
	}, nil
}

func (s *exchangeRateService) resolved(obs *domain.RateObservation, requested time.Time, tier domain.ResolutionTier) *domain.ResolvedRate {
	s.metrics.RecordResolution(string(tier))
	return &domain.ResolvedRate{
		Observation:   *obs,
		RequestedDate: requested,
		Tier:          tier,
	}
}

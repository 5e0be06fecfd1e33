package services

import (
	portsrepo "github.com/SscSPs/fx_reference_rates/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fx_reference_rates/internal/core/ports/services"
	"github.com/SscSPs/fx_reference_rates/internal/core/ports/sources"
	"github.com/SscSPs/fx_reference_rates/internal/events"
	"github.com/SscSPs/fx_reference_rates/internal/platform/config"
	"github.com/SscSPs/fx_reference_rates/internal/platform/metrics"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, source sources.RateSource, publisher events.Publisher, m *metrics.Metrics) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Ingestion first since the rate service refreshes through it
	container.Ingestion = NewIngestionService(
		repos.ExchangeRateRepo,
		source,
		cfg.SupportedCurrencies,
		WithLockTimeout(cfg.IngestLockTimeout),
		WithIngestParallelism(int(cfg.SourceMaxConcurrent)),
		WithPublisher(publisher),
		WithIngestionMetrics(m),
	)

	container.ExchangeRate = NewExchangeRateService(
		repos.ExchangeRateRepo,
		container.Ingestion,
		cfg.SupportedCurrencies,
		WithExchangeRateMetrics(m),
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.IngestionSvcFacade    = (*ingestionService)(nil)
	_ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)
)

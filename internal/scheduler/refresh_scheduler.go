package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/fx_reference_rates/internal/core/domain"
	portssvc "github.com/SscSPs/fx_reference_rates/internal/core/ports/services"
	"github.com/robfig/cron/v3"
)

// RefreshScheduler runs IngestAll for every supported currency on a cron schedule.
type RefreshScheduler struct {
	cron      *cron.Cron
	ingestion portssvc.IngestionSvcFacade
	logger    *slog.Logger
	timeout   time.Duration
	baseCtx   context.Context
}

// NewRefreshScheduler parses schedule (six fields, seconds first) and registers the refresh job.
// timeout bounds a single run; zero means no bound beyond the scheduler context.
func NewRefreshScheduler(ingestion portssvc.IngestionSvcFacade, schedule string, timeout time.Duration, logger *slog.Logger) (*RefreshScheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &RefreshScheduler{
		ingestion: ingestion,
		logger:    logger.With(slog.String("component", "refresh_scheduler")),
		timeout:   timeout,
		baseCtx:   context.Background(),
	}

	// A run still in progress suppresses the next tick.
	s.cron = cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := s.cron.AddFunc(schedule, func() { s.RunOnce(s.baseCtx) }); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins firing the job in the background. Jobs receive ctx; cancelling it stops the scheduler.
func (s *RefreshScheduler) Start(ctx context.Context) {
	s.baseCtx = ctx
	s.cron.Start()
	s.logger.Info("Starting refresh scheduler", slog.Time("next_run", s.nextRun()))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
}

// Stop prevents further runs and waits for a running job to return.
func (s *RefreshScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Stopped refresh scheduler")
}

// RunOnce performs one refresh of all currencies and logs a status summary.
func (s *RefreshScheduler) RunOnce(ctx context.Context) []domain.IngestResult {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	results := s.ingestion.IngestAll(ctx)

	counts := make(map[domain.IngestStatus]int, len(results))
	inserted := 0
	for _, r := range results {
		counts[r.Status]++
		inserted += r.Inserted
		if r.Status == domain.IngestFailed || r.Status == domain.IngestUnavailable {
			s.logger.Warn("Scheduled refresh did not complete for currency",
				slog.String("currency", r.Currency), slog.String("status", string(r.Status)))
		}
	}

	s.logger.Info("Scheduled refresh finished",
		slog.Int("currencies", len(results)),
		slog.Int("inserted", inserted),
		slog.Int("stored", counts[domain.IngestStored]),
		slog.Int("up_to_date", counts[domain.IngestUpToDate]),
		slog.Duration("duration", time.Since(start)))
	return results
}

func (s *RefreshScheduler) nextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

package poller

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/arbitrage-scanner-service/internal/metrics"
	"github.com/cypherlabdev/arbitrage-scanner-service/internal/oddsapi"
	"github.com/cypherlabdev/arbitrage-scanner-service/internal/service"
	"github.com/cypherlabdev/arbitrage-scanner-service/pkg/arbitrage"
)

const sourcePoller = "poller"

// Fetcher fetches raw events from an odds provider
type Fetcher interface {
	FetchOdds(ctx context.Context) ([]oddsapi.Event, error)
}

// Poller periodically fetches odds, flattens them into records and scans them
type Poller struct {
	fetcher  Fetcher
	scanner  service.RecordScanner
	schedule string
	logger   zerolog.Logger
}

// NewPoller creates a poller. schedule is a cron expression with a seconds field.
func NewPoller(schedule string, fetcher Fetcher, scanner service.RecordScanner, logger zerolog.Logger) *Poller {
	return &Poller{
		fetcher:  fetcher,
		scanner:  scanner,
		schedule: schedule,
		logger:   logger.With().Str("component", "odds_poller").Logger(),
	}
}

// Start polls once immediately, then on every schedule tick until ctx is done.
// A tick that fires while the previous poll is still running is skipped.
func (p *Poller) Start(ctx context.Context) error {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	if _, err := c.AddFunc(p.schedule, func() { p.run(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule odds polling %q: %w", p.schedule, err)
	}

	p.logger.Info().Str("schedule", p.schedule).Msg("started odds polling")

	p.run(ctx)
	c.Start()

	<-ctx.Done()

	stopped := c.Stop()
	<-stopped.Done()
	p.logger.Info().Msg("stopped odds polling")

	return nil
}

// Poll runs a single fetch, flatten and scan cycle
func (p *Poller) Poll(ctx context.Context) (*arbitrage.ScanResult, error) {
	events, err := p.fetcher.FetchOdds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch odds: %w", err)
	}

	records, rejected := oddsapi.Flatten(events)
	for _, err := range rejected {
		p.logger.Warn().Err(err).Msg("skipping odds data")
	}
	metrics.RecordsRejectedTotal.WithLabelValues("ingest").Add(float64(len(rejected)))

	batchID := uuid.NewString()
	result, err := p.scanner.ScanRecords(ctx, sourcePoller, batchID, records, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to scan polled odds: %w", err)
	}

	p.logger.Info().
		Str("batch_id", batchID).
		Int("events", len(events)).
		Int("records", len(records)).
		Int("rejected", len(rejected)).
		Int("opportunities", len(result.Opportunities)).
		Msg("polled odds")

	return result, nil
}

func (p *Poller) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := p.Poll(ctx); err != nil {
		p.logger.Error().Err(err).Msg("odds poll failed")
	}
}

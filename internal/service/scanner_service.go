package service

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/arbitrage-scanner-service/internal/metrics"
	"github.com/cypherlabdev/arbitrage-scanner-service/internal/models"
	"github.com/cypherlabdev/arbitrage-scanner-service/pkg/arbitrage"
)

// ScannerService orchestrates arbitrage scans with caching and publishing
type ScannerService struct {
	scanner      Scanner
	cache        Cache
	publisher    Publisher // Optional
	defaultStake decimal.Decimal
	logger       zerolog.Logger
}

// NewScannerService creates a new scanner service. publisher may be nil.
func NewScannerService(
	scanner Scanner,
	cache Cache,
	publisher Publisher,
	defaultStake decimal.Decimal,
	logger zerolog.Logger,
) *ScannerService {
	return &ScannerService{
		scanner:      scanner,
		cache:        cache,
		publisher:    publisher,
		defaultStake: defaultStake,
		logger:       logger.With().Str("component", "scanner_service").Logger(),
	}
}

// ScanRecords scans a batch of odds records, then caches and publishes what it finds.
// A nil stake falls back to the configured default. Only an invalid stake or engine failure
// is returned as an error; cache and publish failures are logged.
func (s *ScannerService) ScanRecords(
	ctx context.Context,
	source string,
	batchID string,
	records []models.OddsRecord,
	stake *decimal.Decimal,
) (*arbitrage.ScanResult, error) {
	st := s.defaultStake
	if stake != nil {
		st = *stake
	}

	timer := prometheus.NewTimer(metrics.ScanDurationSeconds)
	result, err := s.scanner.Scan(records, st)
	timer.ObserveDuration()
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	s.recordMetrics(source, len(records), result)

	s.refreshCache(ctx, records, result.Opportunities)

	if s.publisher != nil && len(result.Opportunities) > 0 {
		if err := s.publisher.Publish(ctx, batchID, result.Opportunities); err != nil {
			s.logger.Warn().
				Err(err).
				Str("batch_id", batchID).
				Int("count", len(result.Opportunities)).
				Msg("failed to publish opportunities")
			// Don't fail the scan on publish errors
		}
	}

	logEvent := s.logger.Info()
	if len(result.Opportunities) > 0 {
		best := result.Opportunities[0]
		logEvent = logEvent.
			Str("best_event_id", best.EventID).
			Str("best_profit_percent", best.ProfitPercent.StringFixed(2))
	}
	logEvent.
		Str("source", source).
		Str("batch_id", batchID).
		Str("stake", st.String()).
		Int("records", len(records)).
		Int("malformed", len(result.Malformed)).
		Int("opportunities", len(result.Opportunities)).
		Msg("scanned odds batch")

	return result, nil
}

// TopOpportunities returns the most profitable cached opportunities
func (s *ScannerService) TopOpportunities(ctx context.Context, limit int) ([]*models.ArbitrageOpportunity, error) {
	opps, err := s.cache.GetTop(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve top opportunities: %w", err)
	}
	return opps, nil
}

// Opportunity returns a single cached opportunity by ID
func (s *ScannerService) Opportunity(ctx context.Context, id string) (*models.ArbitrageOpportunity, error) {
	opp, err := s.cache.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve opportunity: %w", err)
	}
	return opp, nil
}

// OpportunitiesByEvent returns all cached opportunities for an event
func (s *ScannerService) OpportunitiesByEvent(ctx context.Context, eventID string) ([]*models.ArbitrageOpportunity, error) {
	opps, err := s.cache.GetByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve opportunities for event: %w", err)
	}

	s.logger.Debug().
		Str("event_id", eventID).
		Int("count", len(opps)).
		Msg("retrieved opportunities by event")

	return opps, nil
}

// refreshCache stores new opportunities and clears events that no longer have any
func (s *ScannerService) refreshCache(ctx context.Context, records []models.OddsRecord, opps []*models.ArbitrageOpportunity) {
	withOpps := make(map[string]struct{}, len(opps))
	for _, opp := range opps {
		withOpps[opp.EventID] = struct{}{}
	}

	if err := s.cache.SetBatch(ctx, opps); err != nil {
		s.logger.Warn().
			Err(err).
			Int("count", len(opps)).
			Msg("failed to cache opportunities")
	}

	cleared := make(map[string]struct{})
	for _, r := range records {
		if _, ok := withOpps[r.EventID]; ok {
			continue
		}
		if _, ok := cleared[r.EventID]; ok {
			continue
		}
		cleared[r.EventID] = struct{}{}
		if err := s.cache.ClearEvent(ctx, r.EventID); err != nil {
			s.logger.Warn().Err(err).Str("event_id", r.EventID).Msg("failed to clear stale opportunities")
		}
	}
}

func (s *ScannerService) recordMetrics(source string, records int, result *arbitrage.ScanResult) {
	metrics.ScansTotal.WithLabelValues(source).Inc()
	metrics.RecordsScannedTotal.Add(float64(records))
	metrics.CombinationsTestedTotal.Add(float64(result.CombinationsTested))
	metrics.RecordsRejectedTotal.WithLabelValues("detector").Add(float64(len(result.Malformed)))
	metrics.IncompleteMarketsTotal.Add(float64(result.IncompleteGroups))

	for _, opp := range result.Opportunities {
		metrics.OpportunitiesDetectedTotal.WithLabelValues(string(opp.MarketType)).Inc()
		metrics.OpportunityProfitPercent.Observe(opp.ProfitPercent.InexactFloat64())
	}
}

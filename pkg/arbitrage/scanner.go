package arbitrage

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/cypherlabdev/arbitrage-scanner-service/internal/models"
)

// ScanResult holds the ranked opportunities of one scan plus what was skipped along the way
type ScanResult struct {
	Opportunities      []*models.ArbitrageOpportunity
	GroupsScanned      int
	IncompleteGroups   int
	CombinationsTested int
	BelowThreshold     int     // Qualifying combinations dropped by MinProfitPercent
	Malformed          []error // *MalformedRecordError for every excluded record
}

// Scanner runs grouping, detection, allocation and ranking over a batch of odds records
type Scanner struct {
	params   models.ScanParams
	detector *Detector
	logger   zerolog.Logger
}

// NewScanner creates a new arbitrage scanner
func NewScanner(params models.ScanParams, logger zerolog.Logger) *Scanner {
	return &Scanner{
		params:   params,
		detector: NewDetector(logger),
		logger:   logger.With().Str("component", "scanner").Logger(),
	}
}

type groupResult struct {
	opportunities []*models.ArbitrageOpportunity
	tested        int
	below         int
	incomplete    bool
	malformed     []error
}

// Scan finds every arbitrage in records and allocates stake to each one.
// An invalid stake fails the whole scan; bad records and incomplete markets are skipped.
func (s *Scanner) Scan(records []models.OddsRecord, stake decimal.Decimal) (*ScanResult, error) {
	if err := ValidateStake(stake); err != nil {
		return nil, err
	}

	groups := GroupRecords(records)
	results := make([]groupResult, len(groups))

	var g errgroup.Group
	if s.params.Workers > 1 {
		g.SetLimit(s.params.Workers)
	} else {
		g.SetLimit(1)
	}

	for i, group := range groups {
		g.Go(func() error {
			res, err := s.scanGroup(group, stake)
			if err != nil {
				return fmt.Errorf("failed to scan market %s: %w", group.Key, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &ScanResult{GroupsScanned: len(groups)}
	var found []*models.ArbitrageOpportunity
	for _, res := range results {
		found = append(found, res.opportunities...)
		out.CombinationsTested += res.tested
		out.BelowThreshold += res.below
		out.Malformed = append(out.Malformed, res.malformed...)
		if res.incomplete {
			out.IncompleteGroups++
		}
	}
	out.Opportunities = Rank(found)

	s.logger.Info().
		Int("records", len(records)).
		Int("groups", out.GroupsScanned).
		Int("incomplete_groups", out.IncompleteGroups).
		Int("malformed_records", len(out.Malformed)).
		Int("combinations_tested", out.CombinationsTested).
		Int("opportunities", len(out.Opportunities)).
		Msg("scan complete")

	return out, nil
}

func (s *Scanner) scanGroup(group *MarketGroup, stake decimal.Decimal) (groupResult, error) {
	combos, prepared := s.detector.Detect(group)
	res := groupResult{
		tested:     prepared.Size(),
		incomplete: prepared.Incomplete != nil,
		malformed:  prepared.Malformed,
	}

	for _, c := range combos {
		opp, err := Allocate(c, stake)
		if err != nil {
			return res, err
		}
		if opp.ProfitPercent.LessThan(s.params.MinProfitPercent) {
			res.below++
			continue
		}
		res.opportunities = append(res.opportunities, opp)
	}

	return res, nil
}

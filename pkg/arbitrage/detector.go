package arbitrage

import (
	"iter"
	"math/big"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/arbitrage-scanner-service/internal/models"
)

// Combination picks exactly one record per required label of a market group.
// Legs follow the canonical label order of the market type.
type Combination struct {
	Key      MarketKey
	HomeTeam string
	AwayTeam string
	Line     *decimal.Decimal
	Legs     []models.OddsRecord
}

// ImpliedProbability returns the exact sum of 1/price over all legs
func (c Combination) ImpliedProbability() *big.Rat {
	sum := new(big.Rat)
	for _, leg := range c.Legs {
		sum.Add(sum, impliedProbability(leg.Price))
	}
	return sum
}

// Qualifies reports whether the combination is a sure bet: combined implied probability strictly below 1.
// Exact rational arithmetic keeps a probability of exactly 1 out of the results.
func Qualifies(c Combination) bool {
	if len(c.Legs) == 0 {
		return false
	}
	return c.ImpliedProbability().Cmp(ratOne) < 0
}

// PreparedGroup is a market group whose valid records are bucketed by required label
type PreparedGroup struct {
	Group      *MarketGroup
	HomeTeam   string // Taken from the first valid record
	AwayTeam   string
	Labels     []models.OutcomeLabel
	Malformed  []error                // One *MalformedRecordError per excluded record
	Incomplete *IncompleteMarketError // Set when a required label has no valid quote

	buckets [][]models.OddsRecord
}

// Combinations lazily enumerates the full cross-product of the label buckets.
// Incomplete groups yield nothing.
func (p *PreparedGroup) Combinations() iter.Seq[Combination] {
	return func(yield func(Combination) bool) {
		if p.Incomplete != nil || len(p.buckets) == 0 {
			return
		}

		idx := make([]int, len(p.buckets))
		for {
			legs := make([]models.OddsRecord, len(p.buckets))
			for i, bucket := range p.buckets {
				legs[i] = bucket[idx[i]]
			}
			c := Combination{
				Key:      p.Group.Key,
				HomeTeam: p.HomeTeam,
				AwayTeam: p.AwayTeam,
				Line:     p.Group.Line,
				Legs:     legs,
			}
			if !yield(c) {
				return
			}

			// Advance the odometer, last label fastest
			pos := len(idx) - 1
			for pos >= 0 {
				idx[pos]++
				if idx[pos] < len(p.buckets[pos]) {
					break
				}
				idx[pos] = 0
				pos--
			}
			if pos < 0 {
				return
			}
		}
	}
}

// Size returns the number of combinations the group will yield
func (p *PreparedGroup) Size() int {
	if p.Incomplete != nil || len(p.buckets) == 0 {
		return 0
	}
	n := 1
	for _, b := range p.buckets {
		n *= len(b)
	}
	return n
}

// Detector tests every cross-bookmaker combination of a market group for arbitrage
type Detector struct {
	logger zerolog.Logger
}

// NewDetector creates a new arbitrage detector
func NewDetector(logger zerolog.Logger) *Detector {
	return &Detector{
		logger: logger.With().Str("component", "detector").Logger(),
	}
}

// Prepare validates a group's records and buckets them by the market's required labels.
// Malformed records are excluded before any division happens.
func (d *Detector) Prepare(g *MarketGroup) *PreparedGroup {
	labels := g.Key.MarketType.Labels()
	p := &PreparedGroup{
		Group:  g,
		Labels: labels,
	}

	slot := make(map[models.OutcomeLabel]int, len(labels))
	for i, l := range labels {
		slot[l] = i
	}
	p.buckets = make([][]models.OddsRecord, len(labels))

	for _, r := range g.records {
		if reason := validateRecord(r); reason != "" {
			err := &MalformedRecordError{Record: r, Reason: reason}
			p.Malformed = append(p.Malformed, err)
			d.logger.Debug().
				Str("event_id", r.EventID).
				Str("bookmaker", r.Bookmaker).
				Str("outcome", string(r.Outcome)).
				Str("reason", reason).
				Msg("excluding malformed odds record")
			continue
		}
		if p.HomeTeam == "" {
			p.HomeTeam, p.AwayTeam = r.HomeTeam, r.AwayTeam
		}
		i := slot[r.Outcome]
		p.buckets[i] = append(p.buckets[i], r)
	}

	var missing []models.OutcomeLabel
	for i, l := range labels {
		if len(p.buckets[i]) == 0 {
			missing = append(missing, l)
		}
	}
	if len(labels) == 0 || len(missing) > 0 {
		p.Incomplete = &IncompleteMarketError{Key: g.Key, Missing: missing}
	}

	return p
}

// Detect returns every qualifying combination of the group in enumeration order
func (d *Detector) Detect(g *MarketGroup) ([]Combination, *PreparedGroup) {
	p := d.Prepare(g)

	var found []Combination
	for c := range p.Combinations() {
		if Qualifies(c) {
			found = append(found, c)
		}
	}

	if p.Incomplete != nil {
		d.logger.Debug().
			Str("market", g.Key.String()).
			Interface("missing", p.Incomplete.Missing).
			Msg("incomplete market, no combinations")
	}

	return found, p
}

// validateRecord returns why r cannot take part in detection, or "" when it can
func validateRecord(r models.OddsRecord) string {
	switch {
	case !r.MarketType.Valid():
		return "unknown market type"
	case !r.MarketType.Accepts(r.Outcome):
		return "outcome label not valid for market type"
	case r.Price.LessThanOrEqual(decimal.NewFromInt(1)):
		return "price must be greater than 1"
	case r.MarketType.IsLineMarket() && r.Line == nil:
		return "line market quote without a line"
	case !r.MarketType.IsLineMarket() && r.Line != nil:
		return "outright market quote with a line"
	case r.Bookmaker == "":
		return "missing bookmaker"
	case r.HomeTeam == "" || r.AwayTeam == "" || r.HomeTeam == r.AwayTeam:
		return "missing or identical teams"
	}
	return ""
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MarketType identifies the shape of a betting market
type MarketType string

const (
	MarketTwoWayLine       MarketType = "two_way_line"       // Over/Under around a line
	MarketTwoWayOutright   MarketType = "two_way_outright"   // Home/Away
	MarketThreeWayOutright MarketType = "three_way_outright" // Home/Away/Draw
)

// OutcomeLabel identifies one outcome of a market
type OutcomeLabel string

const (
	OutcomeOver  OutcomeLabel = "over"
	OutcomeUnder OutcomeLabel = "under"
	OutcomeHome  OutcomeLabel = "home"
	OutcomeAway  OutcomeLabel = "away"
	OutcomeDraw  OutcomeLabel = "draw"
)

// Labels returns the canonical, ordered label set every combination of this market must cover.
// Unknown market types return nil.
func (m MarketType) Labels() []OutcomeLabel {
	switch m {
	case MarketTwoWayLine:
		return []OutcomeLabel{OutcomeOver, OutcomeUnder}
	case MarketTwoWayOutright:
		return []OutcomeLabel{OutcomeHome, OutcomeAway}
	case MarketThreeWayOutright:
		return []OutcomeLabel{OutcomeHome, OutcomeAway, OutcomeDraw}
	default:
		return nil
	}
}

// IsLineMarket reports whether records of this market carry a line
func (m MarketType) IsLineMarket() bool {
	return m == MarketTwoWayLine
}

// Valid reports whether m is a known market type
func (m MarketType) Valid() bool {
	return m.Labels() != nil
}

// Accepts reports whether label belongs to the label set of m
func (m MarketType) Accepts(label OutcomeLabel) bool {
	for _, l := range m.Labels() {
		if l == label {
			return true
		}
	}
	return false
}

// OddsRecord is one bookmaker's decimal price for one outcome of one market of one event.
// Records are produced by the ingestion layer and treated as immutable.
type OddsRecord struct {
	EventID    string           `json:"event_id"`
	HomeTeam   string           `json:"home_team"`
	AwayTeam   string           `json:"away_team"`
	MarketType MarketType       `json:"market_type"`
	Line       *decimal.Decimal `json:"line,omitempty"` // Only for line markets
	Outcome    OutcomeLabel     `json:"outcome"`
	Bookmaker  string           `json:"bookmaker"`
	Price      decimal.Decimal  `json:"price"` // Decimal odds, must be > 1
}

// Leg is a single bet within an arbitrage opportunity
type Leg struct {
	Outcome            OutcomeLabel    `json:"outcome"`
	Bookmaker          string          `json:"bookmaker"`
	Price              decimal.Decimal `json:"price"`
	Stake              decimal.Decimal `json:"stake"`
	ImpliedProfitShare decimal.Decimal `json:"implied_profit_share"` // (1/price) / combined probability
	Payout             decimal.Decimal `json:"payout"`               // stake * price
}

// ArbitrageOpportunity is a qualifying combination with its stake split
type ArbitrageOpportunity struct {
	ID                         uuid.UUID        `json:"id"`
	EventID                    string           `json:"event_id"`
	HomeTeam                   string           `json:"home_team"`
	AwayTeam                   string           `json:"away_team"`
	MarketType                 MarketType       `json:"market_type"`
	Line                       *decimal.Decimal `json:"line,omitempty"`
	Legs                       []Leg            `json:"legs"`
	CombinedImpliedProbability decimal.Decimal  `json:"combined_implied_probability"` // Always < 1
	ProfitPercent              decimal.Decimal  `json:"profit_percent"`
	TotalStake                 decimal.Decimal  `json:"total_stake"`
	GuaranteedPayout           decimal.Decimal  `json:"guaranteed_payout"`
	DetectedAt                 time.Time        `json:"detected_at"`
}

// KafkaOddsBatchMessage represents a batch of odds records published by the ingestion layer
type KafkaOddsBatchMessage struct {
	Records   []OddsRecord     `json:"records"`
	Stake     *decimal.Decimal `json:"stake,omitempty"` // Falls back to the configured default stake
	Timestamp time.Time        `json:"timestamp"`
	BatchID   string           `json:"batch_id"`
}

// KafkaOpportunityMessage is published for every detected opportunity
type KafkaOpportunityMessage struct {
	Opportunity ArbitrageOpportunity `json:"opportunity"`
	BatchID     string               `json:"batch_id"`
	Timestamp   time.Time            `json:"timestamp"`
}

// ScanParams holds parameters for an arbitrage scan
type ScanParams struct {
	MinProfitPercent decimal.Decimal // Opportunities below this profit are dropped (0 keeps all)
	Workers          int             // Parallel group workers (<= 1 runs sequentially)
}

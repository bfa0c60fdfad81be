package arbitrage

import (
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/arbitrage-scanner-service/internal/models"
)

// ErrNotArbitrage is returned when asked to allocate a combination that does not qualify
var ErrNotArbitrage = errors.New("combination is not an arbitrage")

var hundred = big.NewRat(100, 1)

// ValidateStake fails with *InvalidStakeError unless stake > 0
func ValidateStake(stake decimal.Decimal) error {
	if !stake.IsPositive() {
		return &InvalidStakeError{Value: stake.String()}
	}
	return nil
}

// ParseStake parses user-supplied stake text. Non-numeric and non-positive input fail with *InvalidStakeError.
func ParseStake(s string) (decimal.Decimal, error) {
	stake, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, &InvalidStakeError{Value: s}
	}
	if err := ValidateStake(stake); err != nil {
		return decimal.Zero, &InvalidStakeError{Value: s}
	}
	return stake, nil
}

// Allocate splits stake across the legs of a qualifying combination so that every outcome pays the same.
//
//	stake_i = S * (1/price_i) / P,  payout = S / P,  profit% = (1/P - 1) * 100
//
// All arithmetic is exact; each figure is rounded once when converted to a decimal.
func Allocate(c Combination, stake decimal.Decimal) (*models.ArbitrageOpportunity, error) {
	if err := ValidateStake(stake); err != nil {
		return nil, err
	}
	if !Qualifies(c) {
		return nil, ErrNotArbitrage
	}

	s := stake.Rat()
	combined := c.ImpliedProbability()
	inverse := new(big.Rat).Inv(combined)

	payout := new(big.Rat).Mul(s, inverse)
	profit := new(big.Rat).Sub(inverse, ratOne)
	profit.Mul(profit, hundred)

	legs := make([]models.Leg, len(c.Legs))
	for i, r := range c.Legs {
		share := new(big.Rat).Mul(impliedProbability(r.Price), inverse)
		legStake := new(big.Rat).Mul(s, share)
		legPayout := new(big.Rat).Mul(legStake, r.Price.Rat())

		legs[i] = models.Leg{
			Outcome:            r.Outcome,
			Bookmaker:          r.Bookmaker,
			Price:              r.Price,
			Stake:              toDecimal(legStake),
			ImpliedProfitShare: toDecimal(share),
			Payout:             toDecimal(legPayout),
		}
	}

	var line *decimal.Decimal
	if c.Line != nil {
		l := *c.Line
		line = &l
	}

	return &models.ArbitrageOpportunity{
		ID:                         uuid.New(),
		EventID:                    c.Key.EventID,
		HomeTeam:                   c.HomeTeam,
		AwayTeam:                   c.AwayTeam,
		MarketType:                 c.Key.MarketType,
		Line:                       line,
		Legs:                       legs,
		CombinedImpliedProbability: toDecimal(combined),
		ProfitPercent:              toDecimal(profit),
		TotalStake:                 stake,
		GuaranteedPayout:           toDecimal(payout),
		DetectedAt:                 time.Now().UTC(),
	}, nil
}

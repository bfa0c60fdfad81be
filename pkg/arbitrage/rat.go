package arbitrage

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// outputPrecision is the number of fractional digits kept when exact results leave the engine
const outputPrecision = 28

var ratOne = big.NewRat(1, 1)

// impliedProbability returns 1/price exactly. Callers must have rejected price <= 1.
func impliedProbability(price decimal.Decimal) *big.Rat {
	return new(big.Rat).Inv(price.Rat())
}

// toDecimal converts an exact rational to a decimal, rounding once
func toDecimal(r *big.Rat) decimal.Decimal {
	return decimal.RequireFromString(r.FloatString(outputPrecision))
}

package arbitrage

import (
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/arbitrage-scanner-service/internal/models"
)

// dec parses a decimal literal for test fixtures
func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// linePtr returns a pointer to a parsed line value
func linePtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// totalsRecord builds an Over/Under quote at the given line
func totalsRecord(eventID, line string, outcome models.OutcomeLabel, bookmaker, price string) models.OddsRecord {
	return models.OddsRecord{
		EventID:    eventID,
		HomeTeam:   "Lakers",
		AwayTeam:   "Celtics",
		MarketType: models.MarketTwoWayLine,
		Line:       linePtr(line),
		Outcome:    outcome,
		Bookmaker:  bookmaker,
		Price:      dec(price),
	}
}

// outrightRecord builds a Home/Away(/Draw) quote
func outrightRecord(eventID string, market models.MarketType, outcome models.OutcomeLabel, bookmaker, price string) models.OddsRecord {
	return models.OddsRecord{
		EventID:    eventID,
		HomeTeam:   "Arsenal",
		AwayTeam:   "Chelsea",
		MarketType: market,
		Outcome:    outcome,
		Bookmaker:  bookmaker,
		Price:      dec(price),
	}
}

package arbitrage

import (
	"cmp"
	"slices"
	"strings"

	"github.com/cypherlabdev/arbitrage-scanner-service/internal/models"
)

// Rank returns a new slice sorted by numeric profit percent, highest first.
// Ties fall back to event ID, market type, line, leg bookmakers and leg outcomes so equal input
// sets always rank identically.
func Rank(opps []*models.ArbitrageOpportunity) []*models.ArbitrageOpportunity {
	ranked := slices.Clone(opps)
	slices.SortStableFunc(ranked, compareOpportunities)
	return ranked
}

func compareOpportunities(a, b *models.ArbitrageOpportunity) int {
	if c := b.ProfitPercent.Cmp(a.ProfitPercent); c != 0 {
		return c
	}
	if c := cmp.Compare(a.EventID, b.EventID); c != 0 {
		return c
	}
	if c := cmp.Compare(a.MarketType, b.MarketType); c != 0 {
		return c
	}
	if c := compareLines(a, b); c != 0 {
		return c
	}
	if c := cmp.Compare(legKey(a, bookmakerOf), legKey(b, bookmakerOf)); c != 0 {
		return c
	}
	return cmp.Compare(legKey(a, outcomeOf), legKey(b, outcomeOf))
}

// compareLines orders missing lines first, then by numeric value
func compareLines(a, b *models.ArbitrageOpportunity) int {
	switch {
	case a.Line == nil && b.Line == nil:
		return 0
	case a.Line == nil:
		return -1
	case b.Line == nil:
		return 1
	}
	return a.Line.Cmp(*b.Line)
}

func bookmakerOf(l models.Leg) string { return l.Bookmaker }
func outcomeOf(l models.Leg) string   { return string(l.Outcome) }

func legKey(o *models.ArbitrageOpportunity, field func(models.Leg) string) string {
	parts := make([]string, len(o.Legs))
	for i, l := range o.Legs {
		parts[i] = field(l)
	}
	return strings.Join(parts, "\x00")
}

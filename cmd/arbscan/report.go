package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/cypherlabdev/arbitrage-scanner-service/internal/models"
	"github.com/cypherlabdev/arbitrage-scanner-service/pkg/arbitrage"
)

// printReport writes the ranked opportunities with amounts rounded to 2 places
func printReport(w io.Writer, result *arbitrage.ScanResult, events int) {
	if len(result.Opportunities) == 0 {
		fmt.Fprintf(w, "No arbitrage found across %d events (%d combinations tested).\n",
			events, result.CombinationsTested)
		return
	}

	for _, opp := range result.Opportunities {
		fmt.Fprintln(w, formatOpportunity(opp))
	}

	fmt.Fprintf(w, "%d opportunities across %d events (%d combinations tested, %d records skipped).\n",
		len(result.Opportunities), events, result.CombinationsTested, len(result.Malformed))
}

func formatOpportunity(opp *models.ArbitrageOpportunity) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Game: %s Vs %s", opp.HomeTeam, opp.AwayTeam)
	if opp.Line != nil {
		fmt.Fprintf(&b, " (total %s)", opp.Line.String())
	}
	b.WriteString("\n")

	for _, leg := range opp.Legs {
		fmt.Fprintf(&b, "  %s on %s. Bet %s @ %s\n",
			legName(opp, leg), leg.Bookmaker, leg.Stake.StringFixed(2), leg.Price.String())
	}

	fmt.Fprintf(&b, "  Payout: %s  Profit: %s%%\n",
		opp.GuaranteedPayout.StringFixed(2), opp.ProfitPercent.StringFixed(2))

	return b.String()
}

func legName(opp *models.ArbitrageOpportunity, leg models.Leg) string {
	switch leg.Outcome {
	case models.OutcomeHome:
		return opp.HomeTeam
	case models.OutcomeAway:
		return opp.AwayTeam
	case models.OutcomeDraw:
		return "Draw"
	case models.OutcomeOver:
		return "Over " + opp.Line.String()
	case models.OutcomeUnder:
		return "Under " + opp.Line.String()
	}
	return string(leg.Outcome)
}

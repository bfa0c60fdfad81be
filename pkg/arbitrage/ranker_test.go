package arbitrage

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/arbitrage-scanner-service/internal/models"
)

// opportunity builds a minimal ranked entity
func opportunity(eventID, profit string, books ...string) *models.ArbitrageOpportunity {
	legs := make([]models.Leg, len(books))
	labels := models.MarketTwoWayOutright.Labels()
	for i, b := range books {
		legs[i] = models.Leg{Outcome: labels[i%len(labels)], Bookmaker: b}
	}
	return &models.ArbitrageOpportunity{
		EventID:       eventID,
		MarketType:    models.MarketTwoWayOutright,
		ProfitPercent: dec(profit),
		Legs:          legs,
	}
}

// TestRank_ProfitDescending tests numeric ordering
func TestRank_ProfitDescending(t *testing.T) {
	opps := []*models.ArbitrageOpportunity{
		opportunity("evt-1", "2.5", "A", "B"),
		opportunity("evt-2", "10.1", "A", "B"),
		opportunity("evt-3", "9.9", "A", "B"),
	}

	ranked := Rank(opps)

	require.Len(t, ranked, 3)
	// "9.9" > "10.1" as text, so a string sort would put evt-3 first
	assert.Equal(t, "evt-2", ranked[0].EventID)
	assert.Equal(t, "evt-3", ranked[1].EventID)
	assert.Equal(t, "evt-1", ranked[2].EventID)

	// Input is left untouched
	assert.Equal(t, "evt-1", opps[0].EventID)
}

// TestRank_TieBreak tests the secondary keys for equal profit
func TestRank_TieBreak(t *testing.T) {
	withLine := opportunity("evt-1", "3", "A", "B")
	withLine.MarketType = models.MarketTwoWayLine
	withLine.Line = linePtr("220.5")

	lowerLine := opportunity("evt-1", "3", "A", "B")
	lowerLine.MarketType = models.MarketTwoWayLine
	lowerLine.Line = linePtr("219.5")

	opps := []*models.ArbitrageOpportunity{
		opportunity("evt-2", "3", "A", "B"),
		withLine,
		opportunity("evt-1", "3", "C", "A"),
		lowerLine,
		opportunity("evt-1", "3", "A", "C"),
	}

	ranked := Rank(opps)

	require.Len(t, ranked, 5)
	// two_way_line sorts before two_way_outright, lower line first
	assert.Equal(t, "219.5", ranked[0].Line.String())
	assert.Equal(t, "220.5", ranked[1].Line.String())
	assert.Equal(t, []string{"A", "C"}, []string{ranked[2].Legs[0].Bookmaker, ranked[2].Legs[1].Bookmaker})
	assert.Equal(t, []string{"C", "A"}, []string{ranked[3].Legs[0].Bookmaker, ranked[3].Legs[1].Bookmaker})
	assert.Equal(t, "evt-2", ranked[4].EventID)
}

// TestRank_Deterministic tests that shuffled input always ranks the same way
func TestRank_Deterministic(t *testing.T) {
	base := []*models.ArbitrageOpportunity{
		opportunity("evt-1", "1.5", "A", "B"),
		opportunity("evt-1", "1.5", "B", "A"),
		opportunity("evt-2", "1.5", "A", "B"),
		opportunity("evt-3", "4.25", "C", "D"),
		opportunity("evt-4", "0.75", "A", "D"),
		opportunity("evt-5", "4.25", "A", "B"),
	}

	expected := Rank(base)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 20; i++ {
		shuffled := make([]*models.ArbitrageOpportunity, len(base))
		copy(shuffled, base)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		assert.Equal(t, expected, Rank(shuffled))
	}
}

// TestRank_Empty tests ranking of nothing
func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}

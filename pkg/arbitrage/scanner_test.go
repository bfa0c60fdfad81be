package arbitrage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/arbitrage-scanner-service/internal/models"
)

// setupTestScanner creates a scanner with the given parameters
func setupTestScanner(minProfit string, workers int) *Scanner {
	return NewScanner(models.ScanParams{
		MinProfitPercent: dec(minProfit),
		Workers:          workers,
	}, zerolog.Nop())
}

// mixedRecords covers a two-way arbitrage, a three-way arbitrage, an incomplete market,
// a zero-profit market and one malformed quote
func mixedRecords() []models.OddsRecord {
	return []models.OddsRecord{
		totalsRecord("evt-1", "2.5", models.OutcomeOver, "BookA", "2.10"),
		totalsRecord("evt-1", "2.5", models.OutcomeOver, "BookBad", "0.5"),
		totalsRecord("evt-1", "2.5", models.OutcomeUnder, "BookB", "2.05"),
		totalsRecord("evt-1", "3.5", models.OutcomeOver, "BookA", "3.00"),
		outrightRecord("evt-2", models.MarketThreeWayOutright, models.OutcomeHome, "BookA", "3.0"),
		outrightRecord("evt-2", models.MarketThreeWayOutright, models.OutcomeAway, "BookB", "3.2"),
		outrightRecord("evt-2", models.MarketThreeWayOutright, models.OutcomeDraw, "BookC", "3.5"),
		outrightRecord("evt-3", models.MarketTwoWayOutright, models.OutcomeHome, "BookA", "2.0"),
		outrightRecord("evt-3", models.MarketTwoWayOutright, models.OutcomeAway, "BookB", "2.0"),
	}
}

// TestScan_EndToEnd tests the whole pipeline
func TestScan_EndToEnd(t *testing.T) {
	scanner := setupTestScanner("0", 1)

	result, err := scanner.Scan(mixedRecords(), decimal.NewFromInt(100))

	require.NoError(t, err)
	assert.Equal(t, 4, result.GroupsScanned)
	assert.Equal(t, 1, result.IncompleteGroups)
	assert.Equal(t, 3, result.CombinationsTested)
	require.Len(t, result.Malformed, 1)
	assert.True(t, errors.Is(result.Malformed[0], ErrMalformedRecord))

	require.Len(t, result.Opportunities, 2)
	assert.Equal(t, "evt-2", result.Opportunities[0].EventID)
	assert.Len(t, result.Opportunities[0].Legs, 3)
	assert.Equal(t, "evt-1", result.Opportunities[1].EventID)
	assert.Len(t, result.Opportunities[1].Legs, 2)

	for _, opp := range result.Opportunities {
		assertProfitGuarantee(t, opp, decimal.NewFromInt(100))
	}
}

// TestScan_MinProfitThreshold tests that low-profit opportunities are filtered
func TestScan_MinProfitThreshold(t *testing.T) {
	scanner := setupTestScanner("5", 1)

	result, err := scanner.Scan(mixedRecords(), decimal.NewFromInt(100))

	require.NoError(t, err)
	require.Len(t, result.Opportunities, 1)
	assert.Equal(t, "evt-2", result.Opportunities[0].EventID)
	assert.Equal(t, 1, result.BelowThreshold)
}

// TestScan_InvalidStake tests that an invalid stake aborts the scan
func TestScan_InvalidStake(t *testing.T) {
	scanner := setupTestScanner("0", 1)

	result, err := scanner.Scan(mixedRecords(), decimal.Zero)

	assert.Nil(t, result)
	var invalid *InvalidStakeError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "0", invalid.Value)
}

// TestScan_ParallelMatchesSequential tests that worker count does not change the result
func TestScan_ParallelMatchesSequential(t *testing.T) {
	var records []models.OddsRecord
	for i := 0; i < 25; i++ {
		event := fmt.Sprintf("evt-%02d", i)
		over := decimal.NewFromFloat(1.90).Add(decimal.NewFromFloat(0.01).Mul(decimal.NewFromInt(int64(i))))
		records = append(records,
			totalsRecord(event, "2.5", models.OutcomeOver, "BookA", over.String()),
			totalsRecord(event, "2.5", models.OutcomeUnder, "BookB", "2.05"),
			totalsRecord(event, "2.5", models.OutcomeUnder, "BookC", "1.80"),
		)
	}

	sequential, err := setupTestScanner("0", 1).Scan(records, decimal.NewFromInt(100))
	require.NoError(t, err)
	parallel, err := setupTestScanner("0", 8).Scan(records, decimal.NewFromInt(100))
	require.NoError(t, err)

	require.Equal(t, len(sequential.Opportunities), len(parallel.Opportunities))
	require.NotEmpty(t, sequential.Opportunities)
	for i := range sequential.Opportunities {
		s, p := sequential.Opportunities[i], parallel.Opportunities[i]
		assert.Equal(t, s.EventID, p.EventID)
		assert.True(t, s.ProfitPercent.Equal(p.ProfitPercent))
		assert.Equal(t, s.Legs[0].Bookmaker, p.Legs[0].Bookmaker)
		assert.Equal(t, s.Legs[1].Bookmaker, p.Legs[1].Bookmaker)
	}
	assert.Equal(t, sequential.CombinationsTested, parallel.CombinationsTested)
	assert.Equal(t, 50, sequential.CombinationsTested)

	for i := 1; i < len(sequential.Opportunities); i++ {
		assert.True(t, sequential.Opportunities[i-1].ProfitPercent.GreaterThanOrEqual(sequential.Opportunities[i].ProfitPercent))
	}
}

// TestScan_NoRecords tests an empty batch
func TestScan_NoRecords(t *testing.T) {
	result, err := setupTestScanner("0", 4).Scan(nil, decimal.NewFromInt(10))

	require.NoError(t, err)
	assert.Empty(t, result.Opportunities)
	assert.Equal(t, 0, result.GroupsScanned)
}

package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/arbitrage-scanner-service/internal/models"
)

// testRedisCacheSetup is a helper struct to hold test dependencies
type testRedisCacheSetup struct {
	cache     *RedisCache
	miniRedis *miniredis.Miniredis
	ctx       context.Context
}

// setupTestRedisCache creates a test cache with miniredis
func setupTestRedisCache(t *testing.T) *testRedisCacheSetup {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	config := RedisCacheConfig{
		Addr:     mr.Addr(),
		Password: "",
		DB:       0,
		TTL:      5 * time.Minute,
	}

	return &testRedisCacheSetup{
		cache:     NewRedisCache(config, zerolog.Nop()),
		miniRedis: mr,
		ctx:       context.Background(),
	}
}

// cleanup cleans up test resources
func (s *testRedisCacheSetup) cleanup() {
	s.cache.Close()
	s.miniRedis.Close()
}

// testOpportunity builds a two-leg opportunity with the given profit
func testOpportunity(eventID, profit string) *models.ArbitrageOpportunity {
	return &models.ArbitrageOpportunity{
		ID:                         uuid.New(),
		EventID:                    eventID,
		HomeTeam:                   "Arsenal",
		AwayTeam:                   "Chelsea",
		MarketType:                 models.MarketTwoWayOutright,
		CombinedImpliedProbability: decimal.RequireFromString("0.97"),
		ProfitPercent:              decimal.RequireFromString(profit),
		TotalStake:                 decimal.NewFromInt(100),
		GuaranteedPayout:           decimal.RequireFromString("103.09"),
		Legs: []models.Leg{
			{Outcome: models.OutcomeHome, Bookmaker: "BookA", Price: decimal.RequireFromString("2.10"), Stake: decimal.RequireFromString("49.09")},
			{Outcome: models.OutcomeAway, Bookmaker: "BookB", Price: decimal.RequireFromString("2.02"), Stake: decimal.RequireFromString("50.91")},
		},
		DetectedAt: time.Now().UTC(),
	}
}

// TestNewRedisCache tests cache creation
func TestNewRedisCache(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	assert.NotNil(t, setup.cache)
	assert.NotNil(t, setup.cache.client)
	assert.Equal(t, 5*time.Minute, setup.cache.ttl)
}

// TestSetBatch_SingleOpportunity tests caching a single opportunity
func TestSetBatch_SingleOpportunity(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	opp := testOpportunity("event-123", "3.09")

	err := setup.cache.SetBatch(setup.ctx, []*models.ArbitrageOpportunity{opp})

	require.NoError(t, err)
	assert.True(t, setup.miniRedis.Exists(opportunityKey(opp.ID.String())))
	assert.True(t, setup.miniRedis.Exists(eventKey("event-123")))

	members, err := setup.miniRedis.ZMembers(rankedKey)
	require.NoError(t, err)
	assert.Equal(t, []string{opp.ID.String()}, members)
}

// TestSetBatch_ContextCanceled tests set operation with canceled context
func TestSetBatch_ContextCanceled(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := setup.cache.SetBatch(ctx, []*models.ArbitrageOpportunity{testOpportunity("event-123", "3.09")})

	assert.Error(t, err)
}

// TestGet_Success tests retrieving a cached opportunity
func TestGet_Success(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	opp := testOpportunity("event-123", "3.09")
	require.NoError(t, setup.cache.SetBatch(setup.ctx, []*models.ArbitrageOpportunity{opp}))

	got, err := setup.cache.Get(setup.ctx, opp.ID.String())

	require.NoError(t, err)
	assert.Equal(t, opp.ID, got.ID)
	assert.Equal(t, opp.EventID, got.EventID)
	assert.True(t, opp.ProfitPercent.Equal(got.ProfitPercent))
	require.Len(t, got.Legs, 2)
	assert.Equal(t, "BookA", got.Legs[0].Bookmaker)
	assert.True(t, opp.Legs[1].Price.Equal(got.Legs[1].Price))
}

// TestGet_NotFound tests retrieving a missing opportunity
func TestGet_NotFound(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	got, err := setup.cache.Get(setup.ctx, uuid.NewString())

	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestGet_ExpiredKey tests that entries expire after the TTL
func TestGet_ExpiredKey(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	opp := testOpportunity("event-123", "3.09")
	require.NoError(t, setup.cache.SetBatch(setup.ctx, []*models.ArbitrageOpportunity{opp}))

	setup.miniRedis.FastForward(6 * time.Minute)

	got, err := setup.cache.Get(setup.ctx, opp.ID.String())

	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestSetBatch_Success tests caching a batch across events
func TestSetBatch_Success(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	batch := []*models.ArbitrageOpportunity{
		testOpportunity("event-123", "1.5"),
		testOpportunity("event-123", "2.5"),
		testOpportunity("event-456", "0.8"),
	}

	err := setup.cache.SetBatch(setup.ctx, batch)

	require.NoError(t, err)
	for _, opp := range batch {
		assert.True(t, setup.miniRedis.Exists(opportunityKey(opp.ID.String())))
	}

	members, err := setup.miniRedis.SMembers(eventKey("event-123"))
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

// TestSetBatch_ReplacesPreviousScan tests that a new scan of an event evicts the old one
func TestSetBatch_ReplacesPreviousScan(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	old := testOpportunity("event-123", "4.0")
	other := testOpportunity("event-456", "1.0")
	require.NoError(t, setup.cache.SetBatch(setup.ctx, []*models.ArbitrageOpportunity{old, other}))

	fresh := testOpportunity("event-123", "2.0")
	require.NoError(t, setup.cache.SetBatch(setup.ctx, []*models.ArbitrageOpportunity{fresh}))

	assert.False(t, setup.miniRedis.Exists(opportunityKey(old.ID.String())))
	assert.True(t, setup.miniRedis.Exists(opportunityKey(other.ID.String())))

	opps, err := setup.cache.GetByEvent(setup.ctx, "event-123")
	require.NoError(t, err)
	require.Len(t, opps, 1)
	assert.Equal(t, fresh.ID, opps[0].ID)

	top, err := setup.cache.GetTop(setup.ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, fresh.ID, top[0].ID)
	assert.Equal(t, other.ID, top[1].ID)
}

// TestSetBatch_EmptyList tests batch with no opportunities
func TestSetBatch_EmptyList(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	assert.NoError(t, setup.cache.SetBatch(setup.ctx, []*models.ArbitrageOpportunity{}))
	assert.NoError(t, setup.cache.SetBatch(setup.ctx, nil))
}

// TestGetByEvent_RankedByProfit tests event lookup ordering
func TestGetByEvent_RankedByProfit(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	require.NoError(t, setup.cache.SetBatch(setup.ctx, []*models.ArbitrageOpportunity{
		testOpportunity("event-123", "1.5"),
		testOpportunity("event-123", "10.25"),
		testOpportunity("event-123", "9.75"),
	}))

	opps, err := setup.cache.GetByEvent(setup.ctx, "event-123")

	require.NoError(t, err)
	require.Len(t, opps, 3)
	assert.Equal(t, "10.25", opps[0].ProfitPercent.String())
	assert.Equal(t, "9.75", opps[1].ProfitPercent.String())
	assert.Equal(t, "1.5", opps[2].ProfitPercent.String())
}

// TestGetByEvent_NotFound tests lookup of an unknown event
func TestGetByEvent_NotFound(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	opps, err := setup.cache.GetByEvent(setup.ctx, "nonexistent")

	assert.NoError(t, err)
	assert.Empty(t, opps)
}

// TestGetByEvent_PartialData tests that corrupt entries are skipped
func TestGetByEvent_PartialData(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	good := testOpportunity("event-123", "2.0")
	bad := testOpportunity("event-123", "3.0")
	require.NoError(t, setup.cache.SetBatch(setup.ctx, []*models.ArbitrageOpportunity{good, bad}))

	require.NoError(t, setup.miniRedis.Set(opportunityKey(bad.ID.String()), "invalid json data"))

	opps, err := setup.cache.GetByEvent(setup.ctx, "event-123")

	require.NoError(t, err)
	require.Len(t, opps, 1)
	assert.Equal(t, good.ID, opps[0].ID)
}

// TestGetTop_Limit tests top-N retrieval
func TestGetTop_Limit(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	var batch []*models.ArbitrageOpportunity
	for i := 1; i <= 5; i++ {
		batch = append(batch, testOpportunity(fmt.Sprintf("event-%d", i), fmt.Sprintf("%d.5", i)))
	}
	require.NoError(t, setup.cache.SetBatch(setup.ctx, batch))

	top, err := setup.cache.GetTop(setup.ctx, 3)

	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "event-5", top[0].EventID)
	assert.Equal(t, "event-4", top[1].EventID)
	assert.Equal(t, "event-3", top[2].EventID)

	empty, err := setup.cache.GetTop(setup.ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

// TestGetTop_PrunesExpired tests that expired opportunities leave the ranking
func TestGetTop_PrunesExpired(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	opp := testOpportunity("event-123", "2.0")
	require.NoError(t, setup.cache.SetBatch(setup.ctx, []*models.ArbitrageOpportunity{opp}))

	setup.miniRedis.FastForward(6 * time.Minute)

	top, err := setup.cache.GetTop(setup.ctx, 10)

	require.NoError(t, err)
	assert.Empty(t, top)

	members, err := setup.miniRedis.ZMembers(rankedKey)
	if err == nil {
		assert.Empty(t, members)
	}
}

// TestGetTop_ExpiredAboveLive tests that expired entries at the top do not crowd out live ones
func TestGetTop_ExpiredAboveLive(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	high := testOpportunity("event-hi", "9.0")
	low := testOpportunity("event-lo", "1.0")
	require.NoError(t, setup.cache.SetBatch(setup.ctx, []*models.ArbitrageOpportunity{high}))
	require.NoError(t, setup.cache.SetBatch(setup.ctx, []*models.ArbitrageOpportunity{low}))

	setup.miniRedis.Del(opportunityKey(high.ID.String()))

	top, err := setup.cache.GetTop(setup.ctx, 1)

	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, low.ID, top[0].ID)

	members, err := setup.miniRedis.ZMembers(rankedKey)
	require.NoError(t, err)
	assert.Equal(t, []string{low.ID.String()}, members)
}

// TestGetTop_SpansSeveralWindows tests a ranking whose first windows are all expired
func TestGetTop_SpansSeveralWindows(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	var expired []*models.ArbitrageOpportunity
	for i := 0; i < 5; i++ {
		expired = append(expired, testOpportunity(fmt.Sprintf("event-old-%d", i), fmt.Sprintf("%d.5", 5+i)))
	}
	live := []*models.ArbitrageOpportunity{
		testOpportunity("event-a", "2.0"),
		testOpportunity("event-b", "1.5"),
		testOpportunity("event-c", "1.0"),
	}
	require.NoError(t, setup.cache.SetBatch(setup.ctx, append(expired, live...)))
	for _, opp := range expired {
		setup.miniRedis.Del(opportunityKey(opp.ID.String()))
	}

	top, err := setup.cache.GetTop(setup.ctx, 2)

	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "event-a", top[0].EventID)
	assert.Equal(t, "event-b", top[1].EventID)

	all, err := setup.cache.GetTop(setup.ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

// TestClearEvent tests removing an event's opportunities
func TestClearEvent(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	opp := testOpportunity("event-123", "2.0")
	require.NoError(t, setup.cache.SetBatch(setup.ctx, []*models.ArbitrageOpportunity{opp}))

	require.NoError(t, setup.cache.ClearEvent(setup.ctx, "event-123"))

	assert.False(t, setup.miniRedis.Exists(opportunityKey(opp.ID.String())))
	assert.False(t, setup.miniRedis.Exists(eventKey("event-123")))
	assert.NoError(t, setup.cache.ClearEvent(setup.ctx, "event-123"))
}

// TestPing_Success tests Redis ping
func TestPing_Success(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	assert.NoError(t, setup.cache.Ping(setup.ctx))
}

// TestPing_RedisDown tests ping when Redis is unavailable
func TestPing_RedisDown(t *testing.T) {
	setup := setupTestRedisCache(t)
	setup.miniRedis.Close()
	defer setup.cache.Close()

	assert.Error(t, setup.cache.Ping(setup.ctx))
}

// TestCache_TTLRespected tests that keys carry the configured TTL
func TestCache_TTLRespected(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	opp := testOpportunity("event-123", "2.0")
	require.NoError(t, setup.cache.SetBatch(setup.ctx, []*models.ArbitrageOpportunity{opp}))

	assert.Equal(t, 5*time.Minute, setup.miniRedis.TTL(opportunityKey(opp.ID.String())))
	assert.Equal(t, 5*time.Minute, setup.miniRedis.TTL(eventKey("event-123")))
}

// TestCache_ConcurrentAccess tests concurrent writers
func TestCache_ConcurrentAccess(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, setup.cache.SetBatch(setup.ctx, []*models.ArbitrageOpportunity{testOpportunity(fmt.Sprintf("event-%d", i), "1.0")}))
		}(i)
	}
	wg.Wait()

	top, err := setup.cache.GetTop(setup.ctx, 20)
	require.NoError(t, err)
	assert.Len(t, top, 10)
}

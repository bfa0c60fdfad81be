package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/arbitrage-scanner-service/internal/models"
	"github.com/cypherlabdev/arbitrage-scanner-service/pkg/arbitrage"
)

// ErrNotFound is returned when an opportunity is not cached
var ErrNotFound = errors.New("opportunity not found in cache")

// rankedKey is a sorted set of opportunity IDs scored by profit percent
const rankedKey = "arb:ranked"

func opportunityKey(id string) string { return "arb:opp:" + id }
func eventKey(eventID string) string  { return "arb:event:" + eventID }

// RedisCache caches detected arbitrage opportunities in Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// RedisCacheConfig holds Redis cache configuration
type RedisCacheConfig struct {
	Addr     string // e.g., "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration // e.g., 5 * time.Minute
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(config RedisCacheConfig, logger zerolog.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return &RedisCache{
		client: client,
		ttl:    config.TTL,
		logger: logger.With().Str("component", "redis_cache").Logger(),
	}
}

// SetBatch replaces the cached opportunities of every event present in the batch.
// Opportunities from an earlier scan of the same event are removed so only the latest scan is served.
func (c *RedisCache) SetBatch(ctx context.Context, opps []*models.ArbitrageOpportunity) error {
	if len(opps) == 0 {
		return nil
	}

	events := make(map[string]struct{})
	for _, opp := range opps {
		events[opp.EventID] = struct{}{}
	}

	pipe := c.client.TxPipeline()

	for eventID := range events {
		if err := c.queueEvict(ctx, pipe, eventID); err != nil {
			return err
		}
	}

	for _, opp := range opps {
		data, err := json.Marshal(opp)
		if err != nil {
			c.logger.Error().Err(err).Str("id", opp.ID.String()).Msg("failed to marshal opportunity")
			continue
		}
		c.queueSet(ctx, pipe, opp, data)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute pipeline: %w", err)
	}

	c.logger.Info().
		Int("count", len(opps)).
		Int("events", len(events)).
		Msg("cached batch of opportunities")

	return nil
}

// ClearEvent removes every cached opportunity of an event
func (c *RedisCache) ClearEvent(ctx context.Context, eventID string) error {
	pipe := c.client.TxPipeline()
	if err := c.queueEvict(ctx, pipe, eventID); err != nil {
		return err
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute pipeline: %w", err)
	}
	return nil
}

// Get retrieves a cached opportunity by ID
func (c *RedisCache) Get(ctx context.Context, id string) (*models.ArbitrageOpportunity, error) {
	data, err := c.client.Get(ctx, opportunityKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get from Redis: %w", err)
	}

	var opp models.ArbitrageOpportunity
	if err := json.Unmarshal(data, &opp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal opportunity: %w", err)
	}

	return &opp, nil
}

// GetByEvent retrieves all cached opportunities for an event, ranked by profit
func (c *RedisCache) GetByEvent(ctx context.Context, eventID string) ([]*models.ArbitrageOpportunity, error) {
	ids, err := c.client.SMembers(ctx, eventKey(eventID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read event index: %w", err)
	}

	opps, _, err := c.load(ctx, ids)
	if err != nil {
		return nil, err
	}

	return arbitrage.Rank(opps), nil
}

// GetTop retrieves the most profitable cached opportunities. Ranking entries whose
// opportunity has expired are pruned and the next window is read until limit live
// opportunities are found or the ranking is exhausted.
func (c *RedisCache) GetTop(ctx context.Context, limit int) ([]*models.ArbitrageOpportunity, error) {
	if limit <= 0 {
		return []*models.ArbitrageOpportunity{}, nil
	}

	top := make([]*models.ArbitrageOpportunity, 0, limit)
	var start int64
	for len(top) < limit {
		ids, err := c.client.ZRevRange(ctx, rankedKey, start, start+int64(limit)-1).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read ranking: %w", err)
		}
		if len(ids) == 0 {
			break
		}

		opps, expired, err := c.load(ctx, ids)
		if err != nil {
			return nil, err
		}
		top = append(top, opps...)

		// Pruned entries no longer occupy a rank
		next := start + int64(len(ids))
		if len(expired) > 0 && c.prune(ctx, expired) {
			next -= int64(len(expired))
		}
		if len(ids) < limit {
			break
		}
		start = next
	}

	top = arbitrage.Rank(top)
	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

// prune drops ranking entries whose opportunity has expired
func (c *RedisCache) prune(ctx context.Context, expired []string) bool {
	members := make([]interface{}, len(expired))
	for i, id := range expired {
		members[i] = id
	}
	if err := c.client.ZRem(ctx, rankedKey, members...).Err(); err != nil {
		c.logger.Warn().Err(err).Int("count", len(expired)).Msg("failed to prune expired ranking entries")
		return false
	}
	return true
}

// Ping checks Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) queueSet(ctx context.Context, pipe redis.Pipeliner, opp *models.ArbitrageOpportunity, data []byte) {
	id := opp.ID.String()
	pipe.Set(ctx, opportunityKey(id), data, c.ttl)
	pipe.SAdd(ctx, eventKey(opp.EventID), id)
	pipe.Expire(ctx, eventKey(opp.EventID), c.ttl)
	pipe.ZAdd(ctx, rankedKey, redis.Z{Score: opp.ProfitPercent.InexactFloat64(), Member: id})
}

func (c *RedisCache) queueEvict(ctx context.Context, pipe redis.Pipeliner, eventID string) error {
	ids, err := c.client.SMembers(ctx, eventKey(eventID)).Result()
	if err != nil {
		return fmt.Errorf("failed to read event index: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	members := make([]interface{}, len(ids))
	keys := make([]string, len(ids))
	for i, id := range ids {
		members[i] = id
		keys[i] = opportunityKey(id)
	}
	pipe.Del(ctx, keys...)
	pipe.ZRem(ctx, rankedKey, members...)
	pipe.Del(ctx, eventKey(eventID))
	return nil
}

// load fetches opportunities by ID, reporting IDs whose entry has expired
func (c *RedisCache) load(ctx context.Context, ids []string) ([]*models.ArbitrageOpportunity, []string, error) {
	if len(ids) == 0 {
		return []*models.ArbitrageOpportunity{}, nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = opportunityKey(id)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get from Redis: %w", err)
	}

	opps := make([]*models.ArbitrageOpportunity, 0, len(values))
	var expired []string
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			expired = append(expired, ids[i])
			continue
		}

		var opp models.ArbitrageOpportunity
		if err := json.Unmarshal([]byte(s), &opp); err != nil {
			c.logger.Warn().Err(err).Str("key", keys[i]).Msg("failed to unmarshal opportunity")
			continue
		}
		opps = append(opps, &opp)
	}

	return opps, expired, nil
}

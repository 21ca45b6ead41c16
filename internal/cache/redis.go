package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/bajeti/bajeti-backend/internal/domain"
)

const reportTTL = 5 * time.Minute

// RedisReportCache stores serialized reports in Redis with a short TTL
type RedisReportCache struct {
	client *redis.Client
}

// NewRedisReportCache connects to Redis and verifies the connection
func NewRedisReportCache(url string) (*RedisReportCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisReportCache{client: client}, nil
}

func (c *RedisReportCache) Get(userID uuid.UUID, period domain.Period, includeIncome bool) ([]domain.CategorySpend, bool) {
	ctx := context.Background()
	key := ReportKey(userID, period, includeIncome)

	cached, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("Report cache read failed")
		}
		return nil, false
	}

	var report []domain.CategorySpend
	if err := json.Unmarshal([]byte(cached), &report); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Report cache entry corrupt")
		return nil, false
	}
	return report, true
}

func (c *RedisReportCache) Set(userID uuid.UUID, period domain.Period, includeIncome bool, report []domain.CategorySpend) {
	ctx := context.Background()
	key := ReportKey(userID, period, includeIncome)

	data, err := json.Marshal(report)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Report cache marshal failed")
		return
	}

	if err := c.client.SetEx(ctx, key, data, reportTTL).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Report cache write failed")
	}
}

func (c *RedisReportCache) InvalidatePeriod(userID uuid.UUID, period domain.Period) {
	ctx := context.Background()
	keys := []string{
		ReportKey(userID, period, false),
		ReportKey(userID, period, true),
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("Report cache invalidation failed")
	}
}

// Close releases the Redis connection
func (c *RedisReportCache) Close() error {
	return c.client.Close()
}

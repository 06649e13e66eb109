package booking

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"domostay/models"
	"domostay/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const availabilityIndexKey = "avail:index"

// RedisAvailabilityCache stores serialized reports under their query key and
// tracks live keys in a set so invalidation can walk only cached queries.
// Entries expire on their own via the TTL; the index tolerates stale members.
type RedisAvailabilityCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisAvailabilityCache(client *redis.Client, ttl time.Duration) *RedisAvailabilityCache {
	return &RedisAvailabilityCache{Client: client, TTL: ttl}
}

func (c *RedisAvailabilityCache) Get(ctx context.Context, q AvailabilityQuery) (*models.PerDayReport, bool) {
	data, err := c.Client.Get(ctx, cacheKey(q)).Result()
	if err != nil {
		return nil, false
	}
	var report models.PerDayReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		utils.GetLogger().Warn("dropping undecodable availability cache entry",
			zap.String("key", cacheKey(q)), zap.Error(err))
		_ = c.Client.Del(ctx, cacheKey(q)).Err()
		return nil, false
	}
	return &report, true
}

func (c *RedisAvailabilityCache) Set(ctx context.Context, q AvailabilityQuery, report *models.PerDayReport) {
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	key := cacheKey(q)
	pipe := c.Client.TxPipeline()
	pipe.Set(ctx, key, data, c.TTL)
	pipe.SAdd(ctx, availabilityIndexKey, key)
	pipe.Expire(ctx, availabilityIndexKey, c.TTL*2)
	if _, err := pipe.Exec(ctx); err != nil {
		utils.GetLogger().Warn("failed to fill availability cache", zap.Error(err))
	}
}

func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, unitID string, entry, exit time.Time) {
	keys, err := c.Client.SMembers(ctx, availabilityIndexKey).Result()
	if err != nil {
		utils.GetLogger().Warn("failed to read availability cache index", zap.Error(err))
		return
	}
	var stale []string
	for _, key := range keys {
		q, ok := parseCacheKey(key)
		if !ok || intersectsQuery(q, unitID, entry, exit) {
			stale = append(stale, key)
		}
	}
	if len(stale) == 0 {
		return
	}
	pipe := c.Client.TxPipeline()
	pipe.Del(ctx, stale...)
	pipe.SRem(ctx, availabilityIndexKey, toInterfaces(stale)...)
	if _, err := pipe.Exec(ctx); err != nil {
		utils.GetLogger().Warn("failed to invalidate availability cache", zap.Error(err))
	}
}

func parseCacheKey(key string) (AvailabilityQuery, bool) {
	trimmed := strings.TrimPrefix(key, "avail:")
	parts := strings.Split(trimmed, "|")
	if len(parts) != 4 {
		return AvailabilityQuery{}, false
	}
	guests, err := strconv.Atoi(parts[1])
	if err != nil {
		return AvailabilityQuery{}, false
	}
	start, err := time.Parse(models.DateLayout, parts[2])
	if err != nil {
		return AvailabilityQuery{}, false
	}
	end, err := time.Parse(models.DateLayout, parts[3])
	if err != nil {
		return AvailabilityQuery{}, false
	}
	return AvailabilityQuery{UnitFilter: parts[0], GuestCount: guests, Start: start, End: end}, true
}

func toInterfaces(keys []string) []interface{} {
	out := make([]interface{}, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
}

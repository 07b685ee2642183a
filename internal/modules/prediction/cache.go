// README: Prediction cache backed by Redis; keys are the model version plus the assembled feature vector.
package prediction

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"nyctaxi/internal/types"
)

const cacheKeyPrefix = "prediction:%s:%s"

// Cache stores fares keyed by model version and feature vector. Predictions
// are deterministic for a given model, so entries never need invalidation
// beyond their TTL.
type Cache interface {
	Get(ctx context.Context, key string) (types.Money, bool, error)
	Set(ctx context.Context, key string, fare types.Money) error
}

type RedisCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{redis: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (types.Money, bool, error) {
	val, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return types.Money{}, false, nil
	}
	if err != nil {
		return types.Money{}, false, err
	}
	cents, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return types.Money{}, false, fmt.Errorf("cached fare %q: %w", val, err)
	}
	return types.Money{Amount: cents, Currency: types.USD}, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, fare types.Money) error {
	return c.redis.Set(ctx, key, strconv.FormatInt(fare.Amount, 10), c.ttl).Err()
}

func cacheKey(version string, row []float64) string {
	h := sha256.New()
	var buf [8]byte
	for _, v := range row {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	return fmt.Sprintf(cacheKeyPrefix, version, hex.EncodeToString(h.Sum(nil))[:32])
}

package embeddings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"jobtailor/internal/config"
	"jobtailor/internal/logging"
)

// RedisCache keeps corpus embeddings across runs, keyed by model and text
// hash. The experience corpus is static, so its vectors rarely change; a
// warm cache makes a daily run cost one embedding call per job instead of
// one per bullet. Cache errors are never fatal; the inner provider is the
// source of truth.
type RedisCache struct {
	inner  Provider
	client *redis.Client
	model  string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache wraps provider with a Redis cache. Returns the provider
// unchanged when no Redis URL is configured or the URL does not parse.
func NewRedisCache(cfg *config.Config, provider Provider) Provider {
	logger := logging.GetGlobalLogger()

	if cfg.Redis.URL == "" {
		return provider
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Warn("invalid redis url, embedding cache disabled", zap.Error(err))
		return provider
	}
	opts.DialTimeout = cfg.Redis.Timeout
	opts.ReadTimeout = cfg.Redis.Timeout
	opts.WriteTimeout = cfg.Redis.Timeout

	return &RedisCache{
		inner:  provider,
		client: redis.NewClient(opts),
		model:  cfg.Embeddings.Model,
		ttl:    cfg.Redis.TTL,
		logger: logger,
	}
}

// Embed serves from Redis when possible, otherwise delegates and stores the
// result.
func (c *RedisCache) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.cacheKey(text)

	cached, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var vec []float32
		if jsonErr := json.Unmarshal([]byte(cached), &vec); jsonErr == nil && len(vec) > 0 {
			return vec, nil
		}
		// Corrupt entry; fall through and recompute.
	case err != redis.Nil:
		c.logger.Warn("embedding cache read failed", zap.Error(err))
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if payload, jsonErr := json.Marshal(vec); jsonErr == nil {
		if setErr := c.client.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
			c.logger.Warn("embedding cache write failed", zap.Error(setErr))
		}
	}

	return vec, nil
}

// Dimension reports the inner provider's vector dimensionality.
func (c *RedisCache) Dimension() int {
	return c.inner.Dimension()
}

func (c *RedisCache) cacheKey(text string) string {
	return fmt.Sprintf("embedding:%s:%s", c.model, textKey(text))
}

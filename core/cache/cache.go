package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"roomdisplay/core/config"
	"roomdisplay/core/logger"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is absent or the cache is disabled.
var ErrCacheMiss = errors.New("cache: miss")

type Cache interface {
	SetString(ctx context.Context, key, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) error
	Delete(ctx context.Context, key string) error
}

type redisCache struct {
	client *redis.Client
}

// New connects to redis when configured. On a missing address or a failed
// ping it returns a no-op cache so every caller degrades to direct provider
// calls instead of failing.
func New(cfg config.RedisConfig) Cache {
	if cfg.Addr == "" {
		logger.Info("Cache:New:Disabled")
		return noopCache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Cache:New:PingFailed", "error", err, "addr", cfg.Addr)
		return noopCache{}
	}

	logger.Info("Cache:New:Connected", "addr", cfg.Addr, "db", cfg.DB)
	return &redisCache{client: client}
}

func (c *redisCache) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *redisCache) GetString(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (c *redisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// noopCache misses every read and swallows every write.
type noopCache struct{}

func (noopCache) SetString(context.Context, string, string, time.Duration) error { return nil }
func (noopCache) GetString(context.Context, string) (string, error)              { return "", ErrCacheMiss }
func (noopCache) SetJSON(context.Context, string, any, time.Duration) error      { return nil }
func (noopCache) GetJSON(context.Context, string, any) error                     { return ErrCacheMiss }
func (noopCache) Delete(context.Context, string) error                           { return nil }

// Noop returns the disabled cache; tests use it directly.
func Noop() Cache { return noopCache{} }

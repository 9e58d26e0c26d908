// Package redis shares run results between service replicas through Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/couchcryptid/storm-hydrograph-service/internal/domain"
)

const keyPrefix = "hydrograph:result:"

// Cache stores JSON-encoded run results under their fingerprint with a TTL.
// It implements pipeline.ResultCache.
type Cache struct {
	client *goredis.Client
	ttl    time.Duration
}

// New connects to the Redis instance at url (redis://[:password@]host:port/db)
// and verifies it with a PING.
func New(ctx context.Context, url string, ttl time.Duration) (*Cache, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewWithClient(client, ttl), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *goredis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, fingerprint string) (domain.RunResult, bool, error) {
	data, err := c.client.Get(ctx, key(fingerprint)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.RunResult{}, false, nil
	}
	if err != nil {
		return domain.RunResult{}, false, fmt.Errorf("redis get: %w", err)
	}
	var r domain.RunResult
	if err := json.Unmarshal(data, &r); err != nil {
		return domain.RunResult{}, false, fmt.Errorf("decode cached result: %w", err)
	}
	return r, true, nil
}

func (c *Cache) Put(ctx context.Context, fingerprint string, result domain.RunResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := c.client.Set(ctx, key(fingerprint), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func key(fingerprint string) string {
	return keyPrefix + fingerprint
}

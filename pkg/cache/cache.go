package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs
const (
	TTLPost    = 5 * time.Minute  // single post reads
	TTLLists   = 30 * time.Second // list queries (refreshed often)
	TTLDefault = 5 * time.Minute
)

// Cache key prefixes
const (
	PrefixPost  = "post:"
	PrefixLists = "posts:"
)

// Service is the Redis cache used on read paths. Mutations always go
// to storage; the cache only ever holds copies that are invalidated
// after every successful write.
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	GetPost(ctx context.Context, id string, dest interface{}) error
	SetPost(ctx context.Context, id string, post interface{}) error
	InvalidatePost(ctx context.Context, id string) error

	GetList(ctx context.Context, key string, dest interface{}) error
	SetList(ctx context.Context, key string, data interface{}) error
	InvalidateLists(ctx context.Context) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates the Redis-backed cache service.
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return fmt.Errorf("redis not available")
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	n, err := c.client.Exists(ctx, key).Result()
	return n > 0, err
}

func (c *redisCache) postKey(id string) string {
	return PrefixPost + id
}

func (c *redisCache) GetPost(ctx context.Context, id string, dest interface{}) error {
	return c.Get(ctx, c.postKey(id), dest)
}

func (c *redisCache) SetPost(ctx context.Context, id string, post interface{}) error {
	return c.Set(ctx, c.postKey(id), post, TTLPost)
}

func (c *redisCache) InvalidatePost(ctx context.Context, id string) error {
	return c.Delete(ctx, c.postKey(id))
}

func (c *redisCache) GetList(ctx context.Context, key string, dest interface{}) error {
	return c.Get(ctx, PrefixLists+key, dest)
}

func (c *redisCache) SetList(ctx context.Context, key string, data interface{}) error {
	return c.Set(ctx, PrefixLists+key, data, TTLLists)
}

func (c *redisCache) InvalidateLists(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.deleteByPattern(ctx, PrefixLists+"*")
}

// deleteByPattern removes all keys matching pattern using SCAN to
// avoid blocking Redis the way KEYS would.
func (c *redisCache) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

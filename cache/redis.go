package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"musicbox/config"

	"github.com/go-redis/redis/v8"
)

const (
	defaultKeyPrefix = "musicbox:cache:"
	scanBatch        = 200
)

// ConnectRedis 初始化Redis连接
func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisCache stores responses in Redis. Expiry is delegated to Redis key TTLs,
// so no sweeper is needed.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache creates a Redis-backed cache. An empty prefix uses the default namespace.
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) redisKey(key Key) string {
	return c.prefix + key.String()
}

func (c *RedisCache) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, c.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cache key %s: %w", key, err)
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key Key, value []byte) error {
	if err := c.client.Set(ctx, c.redisKey(key), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}
	return nil
}

// Invalidate 使用 SCAN 遍历本缓存前缀下的键，删除匹配的键
func (c *RedisCache) Invalidate(ctx context.Context, match func(Key) bool) (int, error) {
	var doomed []string
	iter := c.client.Scan(ctx, 0, c.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		full := iter.Val()
		key, ok := ParseKey(full[len(c.prefix):])
		if ok && match(key) {
			doomed = append(doomed, full)
		}
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan cache keys: %w", err)
	}
	return c.del(ctx, doomed)
}

// InvalidateAll 只清除本缓存前缀下的键，不执行 FLUSHDB
func (c *RedisCache) InvalidateAll(ctx context.Context) error {
	_, err := c.Invalidate(ctx, func(Key) bool { return true })
	return err
}

func (c *RedisCache) del(ctx context.Context, keys []string) (int, error) {
	removed := 0
	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		n, err := c.client.Del(ctx, keys[start:end]...).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to delete cache keys: %w", err)
		}
		removed += int(n)
	}
	return removed, nil
}

// Probe 测试Redis连接和基本读写操作
func Probe(ctx context.Context, client *redis.Client) error {
	const probeKey = "musicbox:probe"

	if err := client.Set(ctx, probeKey, "ok", time.Minute).Err(); err != nil {
		return fmt.Errorf("failed to set Redis key: %w", err)
	}
	val, err := client.Get(ctx, probeKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get Redis key: %w", err)
	}
	if val != "ok" {
		return fmt.Errorf("unexpected value from Redis: got %s", val)
	}
	if err := client.Del(ctx, probeKey).Err(); err != nil {
		return fmt.Errorf("failed to delete Redis key: %w", err)
	}
	return nil
}

// Ping checks that Redis is reachable.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

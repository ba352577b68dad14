// Package cache 提供 JSON 结果缓存
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss 缓存未命中
var ErrMiss = errors.New("cache miss")

// Cache 结果缓存接口
type Cache interface {
	// Get 读取并反序列化到 dest，未命中返回 ErrMiss
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

const keyPrefix = "tool-catalog:"

// RedisCache 基于 Redis 的缓存
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache 创建 Redis 缓存
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get 读取缓存
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return nil
}

// Set 写入缓存，ttl <= 0 时不写
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	return c.client.Set(ctx, keyPrefix+key, data, ttl).Err()
}

// Nop 不缓存任何内容
type Nop struct{}

func (Nop) Get(ctx context.Context, key string, dest interface{}) error { return ErrMiss }

func (Nop) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ashwinyue/tool-catalog/internal/cache"
	"github.com/ashwinyue/tool-catalog/internal/config"
	"github.com/ashwinyue/tool-catalog/internal/logger"
	"github.com/ashwinyue/tool-catalog/internal/service/search"
)

// ========== 基础设施 Provider ==========

// NewRedisClient 创建 Redis 客户端，未配置 host 时返回 nil
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig, log *logger.Logger) *redis.Client {
	if cfg.Host == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unavailable, trending cache disabled", "addr", cfg.GetAddr(), "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// NewCache 有 Redis 时使用 Redis 缓存，否则不缓存
func NewCache(client *redis.Client) cache.Cache {
	if client == nil {
		return cache.Nop{}
	}
	return cache.NewRedisCache(client)
}

// NewIndexer 配置了 Elasticsearch 时创建索引器，否则返回空实现
func NewIndexer(cfg *config.ElasticConfig, log *logger.Logger) search.Indexer {
	if cfg.Host == "" {
		return search.Nop{}
	}
	client, err := search.NewES8Client(cfg)
	if err != nil {
		log.Warn("failed to create elasticsearch client, search falls back to database", "error", err)
		return search.Nop{}
	}
	prefix := cfg.IndexPrefix
	if prefix == "" {
		prefix = "tool_catalog"
	}
	return search.NewES8Indexer(client, prefix)
}

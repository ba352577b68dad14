package service

import (
	"context"

	"github.com/ashwinyue/tool-catalog/internal/cache"
	"github.com/ashwinyue/tool-catalog/internal/config"
	"github.com/ashwinyue/tool-catalog/internal/logger"
	"github.com/ashwinyue/tool-catalog/internal/metrics"
	"github.com/ashwinyue/tool-catalog/internal/repository"
	"github.com/ashwinyue/tool-catalog/internal/service/auth"
	"github.com/ashwinyue/tool-catalog/internal/service/category"
	"github.com/ashwinyue/tool-catalog/internal/service/search"
	"github.com/ashwinyue/tool-catalog/internal/service/stats"
	"github.com/ashwinyue/tool-catalog/internal/service/tool"
	"github.com/ashwinyue/tool-catalog/internal/service/trending"
)

// Services 服务集合
type Services struct {
	// 业务服务
	Tool     *tool.Service
	Trending *trending.Service
	Category *category.Service
	Auth     *auth.Service
	Stats    *stats.Service

	// 配置
	Config *config.Config

	// 基础设施
	Cache   cache.Cache
	Indexer search.Indexer
	Metrics *metrics.Metrics
	Logger  *logger.Logger
}

// Infra 外部依赖，nil 字段使用空实现
type Infra struct {
	Cache   cache.Cache
	Indexer search.Indexer
	Metrics *metrics.Metrics
	Logger  *logger.Logger
}

// NewServices 创建所有服务
func NewServices(repo *repository.Repositories, cfg *config.Config, infra Infra) (*Services, error) {
	if infra.Cache == nil {
		infra.Cache = cache.Nop{}
	}
	if infra.Indexer == nil {
		infra.Indexer = search.Nop{}
	}
	if infra.Logger == nil {
		infra.Logger = logger.NewNop()
	}

	authSvc, err := auth.NewService(cfg.Auth)
	if err != nil {
		return nil, err
	}

	return &Services{
		Tool:     tool.NewService(repo, infra.Indexer, infra.Metrics, infra.Logger.With("component", "tool")),
		Trending: trending.NewService(repo, infra.Cache, cfg.Trending, infra.Metrics, infra.Logger.With("component", "trending")),
		Category: category.NewService(repo, infra.Logger.With("component", "category")),
		Auth:     authSvc,
		Stats:    stats.NewService(repo),

		Config: cfg,

		Cache:   infra.Cache,
		Indexer: infra.Indexer,
		Metrics: infra.Metrics,
		Logger:  infra.Logger,
	}, nil
}

// Bootstrap 在服务启动时准备搜索索引
func (s *Services) Bootstrap(ctx context.Context) {
	es, ok := s.Indexer.(*search.ES8Indexer)
	if !ok {
		return
	}
	if err := es.EnsureIndex(ctx); err != nil {
		s.Logger.Warn("failed to ensure search index", "error", err)
	}
}

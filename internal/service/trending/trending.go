// Package trending 提供热门工具榜单服务
package trending

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ashwinyue/tool-catalog/internal/cache"
	"github.com/ashwinyue/tool-catalog/internal/config"
	"github.com/ashwinyue/tool-catalog/internal/logger"
	"github.com/ashwinyue/tool-catalog/internal/metrics"
	"github.com/ashwinyue/tool-catalog/internal/model"
	"github.com/ashwinyue/tool-catalog/internal/repository"
	"github.com/ashwinyue/tool-catalog/internal/service/types"
	ranking "github.com/ashwinyue/tool-catalog/internal/trending"
)

// Request 榜单请求
type Request struct {
	Period   string
	Limit    int
	Category string
}

// Item 榜单条目
type Item struct {
	ranking.Entry
	Tool *model.Tool `json:"tool"`
}

// Result 榜单结果
type Result struct {
	Period   ranking.Period `json:"period"`
	Since    time.Time      `json:"since"`
	Fallback bool           `json:"fallback"`
	Items    []Item         `json:"items"`
}

// Service 热门榜服务
type Service struct {
	repo    *repository.Repositories
	cache   cache.Cache
	cfg     config.TrendingConfig
	metrics *metrics.Metrics
	log     *logger.Logger
	now     func() time.Time
}

// NewService 创建热门榜服务
func NewService(repo *repository.Repositories, c cache.Cache, cfg config.TrendingConfig, m *metrics.Metrics, log *logger.Logger) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 100
	}
	return &Service{
		repo:    repo,
		cache:   c,
		cfg:     cfg,
		metrics: m,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock 替换时钟，用于测试
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Trending 计算热门榜
func (s *Service) Trending(ctx context.Context, req Request) (*Result, error) {
	period, err := ranking.ParsePeriod(req.Period)
	if err != nil {
		return nil, err
	}
	limit := s.limit(req.Limit)
	category := model.Slugify(req.Category)

	key := fmt.Sprintf("trending:%s:%d:%s", period, limit, category)
	var cached Result
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		s.metrics.IncTrending("cache")
		return &cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("trending cache read failed", "key", key, "error", err)
	}

	since := period.Since(s.now())
	usage, err := s.repo.Usage.CountSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("%w: count usage: %v", types.ErrDependencyUnavailable, err)
	}

	var tools []*model.Tool
	if len(usage) == 0 {
		tools, err = s.repo.Tool.TopByScore(ctx, category, limit)
	} else {
		// 取出全部有使用记录的工具，分类过滤不能截断候选集
		ids := make([]string, 0, len(usage))
		for id := range usage {
			ids = append(ids, id)
		}
		tools, err = s.repo.Tool.GetByIDs(ctx, ids, category)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load tools: %v", types.ErrDependencyUnavailable, err)
	}

	stats := make([]ranking.ToolStats, 0, len(tools))
	byID := make(map[string]*model.Tool, len(tools))
	for _, t := range tools {
		byID[t.ID] = t
		stats = append(stats, ranking.ToolStats{
			ID:            t.ID,
			TotalScore:    t.TotalScore,
			DownloadCount: t.DownloadCount,
			Category:      t.Category,
		})
	}

	entries := ranking.Rank(usage, stats, ranking.Query{Period: period, Limit: limit, Category: category})
	result := &Result{
		Period:   period,
		Since:    since,
		Fallback: len(usage) == 0,
		Items:    make([]Item, 0, len(entries)),
	}
	for _, e := range entries {
		result.Items = append(result.Items, Item{Entry: e, Tool: byID[e.ToolID]})
	}

	if result.Fallback {
		s.metrics.IncTrending("fallback")
	} else {
		s.metrics.IncTrending("blended")
	}
	if err := s.cache.Set(ctx, key, result, s.cfg.GetCacheTTL()); err != nil {
		s.log.Warn("trending cache write failed", "key", key, "error", err)
	}
	return result, nil
}

func (s *Service) limit(requested int) int {
	switch {
	case requested <= 0:
		return s.cfg.DefaultLimit
	case requested > s.cfg.MaxLimit:
		return s.cfg.MaxLimit
	default:
		return requested
	}
}

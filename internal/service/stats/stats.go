// Package stats 汇总目录概况
package stats

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ashwinyue/tool-catalog/internal/repository"
	"github.com/ashwinyue/tool-catalog/internal/service/types"
)

// Overview 目录概况
type Overview struct {
	TotalTools   int64            `json:"totalTools"`
	Grades       map[string]int64 `json:"grades"`
	Categories   int64            `json:"categories"`
	UsageLast24h int64            `json:"usageLast24h"`
	GeneratedAt  time.Time        `json:"generatedAt"`
}

// Service 统计服务
type Service struct {
	repo *repository.Repositories
	now  func() time.Time
}

// NewService 创建统计服务
func NewService(repo *repository.Repositories) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Overview 并发读取各项计数
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	now := s.now()
	out := &Overview{GeneratedAt: now}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.Tool.Count(gctx)
		out.TotalTools = n
		return err
	})
	g.Go(func() error {
		grades, err := s.repo.Tool.CountByGrade(gctx)
		out.Grades = grades
		return err
	})
	g.Go(func() error {
		n, err := s.repo.Category.Count(gctx)
		out.Categories = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.Usage.CountAllSince(gctx, now.Add(-24*time.Hour))
		out.UsageLast24h = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrDependencyUnavailable, err)
	}
	if out.Grades == nil {
		out.Grades = map[string]int64{}
	}
	return out, nil
}

// Package category 维护分类及其工具计数
package category

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ashwinyue/tool-catalog/internal/logger"
	"github.com/ashwinyue/tool-catalog/internal/model"
	"github.com/ashwinyue/tool-catalog/internal/repository"
)

// ErrCategoryNotFound 分类不存在
var ErrCategoryNotFound = errors.New("category not found")

// Service 分类服务
type Service struct {
	repo *repository.Repositories
	log  *logger.Logger
}

// NewService 创建分类服务
func NewService(repo *repository.Repositories, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{repo: repo, log: log}
}

// List 列出分类
func (s *Service) List(ctx context.Context) ([]*model.Category, error) {
	categories, err := s.repo.Category.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Get 按 slug 获取分类
func (s *Service) Get(ctx context.Context, slug string) (*model.Category, error) {
	category, err := s.repo.Category.GetBySlug(ctx, model.Slugify(slug))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// Rebuild 按工具实际归属重算全部分类计数，保留已有的显示名
func (s *Service) Rebuild(ctx context.Context) ([]*model.Category, error) {
	var rebuilt []*model.Category
	err := s.repo.Transaction(ctx, func(tx *repository.Repositories) error {
		counts, err := tx.Tool.CountByCategory(ctx)
		if err != nil {
			return err
		}
		existing, err := tx.Category.List(ctx)
		if err != nil {
			return err
		}
		names := make(map[string]string, len(existing))
		for _, c := range existing {
			names[c.Slug] = c.Name
		}

		rebuilt = make([]*model.Category, 0, len(counts))
		for slug, count := range counts {
			if slug == "" {
				continue
			}
			name := names[slug]
			if name == "" {
				name = slug
			}
			rebuilt = append(rebuilt, &model.Category{Slug: slug, Name: name, ToolCount: count})
		}
		sort.Slice(rebuilt, func(i, j int) bool {
			if rebuilt[i].ToolCount != rebuilt[j].ToolCount {
				return rebuilt[i].ToolCount > rebuilt[j].ToolCount
			}
			return rebuilt[i].Slug < rebuilt[j].Slug
		})
		return tx.Category.ReplaceAll(ctx, rebuilt)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild categories: %w", err)
	}

	s.log.Info("category counters rebuilt", "categories", len(rebuilt))
	return rebuilt, nil
}

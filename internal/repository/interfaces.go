// Package repository 定义数据访问接口
// 接口抽象使依赖注入和单元测试成为可能
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ashwinyue/tool-catalog/internal/model"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// ToolFilter 工具列表与搜索条件，空字段不参与过滤
type ToolFilter struct {
	Query    string // 名称或描述模糊匹配
	Category string
	Chain    string
	Protocol string
	Tag      string
	Grade    string
	MinScore int
}

// ========== ToolRepository 接口 ==========

// ToolRepository 工具数据访问接口
type ToolRepository interface {
	Create(ctx context.Context, tool *model.Tool) error
	GetByID(ctx context.Context, id string) (*model.Tool, error)
	// GetByIDForUpdate 在事务内读取并锁定该行
	GetByIDForUpdate(ctx context.Context, id string) (*model.Tool, error)
	GetByName(ctx context.Context, name string) (*model.Tool, error)
	GetByIDs(ctx context.Context, ids []string, category string) ([]*model.Tool, error)
	List(ctx context.Context, filter ToolFilter, offset, limit int) ([]*model.Tool, int64, error)
	TopByScore(ctx context.Context, category string, limit int) ([]*model.Tool, error)
	Update(ctx context.Context, tool *model.Tool) error
	Delete(ctx context.Context, id string) error
	IncrementCounters(ctx context.Context, id string, usage, downloads int64) error
	Count(ctx context.Context) (int64, error)
	CountByGrade(ctx context.Context) (map[string]int64, error)
	CountByCategory(ctx context.Context) (map[string]int64, error)
}

// ========== UsageRepository 接口 ==========

// UsageRepository 使用事件数据访问接口
type UsageRepository interface {
	Create(ctx context.Context, evt *model.UsageEvent) error
	// CountSince 按工具统计 since 之后（含）的事件数
	CountSince(ctx context.Context, since time.Time) (map[string]int, error)
	CountAllSince(ctx context.Context, since time.Time) (int64, error)
	DeleteByToolID(ctx context.Context, toolID string) error
}

// ========== CategoryRepository 接口 ==========

// CategoryRepository 分类计数数据访问接口
type CategoryRepository interface {
	List(ctx context.Context) ([]*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	Increment(ctx context.Context, slug, name string) error
	// Decrement 计数不会小于 0
	Decrement(ctx context.Context, slug string) error
	ReplaceAll(ctx context.Context, categories []*model.Category) error
	Count(ctx context.Context) (int64, error)
}

// 确保实现了接口
var (
	_ ToolRepository     = (*toolRepositoryImpl)(nil)
	_ UsageRepository    = (*usageRepositoryImpl)(nil)
	_ CategoryRepository = (*categoryRepositoryImpl)(nil)
)

package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repositories 仓库集合，用于统一管理所有仓库
type Repositories struct {
	DB       *gorm.DB // 直接访问数据库
	Tool     ToolRepository
	Usage    UsageRepository
	Category CategoryRepository
}

// NewRepositories 创建所有仓库
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:       db,
		Tool:     NewToolRepository(db),
		Usage:    NewUsageRepository(db),
		Category: NewCategoryRepository(db),
	}
}

// Transaction 在同一事务中执行 fn，fn 收到绑定事务的仓库集合
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// notFound 统一 gorm 的未找到错误
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ashwinyue/tool-catalog/internal/model"
)

// categoryRepositoryImpl 分类仓库
type categoryRepositoryImpl struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓库
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepositoryImpl{db: db}
}

// List 列出分类
func (r *categoryRepositoryImpl) List(ctx context.Context) ([]*model.Category, error) {
	var categories []*model.Category
	err := r.db.WithContext(ctx).Order("tool_count DESC, slug ASC").Find(&categories).Error
	return categories, err
}

// GetBySlug 按 slug 获取分类
func (r *categoryRepositoryImpl) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, notFound(err)
	}
	return &category, nil
}

// Increment 计数加一，分类不存在时创建
func (r *categoryRepositoryImpl) Increment(ctx context.Context, slug, name string) error {
	category := &model.Category{Slug: slug, Name: name, ToolCount: 1}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"tool_count": gorm.Expr("categories.tool_count + 1")}),
	}).Create(category).Error
}

// Decrement 计数减一
func (r *categoryRepositoryImpl) Decrement(ctx context.Context, slug string) error {
	return r.db.WithContext(ctx).Model(&model.Category{}).
		Where("slug = ? AND tool_count > 0", slug).
		UpdateColumn("tool_count", gorm.Expr("tool_count - 1")).Error
}

// ReplaceAll 用给定计数覆盖全部分类
func (r *categoryRepositoryImpl) ReplaceAll(ctx context.Context, categories []*model.Category) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Category{}).Error; err != nil {
			return err
		}
		if len(categories) == 0 {
			return nil
		}
		return tx.Create(&categories).Error
	})
}

// Count 分类数量
func (r *categoryRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Category{}).Count(&total).Error
	return total, err
}

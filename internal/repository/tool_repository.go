package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ashwinyue/tool-catalog/internal/model"
)

// toolRepositoryImpl 工具数据访问
type toolRepositoryImpl struct {
	db *gorm.DB
}

// NewToolRepository 创建工具仓库
func NewToolRepository(db *gorm.DB) ToolRepository {
	return &toolRepositoryImpl{db: db}
}

// Create 创建工具
func (r *toolRepositoryImpl) Create(ctx context.Context, tool *model.Tool) error {
	return r.db.WithContext(ctx).Create(tool).Error
}

// GetByID 获取工具
func (r *toolRepositoryImpl) GetByID(ctx context.Context, id string) (*model.Tool, error) {
	var tool model.Tool
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tool).Error; err != nil {
		return nil, notFound(err)
	}
	return &tool, nil
}

// GetByIDForUpdate 获取并锁定工具行（sqlite 不支持行锁，依赖其库级写锁）
func (r *toolRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (*model.Tool, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var tool model.Tool
	if err := query.Where("id = ?", id).First(&tool).Error; err != nil {
		return nil, notFound(err)
	}
	return &tool, nil
}

// GetByName 按名称获取工具
func (r *toolRepositoryImpl) GetByName(ctx context.Context, name string) (*model.Tool, error) {
	var tool model.Tool
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tool).Error; err != nil {
		return nil, notFound(err)
	}
	return &tool, nil
}

// GetByIDs 批量获取工具，category 非空时只返回该分类
func (r *toolRepositoryImpl) GetByIDs(ctx context.Context, ids []string, category string) ([]*model.Tool, error) {
	tools := []*model.Tool{}
	if len(ids) == 0 {
		return tools, nil
	}
	query := r.db.WithContext(ctx).Where("id IN ?", ids)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	err := query.Find(&tools).Error
	return tools, err
}

// List 分页查询工具
func (r *toolRepositoryImpl) List(ctx context.Context, filter ToolFilter, offset, limit int) ([]*model.Tool, int64, error) {
	var tools []*model.Tool
	var total int64

	query := applyFilter(r.db.WithContext(ctx).Model(&model.Tool{}), filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tools: %w", err)
	}

	order := "created_at DESC, id ASC"
	if filter.Query != "" || filter.MinScore > 0 {
		order = "total_score DESC, download_count DESC, id ASC"
	}

	err := query.Order(order).Offset(offset).Limit(limit).Find(&tools).Error
	return tools, total, err
}

// TopByScore 按信任分、下载量排序取前 limit 个
func (r *toolRepositoryImpl) TopByScore(ctx context.Context, category string, limit int) ([]*model.Tool, error) {
	var tools []*model.Tool
	query := r.db.WithContext(ctx)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	err := query.Order("total_score DESC, download_count DESC, id ASC").Limit(limit).Find(&tools).Error
	return tools, err
}

// Update 更新工具
func (r *toolRepositoryImpl) Update(ctx context.Context, tool *model.Tool) error {
	return r.db.WithContext(ctx).Save(tool).Error
}

// Delete 删除工具
func (r *toolRepositoryImpl) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.Tool{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementCounters 原子累加使用量与下载量
func (r *toolRepositoryImpl) IncrementCounters(ctx context.Context, id string, usage, downloads int64) error {
	res := r.db.WithContext(ctx).Model(&model.Tool{}).Where("id = ?", id).Updates(map[string]interface{}{
		"usage_count":    gorm.Expr("usage_count + ?", usage),
		"download_count": gorm.Expr("download_count + ?", downloads),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count 工具总数
func (r *toolRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Tool{}).Count(&total).Error
	return total, err
}

type groupCount struct {
	GroupKey string
	Count    int64
}

// CountByGrade 按等级统计
func (r *toolRepositoryImpl) CountByGrade(ctx context.Context) (map[string]int64, error) {
	return r.countBy(ctx, "grade")
}

// CountByCategory 按分类统计，用于重建分类计数
func (r *toolRepositoryImpl) CountByCategory(ctx context.Context) (map[string]int64, error) {
	return r.countBy(ctx, "category")
}

func (r *toolRepositoryImpl) countBy(ctx context.Context, column string) (map[string]int64, error) {
	var rows []groupCount
	err := r.db.WithContext(ctx).Model(&model.Tool{}).
		Select(column + " AS group_key, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count tools by %s: %w", column, err)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.GroupKey] = row.Count
	}
	return out, nil
}

// applyFilter 拼接过滤条件；集合字段以 JSON 文本匹配，兼容 postgres 与 sqlite
func applyFilter(query *gorm.DB, f ToolFilter) *gorm.DB {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		pattern := "%" + q + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.Grade != "" {
		query = query.Where("grade = ?", strings.ToLower(f.Grade))
	}
	if f.MinScore > 0 {
		query = query.Where("total_score >= ?", f.MinScore)
	}
	sets := []struct{ column, value string }{
		{"chains", f.Chain},
		{"protocols", f.Protocol},
		{"tags", f.Tag},
	}
	for _, s := range sets {
		if v := strings.ToLower(strings.TrimSpace(s.value)); v != "" {
			query = query.Where("CAST("+s.column+" AS TEXT) LIKE ?", `%"`+v+`"%`)
		}
	}
	return query
}

package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ashwinyue/tool-catalog/internal/model"
)

// usageRepositoryImpl 使用事件仓库
type usageRepositoryImpl struct {
	db *gorm.DB
}

// NewUsageRepository 创建使用事件仓库
func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepositoryImpl{db: db}
}

// Create 追加事件
func (r *usageRepositoryImpl) Create(ctx context.Context, evt *model.UsageEvent) error {
	return r.db.WithContext(ctx).Create(evt).Error
}

type toolUsage struct {
	ToolID string
	Count  int
}

// CountSince 按工具聚合窗口内事件数
func (r *usageRepositoryImpl) CountSince(ctx context.Context, since time.Time) (map[string]int, error) {
	var rows []toolUsage
	err := r.db.WithContext(ctx).Model(&model.UsageEvent{}).
		Select("tool_id, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("tool_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count usage: %w", err)
	}

	usage := make(map[string]int, len(rows))
	for _, row := range rows {
		usage[row.ToolID] = row.Count
	}
	return usage, nil
}

// CountAllSince 窗口内事件总数
func (r *usageRepositoryImpl) CountAllSince(ctx context.Context, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.UsageEvent{}).Where("created_at >= ?", since).Count(&total).Error
	return total, err
}

// DeleteByToolID 删除工具的全部事件
func (r *usageRepositoryImpl) DeleteByToolID(ctx context.Context, toolID string) error {
	return r.db.WithContext(ctx).Where("tool_id = ?", toolID).Delete(&model.UsageEvent{}).Error
}

// Package testutil 提供测试辅助工具
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ashwinyue/tool-catalog/internal/database"
	"github.com/ashwinyue/tool-catalog/internal/model"
	"github.com/ashwinyue/tool-catalog/internal/repository"
	"github.com/ashwinyue/tool-catalog/internal/scoring"
)

// NewDB 创建已迁移的内存 sqlite，测试结束自动关闭
func NewDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewRepos 基于内存库创建仓库集合
func NewRepos(t *testing.T) (*repository.Repositories, *database.DB) {
	t.Helper()
	db := NewDB(t)
	return repository.NewRepositories(db.DB), db
}

// Tool 构造已计算分数的工具
func Tool(name, category string, flags scoring.Flags) *model.Tool {
	tool := &model.Tool{
		ID:        uuid.New().String(),
		Name:      name,
		Category:  category,
		Tags:      model.NormalizeSet(nil),
		Chains:    model.NormalizeSet(nil),
		Protocols: model.NormalizeSet(nil),
	}
	tool.SetQualityFlags(flags)
	return tool
}

// InsertTool 直接写入工具，不经过服务层
func InsertTool(t *testing.T, repos *repository.Repositories, tool *model.Tool) *model.Tool {
	t.Helper()
	if err := repos.Tool.Create(context.Background(), tool); err != nil {
		t.Fatalf("insert tool %s: %v", tool.Name, err)
	}
	return tool
}

// AddUsage 写入 n 条 use 事件
func AddUsage(t *testing.T, repos *repository.Repositories, toolID string, n int, at time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		err := repos.Usage.Create(context.Background(), &model.UsageEvent{
			ID:        uuid.New().String(),
			ToolID:    toolID,
			Action:    model.UsageActionUse,
			CreatedAt: at,
		})
		if err != nil {
			t.Fatalf("insert usage: %v", err)
		}
	}
}

// 常用标记组合
var (
	FlagsRequired = scoring.Flags{Validated: true, HasTools: true, HasDeployment: true, HasReadme: true}
	FlagsAll      = scoring.Flags{Validated: true, Claimed: true, HasTools: true, HasReadme: true, HasLicense: true, HasDeployment: true, HasDeployMoreThanManual: true, HasPrompts: true, HasResources: true}
)

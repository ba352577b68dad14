// Package search 维护工具的全文检索索引
package search

import (
	"context"

	"github.com/ashwinyue/tool-catalog/internal/model"
)

// Document 索引中的工具文档
type Document struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Chains      []string `json:"chains"`
	Protocols   []string `json:"protocols"`
	Grade       string   `json:"grade"`
	TotalScore  int      `json:"total_score"`
}

// NewDocument 从工具构造索引文档
func NewDocument(t *model.Tool) Document {
	return Document{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Category:    t.Category,
		Tags:        []string(t.Tags),
		Chains:      []string(t.Chains),
		Protocols:   []string(t.Protocols),
		Grade:       t.Grade,
		TotalScore:  t.TotalScore,
	}
}

// Query 检索条件
type Query struct {
	Text     string
	Category string
	Chain    string
	Protocol string
	Tag      string
	Grade    string
	MinScore int
	From     int
	Size     int
}

// Indexer 检索索引接口
type Indexer interface {
	// Enabled 为 false 时调用方应改用数据库检索
	Enabled() bool
	Index(ctx context.Context, doc Document) error
	Delete(ctx context.Context, id string) error
	// Search 返回按相关度排序的工具 ID 与命中总数
	Search(ctx context.Context, q Query) ([]string, int64, error)
}

// Nop 未配置 Elasticsearch 时使用
type Nop struct{}

func (Nop) Enabled() bool { return false }

func (Nop) Index(ctx context.Context, doc Document) error { return nil }

func (Nop) Delete(ctx context.Context, id string) error { return nil }

func (Nop) Search(ctx context.Context, q Query) ([]string, int64, error) {
	return nil, 0, nil
}

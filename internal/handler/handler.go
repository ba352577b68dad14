package handler

import (
	"github.com/ashwinyue/tool-catalog/internal/service"
)

// Handlers 处理器集合
type Handlers struct {
	Tool     *ToolHandler
	Trending *TrendingHandler
	Category *CategoryHandler
	Auth     *AuthHandler
	System   *SystemHandler
}

// NewHandlers 创建所有处理器
func NewHandlers(svc *service.Services, db Pinger) *Handlers {
	return &Handlers{
		Tool:     NewToolHandler(svc),
		Trending: NewTrendingHandler(svc),
		Category: NewCategoryHandler(svc),
		Auth:     NewAuthHandler(svc),
		System:   NewSystemHandler(svc, db),
	}
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/tool-catalog/internal/service"
)

// CategoryHandler 分类处理器
type CategoryHandler struct {
	svc *service.Services
}

// NewCategoryHandler 创建分类处理器
func NewCategoryHandler(svc *service.Services) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

// ListCategories 列出分类
// GET /api/v1/categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.svc.Category.List(c.Request.Context())
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, categories)
}

// GetCategory 获取分类
// GET /api/v1/categories/:slug
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	category, err := h.svc.Category.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, category)
}

// RebuildCategories 重算分类计数
// POST /api/v1/categories/rebuild
func (h *CategoryHandler) RebuildCategories(c *gin.Context) {
	categories, err := h.svc.Category.Rebuild(c.Request.Context())
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, categories)
}

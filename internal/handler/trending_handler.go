package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/tool-catalog/internal/service"
	"github.com/ashwinyue/tool-catalog/internal/service/trending"
)

// TrendingHandler 热门榜处理器
type TrendingHandler struct {
	svc *service.Services
}

// NewTrendingHandler 创建热门榜处理器
func NewTrendingHandler(svc *service.Services) *TrendingHandler {
	return &TrendingHandler{svc: svc}
}

// Trending 热门工具
// GET /api/v1/tools/trending?period=week&limit=10&category=defi
func (h *TrendingHandler) Trending(c *gin.Context) {
	res, err := h.svc.Trending.Trending(c.Request.Context(), trending.Request{
		Period:   c.Query("period"),
		Limit:    queryInt(c, "limit"),
		Category: c.Query("category"),
	})
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, res)
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/tool-catalog/internal/service"
)

// Pinger 健康检查依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler 系统处理器
type SystemHandler struct {
	svc *service.Services
	db  Pinger
}

// NewSystemHandler 创建系统处理器
func NewSystemHandler(svc *service.Services, db Pinger) *SystemHandler {
	return &SystemHandler{svc: svc, db: db}
}

// Health 健康检查
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	status := gin.H{
		"status":  "ok",
		"version": h.svc.Config.App.Version,
		"search":  h.svc.Indexer.Enabled(),
	}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
	}
	c.JSON(http.StatusOK, status)
}

// Stats 目录概况
// GET /api/v1/stats
func (h *SystemHandler) Stats(c *gin.Context) {
	overview, err := h.svc.Stats.Overview(c.Request.Context())
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, overview)
}

package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ashwinyue/tool-catalog/internal/handler"
	"github.com/ashwinyue/tool-catalog/internal/middleware"
	"github.com/ashwinyue/tool-catalog/internal/service"
)

// SetupRouter 设置路由，gatherer 为 nil 时使用默认注册器
func SetupRouter(h *handler.Handlers, svc *service.Services, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(middleware.RecoveryMiddleware(svc.Logger))
	r.Use(middleware.LoggingMiddleware(svc.Logger))
	r.Use(middleware.MetricsMiddleware(svc.Metrics))
	r.Use(middleware.CORSMiddleware())

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// 健康检查与指标
	r.GET("/health", h.System.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	admin := middleware.RequireAdmin(svc.Auth)

	// API v1
	v1 := r.Group("/api/v1")
	{
		v1.POST("/auth/token", h.Auth.IssueToken)
		v1.GET("/stats", h.System.Stats)

		// Tool 工具
		tools := v1.Group("/tools")
		{
			tools.GET("", h.Tool.ListTools)
			tools.GET("/search", h.Tool.SearchTools)
			tools.GET("/trending", h.Trending.Trending)
			tools.GET("/:id", h.Tool.GetTool)
			tools.GET("/:id/score", h.Tool.GetScore)
			tools.POST("/:id/usage", h.Tool.RecordUsage)

			tools.POST("", admin, h.Tool.CreateTool)
			tools.PATCH("/:id", admin, h.Tool.UpdateTool)
			tools.DELETE("/:id", admin, h.Tool.DeleteTool)
		}

		// Category 分类
		categories := v1.Group("/categories")
		{
			categories.GET("", h.Category.ListCategories)
			categories.GET("/:slug", h.Category.GetCategory)
			categories.POST("/rebuild", admin, h.Category.RebuildCategories)
		}
	}

	return r
}

package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/tool-catalog/internal/model"
	"github.com/ashwinyue/tool-catalog/internal/service"
	"github.com/ashwinyue/tool-catalog/internal/service/tool"
)

// ToolHandler 工具处理器
type ToolHandler struct {
	svc *service.Services
}

// NewToolHandler 创建工具处理器
func NewToolHandler(svc *service.Services) *ToolHandler {
	return &ToolHandler{svc: svc}
}

// CreateTool 创建工具
// POST /api/v1/tools
func (h *ToolHandler) CreateTool(c *gin.Context) {
	var req tool.CreateToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	t, err := h.svc.Tool.CreateTool(c.Request.Context(), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	created(c, t)
}

// GetTool 获取工具
// GET /api/v1/tools/:id
func (h *ToolHandler) GetTool(c *gin.Context) {
	t, err := h.svc.Tool.GetTool(c.Request.Context(), c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, t)
}

// GetScore 获取评分明细
// GET /api/v1/tools/:id/score
func (h *ToolHandler) GetScore(c *gin.Context) {
	score, err := h.svc.Tool.GetScore(c.Request.Context(), c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, score)
}

// ListTools 列出工具
// GET /api/v1/tools
func (h *ToolHandler) ListTools(c *gin.Context) {
	page := getPagination(c)

	tools, total, err := h.svc.Tool.ListTools(c.Request.Context(), &tool.ListToolsRequest{
		Page:     page,
		Category: c.Query("category"),
		Grade:    c.Query("grade"),
	})
	if err != nil {
		errorResponse(c, err)
		return
	}

	successWithPagination(c, tools, total, page.Page, page.Size)
}

// SearchTools 搜索工具
// GET /api/v1/tools/search
func (h *ToolHandler) SearchTools(c *gin.Context) {
	page := getPagination(c)

	tools, total, err := h.svc.Tool.SearchTools(c.Request.Context(), &tool.SearchToolsRequest{
		Page:     page,
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Chain:    c.Query("chain"),
		Protocol: c.Query("protocol"),
		Tag:      c.Query("tag"),
		Grade:    c.Query("grade"),
		MinScore: queryInt(c, "min_score"),
	})
	if err != nil {
		errorResponse(c, err)
		return
	}

	successWithPagination(c, tools, total, page.Page, page.Size)
}

// UpdateTool 部分更新工具
// PATCH /api/v1/tools/:id
func (h *ToolHandler) UpdateTool(c *gin.Context) {
	var req tool.UpdateToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	t, err := h.svc.Tool.UpdateTool(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, t)
}

// DeleteTool 删除工具
// DELETE /api/v1/tools/:id
func (h *ToolHandler) DeleteTool(c *gin.Context) {
	if err := h.svc.Tool.DeleteTool(c.Request.Context(), c.Param("id")); err != nil {
		errorResponse(c, err)
		return
	}

	success(c, nil)
}

// RecordUsageRequest 使用记录请求
type RecordUsageRequest struct {
	Action model.UsageAction `json:"action"`
}

// RecordUsage 记录使用
// POST /api/v1/tools/:id/usage
func (h *ToolHandler) RecordUsage(c *gin.Context) {
	var req RecordUsageRequest
	// 空 body 按 use 处理
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, "Invalid parameters: "+err.Error())
			return
		}
	}

	evt, err := h.svc.Tool.RecordUsage(c.Request.Context(), c.Param("id"), req.Action)
	if err != nil {
		errorResponse(c, err)
		return
	}

	created(c, evt)
}

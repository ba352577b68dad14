package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/tool-catalog/internal/service"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	svc *service.Services
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(svc *service.Services) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// TokenRequest 登录请求
type TokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// IssueToken 管理员登录
// POST /api/v1/auth/token
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	token, err := h.svc.Auth.IssueToken(req.Username, req.Password)
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, token)
}

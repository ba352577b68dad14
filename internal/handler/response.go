package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/tool-catalog/internal/service/auth"
	"github.com/ashwinyue/tool-catalog/internal/service/category"
	"github.com/ashwinyue/tool-catalog/internal/service/tool"
	"github.com/ashwinyue/tool-catalog/internal/service/types"
	"github.com/ashwinyue/tool-catalog/internal/trending"
)

// Response 统一响应
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PaginationData 分页响应数据结构
type PaginationData struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Size       int         `json:"size"`
	TotalPages int         `json:"total_pages"`
}

// success 成功响应
func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

// created 创建成功响应
func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "created", Data: data})
}

// successWithPagination 分页成功响应
func successWithPagination(c *gin.Context, items interface{}, total int64, page, size int) {
	totalPages := int(total) / size
	if int(total)%size > 0 {
		totalPages++
	}
	success(c, PaginationData{
		Items:      items,
		Total:      total,
		Page:       page,
		Size:       size,
		TotalPages: totalPages,
	})
}

// badRequest 参数错误
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: -1, Message: msg})
}

// errorResponse 按错误类型映射状态码
func errorResponse(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		// 内部错误细节只进日志
		_ = c.Error(err)
		msg = "internal server error"
	}
	c.JSON(status, Response{Code: -1, Message: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, tool.ErrToolNotFound), errors.Is(err, category.ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, tool.ErrToolNameExists):
		return http.StatusConflict
	case errors.Is(err, tool.ErrInvalidSchema), errors.Is(err, tool.ErrInvalidTool),
		errors.Is(err, tool.ErrInvalidAction), errors.Is(err, trending.ErrInvalidPeriod):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, types.ErrDependencyUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// getPagination 获取分页参数
func getPagination(c *gin.Context) types.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	return types.Page{Page: page, Size: size}.Normalize()
}

// queryInt 非法值按 0 处理
func queryInt(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}

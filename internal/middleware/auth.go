package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/tool-catalog/internal/service/auth"
)

const adminKey = "admin"

// TokenValidator 校验管理令牌
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// RequireAdmin 要求有效的管理员 JWT，否则返回 401
func RequireAdmin(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    -1,
				"message": "Missing Authorization header",
			})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    -1,
				"message": "Invalid Authorization header format",
			})
			return
		}

		claims, err := validator.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    -1,
				"message": "Invalid or expired token",
			})
			return
		}

		c.Set(adminKey, claims.Subject)
		c.Next()
	}
}

// GetAdmin 从上下文获取当前管理员
func GetAdmin(c *gin.Context) (string, bool) {
	v, exists := c.Get(adminKey)
	if !exists {
		return "", false
	}
	name, ok := v.(string)
	return name, ok
}

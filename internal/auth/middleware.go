package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// PrincipalContextKey gin context 中主体的键
const PrincipalContextKey = "principal"

// Middleware JWT 认证中间件
// 验证 Bearer Token 并将主体写入 gin context 和请求 context
func Middleware(validator *TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "missing authorization header",
			})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "invalid authorization header format",
			})
			return
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "invalid token",
				"detail":  err.Error(),
			})
			return
		}

		principal := claims.Principal()
		c.Set(PrincipalContextKey, principal)
		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

// DevMiddleware 开发模式认证中间件
// 认证关闭时注入一个具备全部审批能力的本地主体,方便本地联调与测试
func DevMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := &Principal{
			ID:    "dev-user",
			Name:  "Dev User",
			Roles: []string{RoleAdmin},
		}
		c.Set(PrincipalContextKey, principal)
		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

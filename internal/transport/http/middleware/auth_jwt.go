package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/core/auth"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/domain"
	resp "github.com/mohamim360/FormBuilderApp-Backend/internal/transport/http/response"
)

// AuthJWT 解析 Bearer token，把 userId/role 写入上下文供后续 action 使用
func AuthJWT(j *auth.JWTer, requireRole domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		c.Set("userId", claims.UID)
		c.Set("role", string(claims.Role))
		c.Next()
	}
}

// OptionalAuthJWT 公共列表接口用：带了有效 token 就识别身份，没带也放行
func OptionalAuthJWT(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if strings.HasPrefix(ah, "Bearer ") {
			if claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer ")); err == nil {
				c.Set("userId", claims.UID)
				c.Set("role", string(claims.Role))
			}
		}
		c.Next()
	}
}

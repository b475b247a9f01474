package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// ActorHeader 由上游认证层注入的管理员标识，写入 created_by。
	ActorHeader = "X-Admin-Id"
	// TokenHeader 管理接口令牌。
	TokenHeader = "X-Admin-Token"
)

// Actor 返回发起请求的管理员标识，可能为空。
func Actor(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(ActorHeader))
}

// AdminOnly 校验管理令牌。
func AdminOnly(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(TokenHeader)
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": 401, "msg": "admin token 无效"})
			return
		}
		c.Next()
	}
}

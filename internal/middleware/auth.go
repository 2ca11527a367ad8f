package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wfunc/whale-bot/internal/config"
	"github.com/wfunc/whale-bot/internal/utils"
)

// AdminAuth 管理接口认证中间件
//
// 接受两种凭证：Bearer JWT（通过/admin/login签发），
// 或X-Admin-Token头里的原始令牌（与配置的明文或argon2id哈希比对）。
type AdminAuth struct {
	cfg config.AdminConfig
	jwt *utils.JWTManager
}

// NewAdminAuth 创建管理认证中间件
func NewAdminAuth(cfg config.AdminConfig) *AdminAuth {
	return &AdminAuth{
		cfg: cfg,
		jwt: utils.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry),
	}
}

// JWTManager 暴露JWT管理器给登录接口签发令牌
func (m *AdminAuth) JWTManager() *utils.JWTManager {
	return m.jwt
}

// VerifyRawToken 校验原始管理令牌
func (m *AdminAuth) VerifyRawToken(token string) bool {
	if token == "" {
		return false
	}
	if m.cfg.TokenHash != "" {
		ok, err := utils.VerifyToken(token, m.cfg.TokenHash)
		return err == nil && ok
	}
	if m.cfg.Token != "" {
		return utils.SecureCompare(token, m.cfg.Token)
	}
	return false
}

// RequireAdmin 需要管理员身份的中间件
func (m *AdminAuth) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := c.GetHeader("X-Admin-Token"); token != "" {
			if m.VerifyRawToken(token) {
				c.Set("role", "admin")
				c.Next()
				return
			}
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "INVALID_TOKEN",
				"message": "令牌无效",
			})
			c.Abort()
			return
		}

		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "NO_TOKEN",
				"message": "缺少认证令牌",
			})
			c.Abort()
			return
		}

		claims, err := m.jwt.ValidateToken(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "INVALID_TOKEN",
				"message": "令牌无效或已过期",
			})
			c.Abort()
			return
		}

		c.Set("role", claims.Role)
		c.Next()
	}
}

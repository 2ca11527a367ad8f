package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wfunc/whale-bot/internal/bot"
	"github.com/wfunc/whale-bot/internal/content"
	"github.com/wfunc/whale-bot/internal/line"
)

// statusPage 首页状态
func (r *Router) statusPage(c *gin.Context) {
	counts := r.store.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"name":    "whale-bot",
		"status":  "running",
		"version": Version,
		"users":   counts.Users,
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	counts := r.store.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"version":      Version,
		"users":        counts.Users,
		"registered":   counts.Registered,
		"active_games": counts.ActiveGames,
	})
}

// webhook 平台回调入口
//
// 签名不合法直接400，事件处理失败不影响应答，
// 平台只关心收到200。
func (r *Router) webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "bad body")
		return
	}

	signature := c.GetHeader("X-Line-Signature")
	if !line.ValidateSignature(r.cfg.Line.ChannelSecret, body, signature) {
		r.log.Warn("webhook签名校验失败")
		c.String(http.StatusBadRequest, "bad signature")
		return
	}

	events, err := line.ParseWebhook(body)
	if err != nil {
		r.log.Warn("webhook解析失败", zap.Error(err))
		c.String(http.StatusBadRequest, "bad payload")
		return
	}

	ctx := c.Request.Context()
	for _, ev := range events {
		replies := r.dispatcher.Handle(ctx, bot.Event{
			Command: ev.Command,
			UserID:  ev.UserID,
			RoomID:  ev.RoomID,
		})
		messages := renderReplies(replies)
		if len(messages) == 0 {
			continue
		}
		if err := r.messenger.Reply(ctx, ev.ReplyToken, messages...); err != nil {
			r.log.Error("回复发送失败",
				zap.String("user_id", ev.UserID),
				zap.Error(err))
		}
	}
	c.String(http.StatusOK, "OK")
}

// adminLogin 用原始管理令牌换取JWT
func (r *Router) adminLogin(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_REQUEST",
			"message": "请求体不合法",
		})
		return
	}

	if !r.auth.VerifyRawToken(req.Token) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    "INVALID_TOKEN",
			"message": "令牌无效",
		})
		return
	}

	token, err := r.auth.JWTManager().GenerateToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "TOKEN_ISSUE_FAILED",
			"message": "令牌签发失败",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": int(r.cfg.Admin.JWTExpiry.Seconds()),
	})
}

// adminReload 重新加载内容池
func (r *Router) adminReload(c *gin.Context) {
	r.pools.Reload()
	if err := r.pools.Validate(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "CONTENT_INVALID",
			"message": err.Error(),
		})
		return
	}

	sizes := make(map[string]int)
	for _, category := range content.Categories {
		sizes[category] = len(r.pools.Get(category))
	}
	r.log.Info("内容池已重载")
	c.JSON(http.StatusOK, gin.H{
		"status": "reloaded",
		"pools":  sizes,
	})
}

// adminStats 运行统计
func (r *Router) adminStats(c *gin.Context) {
	counts := r.store.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"users":         counts.Users,
		"registered":    counts.Registered,
		"active_games":  counts.ActiveGames,
		"total_games":   counts.TotalGames,
		"total_players": counts.TotalPlayers,
	})
}

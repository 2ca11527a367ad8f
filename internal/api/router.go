package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wfunc/whale-bot/internal/bot"
	"github.com/wfunc/whale-bot/internal/config"
	"github.com/wfunc/whale-bot/internal/content"
	"github.com/wfunc/whale-bot/internal/line"
	"github.com/wfunc/whale-bot/internal/middleware"
	"github.com/wfunc/whale-bot/internal/store"
)

// Version 对外暴露的版本号
const Version = "1.0.0"

// Messenger 下行消息发送接口
type Messenger interface {
	Reply(ctx context.Context, replyToken string, messages ...line.Message) error
}

// Router API路由器
type Router struct {
	engine     *gin.Engine
	cfg        *config.Config
	store      *store.Store
	dispatcher *bot.Dispatcher
	pools      *content.Pools
	messenger  Messenger
	auth       *middleware.AdminAuth
	log        *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(cfg *config.Config, st *store.Store, dispatcher *bot.Dispatcher, pools *content.Pools, messenger Messenger, log *zap.Logger) *Router {
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	// 全局中间件
	engine.Use(gin.Recovery())

	router := &Router{
		engine:     engine,
		cfg:        cfg,
		store:      st,
		dispatcher: dispatcher,
		pools:      pools,
		messenger:  messenger,
		auth:       middleware.NewAdminAuth(cfg.Admin),
		log:        log,
	}
	router.setupRoutes()
	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	r.engine.GET("/", r.statusPage)
	r.engine.GET("/health", r.healthCheck)
	r.engine.POST("/callback", r.webhook)

	admin := r.engine.Group("/admin")
	{
		admin.POST("/login", r.adminLogin)

		authed := admin.Group("", r.auth.RequireAdmin())
		{
			authed.POST("/reload", r.adminReload)
			authed.GET("/stats", r.adminStats)
		}
	}
}

// Engine 返回底层gin引擎
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

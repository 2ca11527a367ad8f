package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/wfunc/whale-bot/internal/api"
	"github.com/wfunc/whale-bot/internal/bot"
	"github.com/wfunc/whale-bot/internal/cleanup"
	"github.com/wfunc/whale-bot/internal/config"
	"github.com/wfunc/whale-bot/internal/content"
	"github.com/wfunc/whale-bot/internal/game"
	"github.com/wfunc/whale-bot/internal/line"
	"github.com/wfunc/whale-bot/internal/logger"
	"github.com/wfunc/whale-bot/internal/ratelimit"
	"github.com/wfunc/whale-bot/internal/service"
	"github.com/wfunc/whale-bot/internal/store"
)

// 版本信息
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Server 服务器实例
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *store.Store
	pools   *content.Pools
	limiter *ratelimit.Limiter
	httpSrv *http.Server

	stopWatch func()
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

func main() {
	var (
		configPath  = flag.String("config", "", "配置文件路径")
		showVersion = flag.Bool("version", false, "显示版本信息")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("whale-bot %s (build: %s, commit: %s)\n", Version, BuildTime, GitCommit)
		os.Exit(0)
	}

	if err := config.Init(*configPath); err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Get()

	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Cleanup()

	logger.Info("whale-bot启动中",
		zap.String("version", Version),
		zap.String("mode", cfg.Server.Mode))

	server := NewServer(cfg)
	if err := server.Start(); err != nil {
		logger.Fatal("服务器启动失败", zap.Error(err))
	}

	server.WaitForShutdown()
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:    cfg,
		logger: logger.GetLogger(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start 装配并启动全部组件
func (s *Server) Start() error {
	log := s.logger

	// 持久化存储
	s.store = store.New(s.cfg.Storage.Path, log)
	s.store.Load()

	// 内容池与轮换器
	s.pools = content.LoadPools(s.cfg.Content, log)
	if err := s.pools.Validate(); err != nil {
		log.Warn("内容池校验告警", zap.Error(err))
	}
	rotator := content.NewRotator(s.pools, s.store, log)

	if s.cfg.Content.WatchDir {
		if stop, err := s.pools.Watch(); err != nil {
			log.Warn("内容目录监听失败", zap.Error(err))
		} else {
			s.stopWatch = stop
		}
	}

	// 平台客户端同时兼任昵称查询
	lineClient := line.NewClient(s.cfg.Line, log)
	users := service.NewUserService(s.store, lineClient, log)

	// 游戏与分发
	games := game.NewManager(s.store, users, rotator, s.cfg.Game, log)
	s.limiter = ratelimit.New(s.cfg.Game.RateLimit, s.cfg.Game.RateWindow)
	dispatcher := bot.NewDispatcher(users, games, rotator, s.limiter, s.cfg.Game, log)

	// 清理任务
	sweeper := cleanup.NewSweeper(s.store, users, s.cfg.Game, log)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		sweeper.Run(s.ctx)
	}()

	// 限流器碎片回收
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.limiter.Purge()
			}
		}
	}()

	// 配置热更新只影响可动态调整的部分
	config.Watch(func(newCfg *config.Config) {
		log.Info("配置已热更新")
		s.cfg = newCfg
	})

	// HTTP服务
	router := api.NewRouter(s.cfg, s.store, dispatcher, s.pools, lineClient, log)
	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port),
		Handler:      router.Engine(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Info("HTTP服务启动", zap.String("addr", s.httpSrv.Addr))
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP服务异常退出", zap.Error(err))
		}
	}()

	return nil
}

// WaitForShutdown 等待信号并优雅关闭
func (s *Server) WaitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	s.logger.Info("收到退出信号，开始关闭", zap.String("signal", sig.String()))
	s.Shutdown()
}

// Shutdown 停止全部组件并保证状态落盘
func (s *Server) Shutdown() {
	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			s.logger.Warn("HTTP服务关闭超时", zap.Error(err))
		}
	}

	s.cancel()
	if s.stopWatch != nil {
		s.stopWatch()
	}
	s.wg.Wait()

	// 退出前强制落盘一次
	if err := s.store.Flush(); err != nil {
		s.logger.Error("退出落盘失败", zap.Error(err))
	}

	s.logger.Info("服务器已关闭")
}

package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wfunc/whale-bot/internal/config"
	"github.com/wfunc/whale-bot/internal/models"
	"github.com/wfunc/whale-bot/internal/service"
	"github.com/wfunc/whale-bot/internal/store"
)

// Sweeper 不活跃用户清理器
//
// 按固定周期扫描，删除超过阈值未活跃的用户，
// 一次扫描只落盘一次。
type Sweeper struct {
	store     *store.Store
	users     *service.UserService
	log       *zap.Logger
	threshold time.Duration
	interval  time.Duration

	now func() time.Time
}

// NewSweeper 创建清理器
func NewSweeper(st *store.Store, users *service.UserService, cfg config.GameConfig, log *zap.Logger) *Sweeper {
	return &Sweeper{
		store:     st,
		users:     users,
		log:       log,
		threshold: time.Duration(cfg.CleanupDays) * 24 * time.Hour,
		interval:  cfg.CleanupInterval,
		now:       time.Now,
	}
}

// Run 周期执行清理直到上下文取消
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.SweepNow(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("清理任务退出")
			return
		case <-ticker.C:
			s.SweepNow(ctx)
		}
	}
}

// SweepNow 立即执行一次清理，返回删除的用户数
func (s *Sweeper) SweepNow(ctx context.Context) int {
	cutoff := s.now().Add(-s.threshold)

	var removed []string
	s.store.Update(func(data *models.Store) bool {
		for id, u := range data.Users {
			if u.InactiveSince(cutoff) {
				removed = append(removed, id)
			}
		}
		for _, id := range removed {
			delete(data.Users, id)
		}
		return len(removed) > 0
	})

	for _, id := range removed {
		s.users.ForgetName(id)
	}

	if len(removed) > 0 {
		s.log.Info("清理不活跃用户",
			zap.Int("removed", len(removed)),
			zap.Time("cutoff", cutoff))
	}
	return len(removed)
}

package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wfunc/whale-bot/internal/models"
	"github.com/wfunc/whale-bot/internal/store"
	"go.uber.org/zap"
)

// FallbackName 资料查询失败时使用的占位昵称
const FallbackName = "لاعب"

// ProfileResolver 外部资料查询接口（由LINE客户端实现）
type ProfileResolver interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// RegisterResult 注册操作结果
type RegisterResult int

const (
	RegisteredNew     RegisterResult = iota // 新注册
	RegisteredAlready                       // 已注册，无变化
)

// UnregisterResult 注销操作结果
type UnregisterResult int

const (
	Unregistered    UnregisterResult = iota // 注销成功
	UnregisteredNot                         // 本来就未注册
)

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Points int64  `json:"points"`
}

// UserService 用户目录与积分账本
//
// 积分只能通过 AdjustPoints 变更，游戏组件不得直接改写用户记录。
type UserService struct {
	store    *store.Store
	resolver ProfileResolver
	log      *zap.Logger
	now      func() time.Time

	namesMu sync.Mutex
	names   map[string]string // userID -> 最近一次解析到的昵称
}

// NewUserService 创建用户服务
func NewUserService(st *store.Store, resolver ProfileResolver, log *zap.Logger) *UserService {
	return &UserService{
		store:    st,
		resolver: resolver,
		log:      log,
		now:      time.Now,
		names:    make(map[string]string),
	}
}

// resolveName 解析昵称：缓存优先，任何失败都回退占位名
func (s *UserService) resolveName(ctx context.Context, userID string) string {
	s.namesMu.Lock()
	if name, ok := s.names[userID]; ok {
		s.namesMu.Unlock()
		return name
	}
	s.namesMu.Unlock()

	name, err := s.resolver.DisplayName(ctx, userID)
	if err != nil || name == "" {
		if err != nil {
			s.log.Warn("获取用户昵称失败",
				zap.String("user_id", userID), zap.Error(err))
		}
		return FallbackName
	}

	s.namesMu.Lock()
	s.names[userID] = name
	s.namesMu.Unlock()
	return name
}

// ForgetName 清除昵称缓存（用户被清理时调用）
func (s *UserService) ForgetName(userID string) {
	s.namesMu.Lock()
	delete(s.names, userID)
	s.namesMu.Unlock()
}

// GetOrCreate 查找用户，不存在则创建
//
// 已存在时更新最后活跃时间，并在外部昵称变化时刷新；
// 只有实际变更才触发落盘。返回用户记录的副本。
func (s *UserService) GetOrCreate(ctx context.Context, userID string) models.User {
	name := s.resolveName(ctx, userID)
	now := s.now()

	var snapshot models.User
	created := false
	s.store.Update(func(data *models.Store) bool {
		u, ok := data.Users[userID]
		if !ok {
			u = models.NewUser(name, now)
			data.Users[userID] = u
			created = true
			snapshot = *u
			return true
		}

		changed := false
		if !u.LastActive.Equal(now) {
			u.Touch(now)
			changed = true
		}
		if name != FallbackName && u.Name != name {
			u.Name = name
			changed = true
		}
		snapshot = *u
		return changed
	})

	if created {
		s.log.Info("新用户",
			zap.String("user_id", userID), zap.String("name", snapshot.Name))
	}
	return snapshot
}

// Register 注册用户（幂等）
//
// 新注册时累加历史注册总人数；重复注册不计数、不落盘。
func (s *UserService) Register(ctx context.Context, userID string) RegisterResult {
	s.GetOrCreate(ctx, userID)

	result := RegisteredAlready
	s.store.Update(func(data *models.Store) bool {
		u := data.Users[userID]
		if u.Registered {
			return false
		}
		u.Registered = true
		data.Stats.TotalPlayers++
		result = RegisteredNew
		return true
	})
	return result
}

// Unregister 注销用户（幂等）
func (s *UserService) Unregister(ctx context.Context, userID string) UnregisterResult {
	s.GetOrCreate(ctx, userID)

	result := UnregisteredNot
	s.store.Update(func(data *models.Store) bool {
		u := data.Users[userID]
		if !u.Registered {
			return false
		}
		u.Registered = false
		result = Unregistered
		return true
	})
	return result
}

// Get 读取用户记录副本
func (s *UserService) Get(userID string) (models.User, bool) {
	var snapshot models.User
	found := false
	s.store.View(func(data *models.Store) {
		if u, ok := data.Users[userID]; ok {
			snapshot = *u
			found = true
		}
	})
	return snapshot, found
}

// AdjustPoints 调整用户积分，下限为0，返回新总分
//
// 整个读-改-写-落盘序列在存储锁内完成，并发调整互相串行。
func (s *UserService) AdjustPoints(ctx context.Context, userID string, delta int64) int64 {
	s.GetOrCreate(ctx, userID)

	var total int64
	s.store.Update(func(data *models.Store) bool {
		total = data.Users[userID].AddPoints(delta)
		return true
	})
	return total
}

// IncrementGamesPlayed 累加用户的参与局数
func (s *UserService) IncrementGamesPlayed(userID string) {
	s.store.Update(func(data *models.Store) bool {
		u, ok := data.Users[userID]
		if !ok {
			return false
		}
		u.GamesPlayed++
		return true
	})
}

// Leaderboard 返回积分前N名的注册用户
//
// 按积分降序；同分按创建时间升序（先来者在前），
// 最后以userID保证完全确定的顺序。
func (s *UserService) Leaderboard(limit int) []LeaderboardEntry {
	type ranked struct {
		id string
		u  models.User
	}

	var all []ranked
	s.store.View(func(data *models.Store) {
		for id, u := range data.Users {
			if u.Registered {
				all = append(all, ranked{id: id, u: *u})
			}
		}
	})

	sort.Slice(all, func(i, j int) bool {
		if all[i].u.Points != all[j].u.Points {
			return all[i].u.Points > all[j].u.Points
		}
		if !all[i].u.CreatedAt.Equal(all[j].u.CreatedAt) {
			return all[i].u.CreatedAt.Before(all[j].u.CreatedAt)
		}
		return all[i].id < all[j].id
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	entries := make([]LeaderboardEntry, 0, len(all))
	for _, r := range all {
		entries = append(entries, LeaderboardEntry{
			UserID: r.id,
			Name:   r.u.Name,
			Points: r.u.Points,
		})
	}
	return entries
}

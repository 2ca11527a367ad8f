package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/wfunc/whale-bot/internal/models"
	"go.uber.org/zap"
)

// Store 文件持久化存储
//
// 进程内唯一的持久状态持有者。所有读写都经过同一把互斥锁，
// 每次变更在锁内完成 读-改-写-落盘 的完整序列；
// 落盘失败只记录日志，内存状态照常生效。
type Store struct {
	mu   sync.Mutex
	path string
	data *models.Store
	log  *zap.Logger
}

// New 创建存储实例（未加载）
func New(path string, log *zap.Logger) *Store {
	return &Store{
		path: path,
		data: models.NewStore(),
		log:  log,
	}
}

// Load 从磁盘恢复持久状态
//
// 文件不存在或无法解析时返回空的默认聚合，绝不向调用方抛错。
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("读取数据文件失败，使用空数据启动",
				zap.String("path", s.path), zap.Error(err))
		}
		s.data = models.NewStore()
		return
	}

	data := models.NewStore()
	if err := json.Unmarshal(raw, data); err != nil {
		s.log.Error("数据文件损坏，使用空数据启动",
			zap.String("path", s.path), zap.Error(err))
		s.data = models.NewStore()
		return
	}

	data.Normalize()
	s.data = data
	s.log.Info("数据加载完成",
		zap.Int("users", len(data.Users)),
		zap.Int("active_games", len(data.Games)))
}

// View 在锁内只读访问聚合
func (s *Store) View(fn func(*models.Store)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.data)
}

// Update 在锁内执行变更并落盘
//
// fn 返回 true 表示聚合被修改，需要持久化；
// 返回 false 则跳过写盘（例如查询发现无需变更）。
func (s *Store) Update(fn func(*models.Store) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !fn(s.data) {
		return
	}
	if err := s.save(); err != nil {
		s.log.Error("保存数据失败，继续使用内存状态",
			zap.String("path", s.path), zap.Error(err))
	}
}

// save 原子替换数据文件（写临时文件后rename）
//
// 调用方必须持有 s.mu。
func (s *Store) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Flush 将当前内存状态写盘（用于进程退出前）
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// Counts 存储概况（用于健康检查与状态页）
type Counts struct {
	Users       int `json:"users"`
	Registered  int `json:"registered"`
	ActiveGames int `json:"active_games"`
	TotalGames  int `json:"total_games"`
	TotalPlayers int `json:"total_players"`
}

// Snapshot 读取存储概况
func (s *Store) Snapshot() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := Counts{
		Users:        len(s.data.Users),
		ActiveGames:  len(s.data.Games),
		TotalGames:   s.data.Stats.TotalGames,
		TotalPlayers: s.data.Stats.TotalPlayers,
	}
	for _, u := range s.data.Users {
		if u.Registered {
			counts.Registered++
		}
	}
	return counts
}

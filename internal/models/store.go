package models

import (
	"encoding/json"
	"strings"
)

// Stats 全局统计
type Stats struct {
	TotalGames   int `json:"total_games"`   // 历史开局总数
	TotalPlayers int `json:"total_players"` // 历史注册总人数
}

// Store 持久化聚合根
//
// 所有持久状态的唯一所有者：用户表、每房间会话表、
// 各内容分类的近期使用环以及全局统计。
type Store struct {
	Users map[string]*User        `json:"users"`
	Games map[string]*GameSession `json:"games"`
	Used  map[string][]string     `json:"-"` // 序列化为顶层 <category>_used 数组
	Stats Stats                   `json:"stats"`
}

// NewStore 创建空的聚合
func NewStore() *Store {
	return &Store{
		Users: make(map[string]*User),
		Games: make(map[string]*GameSession),
		Used:  make(map[string][]string),
	}
}

// Normalize 把反序列化结果收敛到安全形态
//
// 补齐缺失的map；丢弃无法使用的会话（空记录、空状态、
// 未知游戏类型，比如更新版本写入的文件）；把负积分钳制回0。
func (s *Store) Normalize() {
	if s.Users == nil {
		s.Users = make(map[string]*User)
	}
	if s.Games == nil {
		s.Games = make(map[string]*GameSession)
	}
	if s.Used == nil {
		s.Used = make(map[string][]string)
	}

	for id, u := range s.Users {
		if u == nil {
			delete(s.Users, id)
			continue
		}
		if u.Points < 0 {
			u.Points = 0
		}
	}

	for roomID, g := range s.Games {
		if g == nil || g.State == nil || !g.GameType.Known() {
			delete(s.Games, roomID)
		}
	}
}

// UsedRing 获取分类的近期使用环（不存在时返回nil切片）
func (s *Store) UsedRing(category string) []string {
	return s.Used[category]
}

// SetUsedRing 替换分类的近期使用环
func (s *Store) SetUsedRing(category string, ring []string) {
	s.Used[category] = ring
}

const usedKeySuffix = "_used"

// MarshalJSON 按照磁盘布局序列化：
// 每个分类的使用环以 <category>_used 的顶层键写出。
func (s *Store) MarshalJSON() ([]byte, error) {
	raw := make(map[string]json.RawMessage, len(s.Used)+3)

	users, err := json.Marshal(s.Users)
	if err != nil {
		return nil, err
	}
	raw["users"] = users

	games, err := json.Marshal(s.Games)
	if err != nil {
		return nil, err
	}
	raw["games"] = games

	stats, err := json.Marshal(s.Stats)
	if err != nil {
		return nil, err
	}
	raw["stats"] = stats

	for category, ring := range s.Used {
		b, err := json.Marshal(ring)
		if err != nil {
			return nil, err
		}
		raw[category+usedKeySuffix] = b
	}

	return json.Marshal(raw)
}

// UnmarshalJSON 解析磁盘布局，任何 <category>_used 键还原为使用环
func (s *Store) UnmarshalJSON(data []byte) error {
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Users = make(map[string]*User)
	s.Games = make(map[string]*GameSession)
	s.Used = make(map[string][]string)
	s.Stats = Stats{}

	for key, value := range raw {
		switch {
		case key == "users":
			if err := json.Unmarshal(value, &s.Users); err != nil {
				return err
			}
		case key == "games":
			if err := json.Unmarshal(value, &s.Games); err != nil {
				return err
			}
		case key == "stats":
			if err := json.Unmarshal(value, &s.Stats); err != nil {
				return err
			}
		case strings.HasSuffix(key, usedKeySuffix):
			var ring []string
			if err := json.Unmarshal(value, &ring); err != nil {
				return err
			}
			s.Used[strings.TrimSuffix(key, usedKeySuffix)] = ring
		}
	}

	s.Normalize()
	return nil
}

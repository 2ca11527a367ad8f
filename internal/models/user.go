package models

import (
	"time"
)

// User 用户记录
type User struct {
	Name        string    `json:"name"`
	Points      int64     `json:"points"`
	LastActive  time.Time `json:"last_active"`
	GamesPlayed int       `json:"games_played"`
	Registered  bool      `json:"registered"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewUser 创建新用户记录
func NewUser(name string, now time.Time) *User {
	return &User{
		Name:       name,
		Points:     0,
		LastActive: now,
		CreatedAt:  now,
	}
}

// AddPoints 调整积分，结果永不为负，返回新总分
func (u *User) AddPoints(delta int64) int64 {
	u.Points += delta
	if u.Points < 0 {
		u.Points = 0
	}
	return u.Points
}

// Touch 更新最后活跃时间
func (u *User) Touch(now time.Time) {
	u.LastActive = now
}

// InactiveSince 判断用户在指定时刻之前是否已不活跃
func (u *User) InactiveSince(cutoff time.Time) bool {
	return u.LastActive.Before(cutoff)
}

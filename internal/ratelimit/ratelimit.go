package ratelimit

import (
	"sync"
	"time"
)

// window 单个用户的计数窗口
type window struct {
	count   int
	resetAt time.Time
}

// Limiter 按用户限流器
//
// 固定窗口计数：窗口过期后计数归零并推进窗口边界。
// 状态只存在内存中，进程重启即重置，与持久化存储无关，
// 因此使用自己独立的锁。
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*window
	max     int
	length  time.Duration
	now     func() time.Time
}

// New 创建限流器，窗口内最多允许max条消息
func New(max int, length time.Duration) *Limiter {
	return &Limiter{
		entries: make(map[string]*window),
		max:     max,
		length:  length,
		now:     time.Now,
	}
}

// NewWithClock 创建使用指定时钟的限流器（测试用）
func NewWithClock(max int, length time.Duration, now func() time.Time) *Limiter {
	l := New(max, length)
	l.now = now
	return l
}

// Allow 登记一条消息，返回是否在限额内
//
// 超限时调用方应静默丢弃该指令：不回复、不产生副作用。
func (l *Limiter) Allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	w, ok := l.entries[userID]
	if !ok {
		w = &window{resetAt: now.Add(l.length)}
		l.entries[userID] = w
	}

	// 窗口已过期：计数归零，推进边界
	if now.After(w.resetAt) {
		w.count = 0
		w.resetAt = now.Add(l.length)
	}

	w.count++
	return w.count <= l.max
}

// Purge 删除已过期的窗口记录，返回删除数量
//
// 窗口状态很小，常规负载下无需调用；暴露出来供清理任务复用。
func (l *Limiter) Purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for userID, w := range l.entries {
		if now.After(w.resetAt) {
			delete(l.entries, userID)
			removed++
		}
	}
	return removed
}

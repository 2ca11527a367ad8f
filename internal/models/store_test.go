package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 测试积分永不为负
func TestUser_AddPoints(t *testing.T) {
	u := NewUser("لاعب", time.Now())

	assert.Equal(t, int64(2), u.AddPoints(2))
	assert.Equal(t, int64(1), u.AddPoints(-1))
	assert.Equal(t, int64(0), u.AddPoints(-5))
	assert.Equal(t, int64(3), u.AddPoints(3))
}

// 测试磁盘布局：使用环以 <category>_used 顶层键写出
func TestStore_UsedRingLayout(t *testing.T) {
	s := NewStore()
	s.Users["U1"] = NewUser("لاعب", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	s.SetUsedRing("questions", []string{"q1", "q2"})
	s.SetUsedRing("mentions", []string{"m1"})
	s.Stats.TotalGames = 7

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "users")
	assert.Contains(t, raw, "games")
	assert.Contains(t, raw, "stats")
	assert.Contains(t, raw, "questions_used")
	assert.Contains(t, raw, "mentions_used")

	restored := NewStore()
	require.NoError(t, json.Unmarshal(data, restored))
	assert.Equal(t, []string{"q1", "q2"}, restored.UsedRing("questions"))
	assert.Equal(t, []string{"m1"}, restored.UsedRing("mentions"))
	assert.Equal(t, 7, restored.Stats.TotalGames)
	require.Contains(t, restored.Users, "U1")
	assert.Equal(t, "لاعب", restored.Users["U1"].Name)
}

// 测试载入外来持久化文件时的收敛：丢弃用不了的会话、钳制负积分
func TestStore_NormalizeUnusableData(t *testing.T) {
	payload := `{
		"users": {
			"U1": {"name": "لاعب", "points": -3, "registered": true},
			"U2": null
		},
		"games": {
			"R1": {"id": "s1", "room_id": "R1", "game_type": "quiz_v2", "state": {"answer": "x"}},
			"R2": {"id": "s2", "room_id": "R2", "game_type": "song", "state": null},
			"R3": null,
			"R4": {"id": "s4", "room_id": "R4", "game_type": "song", "state": {"answer": "أنت عمري"}}
		},
		"stats": {}
	}`

	s := NewStore()
	require.NoError(t, json.Unmarshal([]byte(payload), s))

	// 只有类型认识且状态非空的会话存活
	assert.NotContains(t, s.Games, "R1")
	assert.NotContains(t, s.Games, "R2")
	assert.NotContains(t, s.Games, "R3")
	require.Contains(t, s.Games, "R4")
	assert.Equal(t, "أنت عمري", s.Games["R4"].State.Answer)

	require.Contains(t, s.Users, "U1")
	assert.Equal(t, int64(0), s.Users["U1"].Points)
	assert.NotContains(t, s.Users, "U2")
}

// 测试会话参与者进度的去重判断
func TestGameSession_Participant(t *testing.T) {
	g := NewGameSession("id1", "R1", GameWordChain, time.Now())

	p := g.Participant("U1")
	assert.False(t, p.HasAnswered("كتاب"))
	p.Answers = append(p.Answers, "كتاب")
	assert.True(t, g.Participant("U1").HasAnswered("كتاب"))

	// 同一参与者返回同一进度对象
	assert.Same(t, p, g.Participant("U1"))
}

package models

import (
	"time"
)

// GameType 游戏类型标签
type GameType string

const (
	GameSong          GameType = "song"          // 猜歌
	GameCategory      GameType = "category"      // 人物动物植物
	GameWordChain     GameType = "word_chain"    // 词语接龙
	GameFastest       GameType = "fastest"       // 抢答
	GameOpposite      GameType = "opposite"      // 反义词
	GameWordComposer  GameType = "word_composer" // 拼词
	GameDifference    GameType = "difference"    // 找不同
	GameCompatibility GameType = "compatibility" // 默契度
)

// Known 判断是否为本程序认识的游戏类型
//
// 持久化文件可能由更新版本写入，未知类型的会话不可评估。
func (t GameType) Known() bool {
	switch t {
	case GameSong, GameCategory, GameWordChain, GameFastest,
		GameOpposite, GameWordComposer, GameDifference, GameCompatibility:
		return true
	}
	return false
}

// SessionState 会话的游戏内部状态
//
// 八种游戏共用一个状态结构，各评估器只读写自己关心的字段，
// 序列化时省略零值字段。
type SessionState struct {
	Question    string   `json:"question,omitempty"`     // 当前题目（猜歌/抢答/反义词）
	Answer      string   `json:"answer,omitempty"`       // 期望答案
	Letter      string   `json:"letter,omitempty"`       // 当前字母（分类游戏）
	CurrentWord string   `json:"current_word,omitempty"` // 当前词（接龙）
	Letters     []string `json:"letters,omitempty"`      // 字母集（拼词）
	UsedWords   []string `json:"used_words,omitempty"`   // 本局已用词
	Images      []string `json:"images,omitempty"`       // 图片列表（找不同）
	ImageIndex  int      `json:"image_index,omitempty"`  // 当前图片序号
	Answered    bool     `json:"answered,omitempty"`     // 本轮是否已被答出（抢答）
	Finished    bool     `json:"finished,omitempty"`     // 会话是否已终结
	HintsGiven  int      `json:"hints_given,omitempty"`  // 已给出提示数
}

// UsedWord 判断词语本局是否已被使用
func (s *SessionState) UsedWord(word string) bool {
	for _, w := range s.UsedWords {
		if w == word {
			return true
		}
	}
	return false
}

// MarkWordUsed 登记已使用的词语
func (s *SessionState) MarkWordUsed(word string) {
	s.UsedWords = append(s.UsedWords, word)
}

// Progress 参与者的局内进度
type Progress struct {
	Answers []string `json:"answers,omitempty"` // 该参与者本局提交过的答案
	Score   int64    `json:"score"`             // 本局累计得分
}

// HasAnswered 判断参与者是否提交过该答案
func (p *Progress) HasAnswered(answer string) bool {
	for _, a := range p.Answers {
		if a == answer {
			return true
		}
	}
	return false
}

// GameSession 一个房间的进行中游戏会话
type GameSession struct {
	ID           string               `json:"id"`
	RoomID       string               `json:"room_id"`
	GameType     GameType             `json:"game_type"`
	State        *SessionState        `json:"state"`
	Participants map[string]*Progress `json:"participants"`
	StartedAt    time.Time            `json:"started_at"`
}

// NewGameSession 创建新的游戏会话
func NewGameSession(id, roomID string, gameType GameType, now time.Time) *GameSession {
	return &GameSession{
		ID:           id,
		RoomID:       roomID,
		GameType:     gameType,
		State:        &SessionState{},
		Participants: make(map[string]*Progress),
		StartedAt:    now,
	}
}

// Participant 获取或创建参与者进度
func (g *GameSession) Participant(userID string) *Progress {
	if g.Participants == nil {
		g.Participants = make(map[string]*Progress)
	}
	p, ok := g.Participants[userID]
	if !ok {
		p = &Progress{}
		g.Participants[userID] = p
	}
	return p
}

package game

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wfunc/whale-bot/internal/config"
	"github.com/wfunc/whale-bot/internal/content"
	"github.com/wfunc/whale-bot/internal/errors"
	"github.com/wfunc/whale-bot/internal/models"
	"github.com/wfunc/whale-bot/internal/service"
	"github.com/wfunc/whale-bot/internal/store"
)

// OutcomeKind 作答结果的种类
type OutcomeKind int

const (
	OutcomeNoSession OutcomeKind = iota // 房间没有进行中的游戏，静默忽略
	OutcomeDuplicate                    // 参与者重复提交同一答案
	OutcomeRejected                     // 答案不符合规则
	OutcomeAccepted                     // 答案被接受，游戏继续
	OutcomeFinished                     // 答案被接受且本局终结
)

// Outcome 一次作答的处理结果
type Outcome struct {
	Kind     OutcomeKind
	GameType models.GameType
	Scored   bool   // 本次是否计分
	Points   int64  // 计分后的用户总积分
	Message  string // 回给房间的文案
}

// StartResult 开局结果
type StartResult struct {
	SessionID string
	GameType  models.GameType
	Prompt    string // 开场文案
	Replaced  bool   // 是否覆盖了原有会话
}

// Manager 游戏会话管理器
//
// 每个房间最多一个进行中的会话，持久化在存储的Games表里。
// 对已有会话的房间再次开局会直接覆盖旧会话。
type Manager struct {
	store      *store.Store
	users      *service.UserService
	evaluators map[models.GameType]Evaluator
	cfg        config.GameConfig
	log        *zap.Logger

	now   func() time.Time
	pick  func(n int) int
	newID func() string
}

// NewManager 创建游戏会话管理器
func NewManager(st *store.Store, users *service.UserService, rotator *content.Rotator, cfg config.GameConfig, log *zap.Logger) *Manager {
	return &Manager{
		store:      st,
		users:      users,
		evaluators: newEvaluators(rotator.Draw),
		cfg:        cfg,
		log:        log,
		now:        time.Now,
		pick:       rand.Intn,
		newID:      uuid.NewString,
	}
}

// Start 在房间开启一局指定类型的游戏
//
// 若房间已有会话则覆盖。开局者计入参与者并累加其局数。
func (m *Manager) Start(ctx context.Context, roomID, userID string, gameType models.GameType) (*StartResult, error) {
	ev, ok := m.evaluators[gameType]
	if !ok {
		return nil, errors.Newf(errors.ErrUnknownGameType, "نوع لعبة غير معروف: %s", gameType)
	}

	m.users.GetOrCreate(ctx, userID)

	session := models.NewGameSession(m.newID(), roomID, gameType, m.now())
	// Begin可能从内容轮换器抽题，必须在拿到存储锁之前执行
	prompt, err := ev.Begin(session.State, m.pick)
	if err != nil {
		return nil, err
	}
	session.Participant(userID)

	var replaced bool
	m.store.Update(func(data *models.Store) bool {
		_, replaced = data.Games[roomID]
		data.Games[roomID] = session
		data.Stats.TotalGames++
		return true
	})
	m.users.IncrementGamesPlayed(userID)

	m.log.Info("开启游戏会话",
		zap.String("room_id", roomID),
		zap.String("game_type", string(gameType)),
		zap.String("session_id", session.ID),
		zap.Bool("replaced", replaced))

	return &StartResult{
		SessionID: session.ID,
		GameType:  gameType,
		Prompt:    prompt,
		Replaced:  replaced,
	}, nil
}

// Submit 处理房间内的一次作答
//
// 房间没有会话时返回OutcomeNoSession，不算错误。
func (m *Manager) Submit(ctx context.Context, roomID, userID, answer string) Outcome {
	var out Outcome
	var scored bool
	m.store.Update(func(data *models.Store) bool {
		session, ok := data.Games[roomID]
		if !ok {
			out = Outcome{Kind: OutcomeNoSession}
			return false
		}
		// 来自持久化文件的会话可能带未知类型或空状态，当作无会话丢弃
		ev, known := m.evaluators[session.GameType]
		if !known || session.State == nil {
			delete(data.Games, roomID)
			out = Outcome{Kind: OutcomeNoSession}
			return true
		}
		out.GameType = session.GameType

		p := session.Participant(userID)
		if p.HasAnswered(answer) {
			out.Kind = OutcomeDuplicate
			return false
		}

		v := ev.Check(session.State, answer)
		if !v.Accepted {
			out.Kind = OutcomeRejected
			return false
		}

		p.Answers = append(p.Answers, answer)
		if v.Scored {
			p.Score += m.cfg.PointsCorrect
			scored = true
		}
		out.Message = v.Message
		if v.Finished {
			session.State.Finished = true
			delete(data.Games, roomID)
			out.Kind = OutcomeFinished
		} else {
			out.Kind = OutcomeAccepted
		}
		return true
	})

	if scored {
		out.Scored = true
		out.Points = m.users.AdjustPoints(ctx, userID, m.cfg.PointsCorrect)
	}
	return out
}

// Hint 给出当前谜底的提示并扣除提示分
//
// 第N次提示透出谜底的前N个字符。没有固定谜底的游戏不支持提示。
func (m *Manager) Hint(ctx context.Context, roomID, userID string) (string, error) {
	var hint string
	var active, available bool
	m.store.Update(func(data *models.Store) bool {
		session, ok := data.Games[roomID]
		if !ok || session.State == nil {
			delete(data.Games, roomID)
			return ok
		}
		active = true
		if session.State.Answer == "" {
			return false
		}
		available = true
		session.State.HintsGiven++
		hint = runePrefix(session.State.Answer, session.State.HintsGiven)
		return true
	})
	if !active {
		return "", errors.New(errors.ErrNoActiveGame)
	}
	if !available {
		return "", errors.New(errors.ErrGameStateError, "هذه اللعبة بلا تلميح")
	}
	m.users.AdjustPoints(ctx, userID, m.cfg.PointsHint)
	return hint, nil
}

// Reveal 公布谜底并终结本局，不改动任何人的积分
func (m *Manager) Reveal(ctx context.Context, roomID string) (string, error) {
	var answer string
	var active bool
	m.store.Update(func(data *models.Store) bool {
		session, ok := data.Games[roomID]
		if !ok {
			return false
		}
		if session.State == nil {
			delete(data.Games, roomID)
			return true
		}
		active = true
		answer = session.State.Answer
		delete(data.Games, roomID)
		return true
	})
	if !active {
		return "", errors.New(errors.ErrNoActiveGame)
	}
	m.log.Info("公布谜底并终局", zap.String("room_id", roomID))
	return answer, nil
}

// Stop 终止房间的会话，幂等
func (m *Manager) Stop(ctx context.Context, roomID string) bool {
	var existed bool
	m.store.Update(func(data *models.Store) bool {
		_, existed = data.Games[roomID]
		delete(data.Games, roomID)
		return existed
	})
	if existed {
		m.log.Info("终止游戏会话", zap.String("room_id", roomID))
	}
	return existed
}

// Restart 以同一游戏类型重开本局
func (m *Manager) Restart(ctx context.Context, roomID, userID string) (*StartResult, error) {
	var gameType models.GameType
	var active bool
	m.store.View(func(data *models.Store) {
		if session, ok := data.Games[roomID]; ok {
			gameType = session.GameType
			active = true
		}
	})
	if !active {
		return nil, errors.New(errors.ErrNoActiveGame)
	}
	return m.Start(ctx, roomID, userID, gameType)
}

// Active 返回房间当前会话的副本
func (m *Manager) Active(roomID string) (models.GameSession, bool) {
	var session models.GameSession
	var ok bool
	m.store.View(func(data *models.Store) {
		if s, exists := data.Games[roomID]; exists {
			session = *s
			ok = true
		}
	})
	return session, ok
}

func runePrefix(s string, n int) string {
	runes := []rune(s)
	if n > len(runes) {
		n = len(runes)
	}
	return string(runes[:n])
}

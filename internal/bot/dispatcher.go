package bot

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wfunc/whale-bot/internal/config"
	"github.com/wfunc/whale-bot/internal/content"
	"github.com/wfunc/whale-bot/internal/game"
	"github.com/wfunc/whale-bot/internal/models"
	"github.com/wfunc/whale-bot/internal/ratelimit"
	"github.com/wfunc/whale-bot/internal/service"
)

// gameCommands 开局命令 → 游戏类型
var gameCommands = map[string]models.GameType{
	"أغنية": models.GameSong,
	"لعبة":  models.GameCategory,
	"سلسلة": models.GameWordChain,
	"أسرع":  models.GameFastest,
	"ضد":    models.GameOpposite,
	"تكوين": models.GameWordComposer,
	"اختلاف": models.GameDifference,
	"توافق": models.GameCompatibility,
}

// contentCommands 抽取命令 → 内容分类
var contentCommands = map[string]string{
	"سؤال":   content.CategoryQuestions,
	"سوال":   content.CategoryQuestions,
	"تحدي":   content.CategoryChallenges,
	"اعتراف": content.CategoryConfessions,
	"منشن":   content.CategoryMentions,
}

// Dispatcher 命令分发器
//
// 入站先过限流闸，再确保用户存在，最后按词表路由。
// 不认识的文本在有会话时当作答案，否则静默忽略。
type Dispatcher struct {
	users   *service.UserService
	games   *game.Manager
	rotator *content.Rotator
	limiter *ratelimit.Limiter
	cfg     config.GameConfig
	log     *zap.Logger
}

// NewDispatcher 创建命令分发器
func NewDispatcher(users *service.UserService, games *game.Manager, rotator *content.Rotator, limiter *ratelimit.Limiter, cfg config.GameConfig, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		users:   users,
		games:   games,
		rotator: rotator,
		limiter: limiter,
		cfg:     cfg,
		log:     log,
	}
}

// Handle 处理一条命令事件，返回待发送的回复（可能为空）
func (d *Dispatcher) Handle(ctx context.Context, ev Event) []Reply {
	if ev.Command == "" || ev.UserID == "" {
		return nil
	}
	if !d.limiter.Allow(ev.UserID) {
		d.log.Warn("限流丢弃", zap.String("user_id", ev.UserID))
		return nil
	}

	user := d.users.GetOrCreate(ctx, ev.UserID)
	d.log.Info("处理命令",
		zap.String("command", ev.Command),
		zap.String("user_id", ev.UserID),
		zap.String("room_id", ev.RoomID))

	switch ev.Command {
	case "البداية", "بداية":
		return []Reply{CardReply(welcomeCard())}
	case "مساعدة", "المساعدة":
		return []Reply{CardReply(helpCard())}
	case "انضم", "تسجيل":
		return d.register(ctx, ev)
	case "انسحب", "الغاء":
		return d.unregister(ctx, ev)
	case "نقاطي", "نقاط":
		return []Reply{CardReply(pointsCard(user))}
	case "الصدارة", "صدارة":
		return []Reply{CardReply(leaderboardCard(d.users.Leaderboard(d.cfg.LeaderboardSize)))}
	case "لمح":
		return d.hint(ctx, ev)
	case "الحل":
		return d.reveal(ctx, ev)
	case "ايقاف":
		return d.stop(ctx, ev)
	case "اعادة":
		return d.restart(ctx, ev)
	}

	if category, ok := contentCommands[ev.Command]; ok {
		return d.drawContent(category)
	}
	if gameType, ok := gameCommands[ev.Command]; ok {
		return d.startGame(ctx, ev, gameType)
	}
	if answer, ok := strings.CutPrefix(ev.Command, "جاوب "); ok {
		return d.submit(ctx, ev, strings.TrimSpace(answer), true)
	}

	// 其余文本在有会话时当作答案
	return d.submit(ctx, ev, ev.Command, false)
}

func (d *Dispatcher) register(ctx context.Context, ev Event) []Reply {
	switch d.users.Register(ctx, ev.UserID) {
	case service.RegisteredNew:
		return []Reply{TextReply("✓ تم تسجيلك! ابدأ جمع النقاط الآن")}
	default:
		return []Reply{TextReply("أنت مسجل من قبل")}
	}
}

func (d *Dispatcher) unregister(ctx context.Context, ev Event) []Reply {
	switch d.users.Unregister(ctx, ev.UserID) {
	case service.Unregistered:
		return []Reply{TextReply("تم انسحابك، نراك قريباً")}
	default:
		return []Reply{TextReply("أنت غير مسجل أصلاً")}
	}
}

func (d *Dispatcher) drawContent(category string) []Reply {
	item, err := d.rotator.Draw(category)
	if err != nil {
		d.log.Warn("内容抽取失败", zap.String("category", category), zap.Error(err))
		return []Reply{TextReply("لا يوجد محتوى متاح حالياً")}
	}
	return []Reply{TextReply(item)}
}

func (d *Dispatcher) startGame(ctx context.Context, ev Event, gameType models.GameType) []Reply {
	result, err := d.games.Start(ctx, ev.RoomID, ev.UserID, gameType)
	if err != nil {
		d.log.Warn("开局失败", zap.String("game_type", string(gameType)), zap.Error(err))
		return []Reply{TextReply("تعذر بدء اللعبة، حاول لاحقاً")}
	}
	replies := []Reply{TextReply(result.Prompt)}
	if result.Replaced {
		replies = append([]Reply{TextReply("تم إنهاء اللعبة السابقة")}, replies...)
	}
	return replies
}

func (d *Dispatcher) submit(ctx context.Context, ev Event, answer string, explicit bool) []Reply {
	if answer == "" {
		return nil
	}
	out := d.games.Submit(ctx, ev.RoomID, ev.UserID, answer)
	switch out.Kind {
	case game.OutcomeAccepted, game.OutcomeFinished:
		replies := []Reply{TextReply(out.Message)}
		if out.Scored {
			replies = append(replies, TextReply(fmt.Sprintf("+%d نقطة! رصيدك: %d", d.cfg.PointsCorrect, out.Points)))
		}
		return replies
	case game.OutcomeDuplicate:
		return []Reply{TextReply("✗ سبق أن قدمت هذه الإجابة")}
	case game.OutcomeRejected:
		if explicit {
			return []Reply{TextReply("✗ إجابة غير صحيحة")}
		}
		return nil
	default:
		// 没有会话：普通闲聊，静默忽略
		if explicit {
			return []Reply{TextReply("لا توجد لعبة جارية، ابدأ واحدة أولاً")}
		}
		return nil
	}
}

func (d *Dispatcher) hint(ctx context.Context, ev Event) []Reply {
	hint, err := d.games.Hint(ctx, ev.RoomID, ev.UserID)
	if err != nil {
		return []Reply{TextReply("لا يوجد تلميح متاح")}
	}
	return []Reply{TextReply(fmt.Sprintf("💡 تلميح (بخصم نقطة): %s...", hint))}
}

func (d *Dispatcher) reveal(ctx context.Context, ev Event) []Reply {
	answer, err := d.games.Reveal(ctx, ev.RoomID)
	if err != nil {
		return []Reply{TextReply("لا توجد لعبة جارية")}
	}
	if answer == "" {
		return []Reply{TextReply("✓ انتهت اللعبة")}
	}
	return []Reply{TextReply(fmt.Sprintf("✓ الحل: %s", answer))}
}

func (d *Dispatcher) stop(ctx context.Context, ev Event) []Reply {
	if d.games.Stop(ctx, ev.RoomID) {
		return []Reply{TextReply("✓ تم إيقاف اللعبة")}
	}
	return []Reply{TextReply("لا توجد لعبة جارية")}
}

func (d *Dispatcher) restart(ctx context.Context, ev Event) []Reply {
	result, err := d.games.Restart(ctx, ev.RoomID, ev.UserID)
	if err != nil {
		return []Reply{TextReply("لا توجد لعبة جارية")}
	}
	return []Reply{TextReply(result.Prompt)}
}

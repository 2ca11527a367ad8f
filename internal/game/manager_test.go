package game

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/wfunc/whale-bot/internal/config"
	"github.com/wfunc/whale-bot/internal/content"
	"github.com/wfunc/whale-bot/internal/errors"
	"github.com/wfunc/whale-bot/internal/models"
	"github.com/wfunc/whale-bot/internal/service"
	"github.com/wfunc/whale-bot/internal/store"
)

// stubResolver 固定昵称的资料查询桩
type stubResolver struct{}

func (stubResolver) DisplayName(ctx context.Context, userID string) (string, error) {
	return "لاعب " + userID, nil
}

// ManagerTestSuite 会话管理器测试套件
type ManagerTestSuite struct {
	suite.Suite
	dir     string
	store   *store.Store
	users   *service.UserService
	manager *Manager
}

func (suite *ManagerTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()

	err := os.WriteFile(filepath.Join(suite.dir, "questions.txt"), []byte("سؤال 1\nسؤال 2\n"), 0644)
	suite.Require().NoError(err)

	suite.store = store.New(filepath.Join(suite.dir, "db.json"), zap.NewNop())
	suite.store.Load()
	suite.users = service.NewUserService(suite.store, stubResolver{}, zap.NewNop())

	pools := content.LoadPools(config.ContentConfig{
		Dir:             suite.dir,
		QuestionsFile:   "questions.txt",
		ChallengesFile:  "challenges.txt",
		ConfessionsFile: "confessions.txt",
		MentionsFile:    "mentions.txt",
	}, zap.NewNop())
	rotator := content.NewRotator(pools, suite.store, zap.NewNop())

	suite.manager = NewManager(suite.store, suite.users, rotator, config.GameConfig{
		PointsCorrect: 2,
		PointsHint:    -1,
	}, zap.NewNop())

	// 确定性抽签与会话ID
	suite.manager.pick = func(n int) int { return 0 }
	seq := 0
	suite.manager.newID = func() string {
		seq++
		return fmt.Sprintf("session-%d", seq)
	}
}

// 测试未知游戏类型
func (suite *ManagerTestSuite) TestStart_UnknownType() {
	_, err := suite.manager.Start(context.Background(), "R1", "U1", models.GameType("chess"))
	suite.Error(err)
	suite.Equal(errors.ErrUnknownGameType, errors.GetCode(err))
}

// 测试再次开局覆盖现有会话
func (suite *ManagerTestSuite) TestStart_ReplacesActiveSession() {
	ctx := context.Background()

	result, err := suite.manager.Start(ctx, "R1", "U1", models.GameSong)
	suite.Require().NoError(err)
	suite.False(result.Replaced)

	result, err = suite.manager.Start(ctx, "R1", "U2", models.GameOpposite)
	suite.Require().NoError(err)
	suite.True(result.Replaced)

	active, ok := suite.manager.Active("R1")
	suite.True(ok)
	suite.Equal(models.GameOpposite, active.GameType)

	// 两次开局各计一局
	suite.Equal(2, suite.store.Snapshot().TotalGames)
}

// 测试开局累加开局者的局数
func (suite *ManagerTestSuite) TestStart_CountsStarterGame() {
	_, err := suite.manager.Start(context.Background(), "R1", "U1", models.GameSong)
	suite.Require().NoError(err)

	u, ok := suite.users.Get("U1")
	suite.True(ok)
	suite.Equal(1, u.GamesPlayed)
}

// 测试无会话时作答静默忽略
func (suite *ManagerTestSuite) TestSubmit_NoSession() {
	out := suite.manager.Submit(context.Background(), "R1", "U1", "أي شيء")
	suite.Equal(OutcomeNoSession, out.Kind)
	suite.False(out.Scored)
}

// 测试持久化文件带来的未知游戏类型：按无会话处理并清掉
func (suite *ManagerTestSuite) TestSubmit_UnknownPersistedType() {
	suite.store.Update(func(data *models.Store) bool {
		data.Games["R1"] = models.NewGameSession("s1", "R1", models.GameType("quiz_v2"), time.Now())
		return true
	})

	out := suite.manager.Submit(context.Background(), "R1", "U1", "أي شيء")
	suite.Equal(OutcomeNoSession, out.Kind)

	_, ok := suite.manager.Active("R1")
	suite.False(ok)
}

// 测试持久化文件带来的空状态会话：作答、提示、公布都不崩溃
func (suite *ManagerTestSuite) TestSubmit_NilStatePersistedSession() {
	seed := func() {
		suite.store.Update(func(data *models.Store) bool {
			s := models.NewGameSession("s1", "R1", models.GameSong, time.Now())
			s.State = nil
			data.Games["R1"] = s
			return true
		})
	}

	seed()
	out := suite.manager.Submit(context.Background(), "R1", "U1", "أي شيء")
	suite.Equal(OutcomeNoSession, out.Kind)
	_, ok := suite.manager.Active("R1")
	suite.False(ok)

	seed()
	_, err := suite.manager.Hint(context.Background(), "R1", "U1")
	suite.Equal(errors.ErrNoActiveGame, errors.GetCode(err))

	seed()
	_, err = suite.manager.Reveal(context.Background(), "R1")
	suite.Equal(errors.ErrNoActiveGame, errors.GetCode(err))
}

// 测试反义词：答对终局并得分
func (suite *ManagerTestSuite) TestSubmit_Opposite() {
	ctx := context.Background()
	// pick=0 ⇒ 题面 كبير، 谜底 صغير
	_, err := suite.manager.Start(ctx, "R1", "U1", models.GameOpposite)
	suite.Require().NoError(err)

	out := suite.manager.Submit(ctx, "R1", "U2", "كثير")
	suite.Equal(OutcomeRejected, out.Kind)

	out = suite.manager.Submit(ctx, "R1", "U2", "صغير")
	suite.Equal(OutcomeFinished, out.Kind)
	suite.True(out.Scored)
	suite.Equal(int64(2), out.Points)

	// 终局后会话被移除
	out = suite.manager.Submit(ctx, "R1", "U3", "صغير")
	suite.Equal(OutcomeNoSession, out.Kind)
}

// 测试分类游戏：重复答案被拒且不重复计分
func (suite *ManagerTestSuite) TestSubmit_Duplicate() {
	ctx := context.Background()
	// pick=0 ⇒ 字母 أ
	_, err := suite.manager.Start(ctx, "R1", "U1", models.GameCategory)
	suite.Require().NoError(err)

	out := suite.manager.Submit(ctx, "R1", "U2", "أسد")
	suite.Equal(OutcomeAccepted, out.Kind)
	suite.Equal(int64(2), out.Points)

	out = suite.manager.Submit(ctx, "R1", "U2", "أسد")
	suite.Equal(OutcomeDuplicate, out.Kind)
	suite.False(out.Scored)

	u, _ := suite.users.Get("U2")
	suite.Equal(int64(2), u.Points)

	// 不同参与者可以刷同一个词
	out = suite.manager.Submit(ctx, "R1", "U3", "أسد")
	suite.Equal(OutcomeAccepted, out.Kind)
}

// 测试接龙规则
func (suite *ManagerTestSuite) TestSubmit_WordChain() {
	ctx := context.Background()
	// pick=0 ⇒ 起始词 قلم，尾字母 م
	_, err := suite.manager.Start(ctx, "R1", "U1", models.GameWordChain)
	suite.Require().NoError(err)

	out := suite.manager.Submit(ctx, "R1", "U2", "باب")
	suite.Equal(OutcomeRejected, out.Kind)

	out = suite.manager.Submit(ctx, "R1", "U2", "موز")
	suite.Equal(OutcomeAccepted, out.Kind)
	suite.True(out.Scored)

	// 当前词推进为新词，起始词不能再用
	active, _ := suite.manager.Active("R1")
	suite.Equal("موز", active.State.CurrentWord)

	out = suite.manager.Submit(ctx, "R1", "U3", "قلم")
	suite.Equal(OutcomeRejected, out.Kind)
}

// 测试抢答：只有第一个作答者得分
func (suite *ManagerTestSuite) TestSubmit_Fastest() {
	ctx := context.Background()
	_, err := suite.manager.Start(ctx, "R1", "U1", models.GameFastest)
	suite.Require().NoError(err)

	out := suite.manager.Submit(ctx, "R1", "U2", "جوابي")
	suite.Equal(OutcomeFinished, out.Kind)
	suite.True(out.Scored)

	out = suite.manager.Submit(ctx, "R1", "U3", "جواب آخر")
	suite.Equal(OutcomeNoSession, out.Kind)
}

// 测试猜歌：歌名完全匹配
func (suite *ManagerTestSuite) TestSubmit_Song() {
	ctx := context.Background()
	// pick=0 ⇒ 谜底 أنت عمري
	_, err := suite.manager.Start(ctx, "R1", "U1", models.GameSong)
	suite.Require().NoError(err)

	out := suite.manager.Submit(ctx, "R1", "U2", "سألوني الناس")
	suite.Equal(OutcomeRejected, out.Kind)

	out = suite.manager.Submit(ctx, "R1", "U2", " أنت عمري ")
	suite.Equal(OutcomeFinished, out.Kind)
	suite.Equal(int64(2), out.Points)
}

// 测试拼词：只能用给定字母且本局不重复
func (suite *ManagerTestSuite) TestSubmit_WordComposer() {
	ctx := context.Background()
	// pick=0 ⇒ 字母集 ق ل م ا ر س
	_, err := suite.manager.Start(ctx, "R1", "U1", models.GameWordComposer)
	suite.Require().NoError(err)

	out := suite.manager.Submit(ctx, "R1", "U2", "قلم")
	suite.Equal(OutcomeAccepted, out.Kind)

	out = suite.manager.Submit(ctx, "R1", "U3", "قلب")
	suite.Equal(OutcomeRejected, out.Kind)

	// 本局已用词对所有参与者封锁
	out = suite.manager.Submit(ctx, "R1", "U3", "قلم")
	suite.Equal(OutcomeRejected, out.Kind)
}

// 测试找不同：推进图片直到终局，不计分
func (suite *ManagerTestSuite) TestSubmit_Difference() {
	ctx := context.Background()
	_, err := suite.manager.Start(ctx, "R1", "U1", models.GameDifference)
	suite.Require().NoError(err)

	out := suite.manager.Submit(ctx, "R1", "U2", "التالي")
	suite.Equal(OutcomeAccepted, out.Kind)
	suite.False(out.Scored)

	out = suite.manager.Submit(ctx, "R1", "U3", "التالي")
	suite.Equal(OutcomeAccepted, out.Kind)

	out = suite.manager.Submit(ctx, "R1", "U2", "الأخيرة")
	suite.Equal(OutcomeFinished, out.Kind)
	suite.False(out.Scored)

	u, _ := suite.users.Get("U2")
	suite.Zero(u.Points)
}

// 测试默契度：结果确定且与顺序无关，不计分
func (suite *ManagerTestSuite) TestSubmit_Compatibility() {
	ctx := context.Background()
	_, err := suite.manager.Start(ctx, "R1", "U1", models.GameCompatibility)
	suite.Require().NoError(err)

	out := suite.manager.Submit(ctx, "R1", "U2", "أحمد")
	suite.Equal(OutcomeRejected, out.Kind)

	out = suite.manager.Submit(ctx, "R1", "U2", "أحمد سارة")
	suite.Equal(OutcomeFinished, out.Kind)
	suite.False(out.Scored)
	suite.Contains(out.Message, "%")

	score := CompatibilityScore("أحمد", "سارة")
	suite.Equal(score, CompatibilityScore("سارة", "أحمد"))
	suite.GreaterOrEqual(score, 0)
	suite.Less(score, 100)
}

// 测试提示：逐字透出谜底并扣分
func (suite *ManagerTestSuite) TestHint() {
	ctx := context.Background()

	_, err := suite.manager.Hint(ctx, "R1", "U1")
	suite.Equal(errors.ErrNoActiveGame, errors.GetCode(err))

	// 先攒点积分，观察提示扣分
	suite.users.AdjustPoints(ctx, "U1", 4)

	_, err = suite.manager.Start(ctx, "R1", "U1", models.GameOpposite)
	suite.Require().NoError(err)

	hint, err := suite.manager.Hint(ctx, "R1", "U1")
	suite.Require().NoError(err)
	suite.Equal("ص", hint)

	hint, err = suite.manager.Hint(ctx, "R1", "U1")
	suite.Require().NoError(err)
	suite.Equal("صغ", hint)

	u, _ := suite.users.Get("U1")
	suite.Equal(int64(2), u.Points)
}

// 测试无固定谜底的游戏不支持提示
func (suite *ManagerTestSuite) TestHint_Unavailable() {
	ctx := context.Background()
	_, err := suite.manager.Start(ctx, "R1", "U1", models.GameWordChain)
	suite.Require().NoError(err)

	_, err = suite.manager.Hint(ctx, "R1", "U1")
	suite.Equal(errors.ErrGameStateError, errors.GetCode(err))
}

// 测试公布谜底终局且不影响积分
func (suite *ManagerTestSuite) TestReveal() {
	ctx := context.Background()

	_, err := suite.manager.Reveal(ctx, "R1")
	suite.Equal(errors.ErrNoActiveGame, errors.GetCode(err))

	_, err = suite.manager.Start(ctx, "R1", "U1", models.GameOpposite)
	suite.Require().NoError(err)

	answer, err := suite.manager.Reveal(ctx, "R1")
	suite.Require().NoError(err)
	suite.Equal("صغير", answer)

	out := suite.manager.Submit(ctx, "R1", "U2", "صغير")
	suite.Equal(OutcomeNoSession, out.Kind)
}

// 测试停止幂等，停止后作答被忽略
func (suite *ManagerTestSuite) TestStop() {
	ctx := context.Background()

	suite.False(suite.manager.Stop(ctx, "R1"))

	_, err := suite.manager.Start(ctx, "R1", "U1", models.GameSong)
	suite.Require().NoError(err)

	suite.True(suite.manager.Stop(ctx, "R1"))
	suite.False(suite.manager.Stop(ctx, "R1"))

	out := suite.manager.Submit(ctx, "R1", "U2", "أنت عمري")
	suite.Equal(OutcomeNoSession, out.Kind)
}

// 测试重开：同类型新会话
func (suite *ManagerTestSuite) TestRestart() {
	ctx := context.Background()

	_, err := suite.manager.Restart(ctx, "R1", "U1")
	suite.Equal(errors.ErrNoActiveGame, errors.GetCode(err))

	first, err := suite.manager.Start(ctx, "R1", "U1", models.GameCategory)
	suite.Require().NoError(err)

	again, err := suite.manager.Restart(ctx, "R1", "U2")
	suite.Require().NoError(err)
	suite.Equal(models.GameCategory, again.GameType)
	suite.NotEqual(first.SessionID, again.SessionID)
}

// 测试会话随存储持久化
func (suite *ManagerTestSuite) TestSessionPersisted() {
	ctx := context.Background()
	_, err := suite.manager.Start(ctx, "R1", "U1", models.GameCategory)
	suite.Require().NoError(err)

	reloaded := store.New(filepath.Join(suite.dir, "db.json"), zap.NewNop())
	reloaded.Load()
	reloaded.View(func(data *models.Store) {
		session, ok := data.Games["R1"]
		suite.Require().True(ok)
		suite.Equal(models.GameCategory, session.GameType)
		suite.Equal("أ", session.State.Letter)
	})
}

func TestManagerTestSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}

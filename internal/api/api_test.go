package api

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/wfunc/whale-bot/internal/bot"
	"github.com/wfunc/whale-bot/internal/config"
	"github.com/wfunc/whale-bot/internal/content"
	"github.com/wfunc/whale-bot/internal/game"
	"github.com/wfunc/whale-bot/internal/line"
	"github.com/wfunc/whale-bot/internal/ratelimit"
	"github.com/wfunc/whale-bot/internal/service"
	"github.com/wfunc/whale-bot/internal/store"
)

const testSecret = "test-channel-secret"

// recordingMessenger 记录下行消息的桩
type recordingMessenger struct {
	replies [][]line.Message
}

func (m *recordingMessenger) Reply(ctx context.Context, replyToken string, messages ...line.Message) error {
	m.replies = append(m.replies, messages)
	return nil
}

type apiResolver struct{}

func (apiResolver) DisplayName(ctx context.Context, userID string) (string, error) {
	return "لاعب " + userID, nil
}

// APITestSuite HTTP层测试套件
type APITestSuite struct {
	suite.Suite
	router    *Router
	messenger *recordingMessenger
	store     *store.Store
}

func (suite *APITestSuite) SetupTest() {
	dir := suite.T().TempDir()
	err := os.WriteFile(filepath.Join(dir, "questions.txt"), []byte("سؤال\n"), 0644)
	suite.Require().NoError(err)

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.Line.ChannelSecret = testSecret
	cfg.Admin.Token = "admin-secret"
	cfg.Admin.JWTSecret = "jwt-secret-key"
	cfg.Admin.JWTExpiry = time.Hour
	cfg.Game = config.GameConfig{
		PointsCorrect:   2,
		PointsHint:      -1,
		RateLimit:       10,
		RateWindow:      time.Minute,
		LeaderboardSize: 10,
	}
	cfg.Content = config.ContentConfig{
		Dir:             dir,
		QuestionsFile:   "questions.txt",
		ChallengesFile:  "challenges.txt",
		ConfessionsFile: "confessions.txt",
		MentionsFile:    "mentions.txt",
	}

	suite.store = store.New(filepath.Join(dir, "db.json"), zap.NewNop())
	suite.store.Load()
	users := service.NewUserService(suite.store, apiResolver{}, zap.NewNop())
	pools := content.LoadPools(cfg.Content, zap.NewNop())
	rotator := content.NewRotator(pools, suite.store, zap.NewNop())
	games := game.NewManager(suite.store, users, rotator, cfg.Game, zap.NewNop())
	limiter := ratelimit.New(cfg.Game.RateLimit, cfg.Game.RateWindow)
	dispatcher := bot.NewDispatcher(users, games, rotator, limiter, cfg.Game, zap.NewNop())

	suite.messenger = &recordingMessenger{}
	suite.router = NewRouter(cfg, suite.store, dispatcher, pools, suite.messenger, zap.NewNop())
}

func (suite *APITestSuite) sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (suite *APITestSuite) webhookBody(userID, text string) []byte {
	return []byte(fmt.Sprintf(`{
		"events": [{
			"type": "message",
			"replyToken": "rt-1",
			"source": {"type": "group", "userId": %q, "groupId": "G1"},
			"message": {"type": "text", "id": "1", "text": %q}
		}]
	}`, userID, text))
}

func (suite *APITestSuite) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	suite.router.Engine().ServeHTTP(w, req)
	return w
}

// 测试健康检查
func (suite *APITestSuite) TestHealth() {
	w := suite.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	suite.Equal(http.StatusOK, w.Code)

	var resp map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("ok", resp["status"])
	suite.Equal(Version, resp["version"])
}

// 测试签名错误的webhook被拒
func (suite *APITestSuite) TestWebhook_BadSignature() {
	body := suite.webhookBody("U1", "انضم")
	req := httptest.NewRequest(http.MethodPost, "/callback", bytes.NewReader(body))
	req.Header.Set("X-Line-Signature", "bm90LXZhbGlk")

	w := suite.do(req)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Empty(suite.messenger.replies)
}

// 测试webhook端到端：注册命令产生回复
func (suite *APITestSuite) TestWebhook_Register() {
	body := suite.webhookBody("U1", "انضم")
	req := httptest.NewRequest(http.MethodPost, "/callback", bytes.NewReader(body))
	req.Header.Set("X-Line-Signature", suite.sign(body))

	w := suite.do(req)
	suite.Equal(http.StatusOK, w.Code)
	suite.Require().Len(suite.messenger.replies, 1)
	suite.Contains(suite.messenger.replies[0][0].Text, "تم تسجيلك")

	suite.Equal(1, suite.store.Snapshot().Registered)
}

// 测试webhook：卡片命令渲染成flex消息
func (suite *APITestSuite) TestWebhook_Card() {
	body := suite.webhookBody("U1", "مساعدة")
	req := httptest.NewRequest(http.MethodPost, "/callback", bytes.NewReader(body))
	req.Header.Set("X-Line-Signature", suite.sign(body))

	w := suite.do(req)
	suite.Equal(http.StatusOK, w.Code)
	suite.Require().Len(suite.messenger.replies, 1)
	msg := suite.messenger.replies[0][0]
	suite.Equal("flex", msg.Type)
	suite.NotEmpty(msg.Contents)
}

// 测试管理登录与受保护路由
func (suite *APITestSuite) TestAdminFlow() {
	// 未认证访问被拒
	w := suite.do(httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	suite.Equal(http.StatusUnauthorized, w.Code)

	// 错误令牌登录失败
	w = suite.do(httptest.NewRequest(http.MethodPost, "/admin/login",
		bytes.NewReader([]byte(`{"token":"wrong"}`))))
	suite.Equal(http.StatusUnauthorized, w.Code)

	// 正确令牌换取JWT
	w = suite.do(httptest.NewRequest(http.MethodPost, "/admin/login",
		bytes.NewReader([]byte(`{"token":"admin-secret"}`))))
	suite.Require().Equal(http.StatusOK, w.Code)

	var login struct {
		Token string `json:"token"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &login))
	suite.NotEmpty(login.Token)

	// JWT访问受保护路由
	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	w = suite.do(req)
	suite.Equal(http.StatusOK, w.Code)

	// 原始令牌头也可直接访问
	req = httptest.NewRequest(http.MethodPost, "/admin/reload", nil)
	req.Header.Set("X-Admin-Token", "admin-secret")
	w = suite.do(req)
	suite.Equal(http.StatusOK, w.Code)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

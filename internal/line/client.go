package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/wfunc/whale-bot/internal/config"
	"github.com/wfunc/whale-bot/internal/errors"
)

// Message 下行消息，type为text或flex
type Message struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	AltText  string          `json:"altText,omitempty"`
	Contents json.RawMessage `json:"contents,omitempty"`
}

// TextMessage 构造纯文本消息
func TextMessage(text string) Message {
	return Message{Type: "text", Text: text}
}

// FlexMessage 构造flex卡片消息
func FlexMessage(altText string, contents json.RawMessage) Message {
	return Message{Type: "flex", AltText: altText, Contents: contents}
}

// Client LINE Messaging API客户端
//
// 同时充当资料查询器，实现service.ProfileResolver。
type Client struct {
	endpoint     string
	channelToken string
	httpClient   *http.Client
	log          *zap.Logger
}

// NewClient 创建平台客户端
func NewClient(cfg config.LineConfig, log *zap.Logger) *Client {
	return &Client{
		endpoint:     cfg.APIEndpoint,
		channelToken: cfg.ChannelToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// Reply 用reply token回复消息
func (c *Client) Reply(ctx context.Context, replyToken string, messages ...Message) error {
	if replyToken == "" || len(messages) == 0 {
		return nil
	}
	payload := map[string]interface{}{
		"replyToken": replyToken,
		"messages":   messages,
	}
	return c.post(ctx, "/v2/bot/message/reply", payload)
}

// DisplayName 查询用户的显示昵称
func (c *Client) DisplayName(ctx context.Context, userID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint+"/v2/bot/profile/"+userID, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrProfileLookup)
	}
	req.Header.Set("Authorization", "Bearer "+c.channelToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrProfileLookup)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf(errors.ErrProfileLookup, "profile %s: status %d", userID, resp.StatusCode)
	}

	var profile struct {
		DisplayName string `json:"displayName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return "", errors.Wrap(err, errors.ErrProfileLookup)
	}
	return profile.DisplayName, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.ErrInvalidParam)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("line: 构造请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.channelToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("line: 请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Warn("平台接口返回错误",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", detail))
		return errors.Newf(errors.ErrUnknown, "line %s: status %d", path, resp.StatusCode)
	}
	return nil
}

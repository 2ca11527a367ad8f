package line

import (
	"encoding/json"
	"strings"

	"github.com/wfunc/whale-bot/internal/errors"
)

// webhookSource 事件来源
type webhookSource struct {
	Type    string `json:"type"`
	UserID  string `json:"userId"`
	GroupID string `json:"groupId,omitempty"`
	RoomID  string `json:"roomId,omitempty"`
}

// webhookMessage 消息体
type webhookMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Text string `json:"text"`
}

// webhookEvent 单个webhook事件
type webhookEvent struct {
	Type       string         `json:"type"`
	ReplyToken string         `json:"replyToken"`
	Source     webhookSource  `json:"source"`
	Message    webhookMessage `json:"message"`
}

// webhookRequest webhook请求体
type webhookRequest struct {
	Destination string         `json:"destination"`
	Events      []webhookEvent `json:"events"`
}

// CommandEvent 归一化后的文本命令事件
//
// RoomID是积分与会话的作用域：群聊取群ID，
// 单聊回退到用户自己的ID。
type CommandEvent struct {
	Command    string // 去除首尾空白后的原始文本
	UserID     string
	RoomID     string
	ReplyToken string
}

// ParseWebhook 解析webhook请求体，只保留文本消息事件
func ParseWebhook(body []byte) ([]CommandEvent, error) {
	var req webhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidParam, "webhook体解析失败")
	}

	var events []CommandEvent
	for _, ev := range req.Events {
		if ev.Type != "message" || ev.Message.Type != "text" {
			continue
		}
		text := strings.TrimSpace(ev.Message.Text)
		if text == "" || ev.Source.UserID == "" {
			continue
		}
		events = append(events, CommandEvent{
			Command:    text,
			UserID:     ev.Source.UserID,
			RoomID:     roomScope(ev.Source),
			ReplyToken: ev.ReplyToken,
		})
	}
	return events, nil
}

func roomScope(src webhookSource) string {
	switch {
	case src.GroupID != "":
		return src.GroupID
	case src.RoomID != "":
		return src.RoomID
	default:
		return src.UserID
	}
}

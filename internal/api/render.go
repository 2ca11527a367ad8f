package api

import (
	"encoding/json"

	"github.com/wfunc/whale-bot/internal/bot"
	"github.com/wfunc/whale-bot/internal/line"
)

// renderReplies 把分发器的回复渲染成平台消息
func renderReplies(replies []bot.Reply) []line.Message {
	messages := make([]line.Message, 0, len(replies))
	for _, r := range replies {
		if r.Card != nil {
			messages = append(messages, renderCard(*r.Card))
			continue
		}
		if r.Text != "" {
			messages = append(messages, line.TextMessage(r.Text))
		}
	}
	return messages
}

// renderCard 把语义卡片渲染成flex bubble
func renderCard(card bot.Card) line.Message {
	body := []interface{}{
		map[string]interface{}{
			"type":   "text",
			"text":   card.Title,
			"weight": "bold",
			"size":   "lg",
			"wrap":   true,
		},
	}
	for _, l := range card.Lines {
		body = append(body, map[string]interface{}{
			"type":   "text",
			"text":   l,
			"size":   "sm",
			"color":  "#666666",
			"wrap":   true,
			"margin": "sm",
		})
	}

	bubble := map[string]interface{}{
		"type": "bubble",
		"body": map[string]interface{}{
			"type":     "box",
			"layout":   "vertical",
			"contents": body,
		},
	}

	if len(card.Buttons) > 0 {
		var footer []interface{}
		for _, b := range card.Buttons {
			footer = append(footer, map[string]interface{}{
				"type": "button",
				"action": map[string]interface{}{
					"type":  "message",
					"label": b.Label,
					"text":  b.Text,
				},
				"style":  "primary",
				"height": "sm",
			})
		}
		bubble["footer"] = map[string]interface{}{
			"type":     "box",
			"layout":   "vertical",
			"spacing":  "sm",
			"contents": footer,
		}
	}

	contents, _ := json.Marshal(bubble)
	return line.FlexMessage(card.Title, contents)
}

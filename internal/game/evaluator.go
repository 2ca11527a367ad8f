package game

import (
	"github.com/wfunc/whale-bot/internal/models"
)

// Verdict 评估器对一次作答的裁定
type Verdict struct {
	Accepted bool   // 答案是否被接受
	Scored   bool   // 是否计分（接受但不计分的游戏置false）
	Finished bool   // 本局是否就此终结
	Message  string // 回给房间的文案
}

// Evaluator 单个游戏类型的规则评估器
//
// Begin在会话写入存储前填充初始状态并返回开场文案；
// Check对一次作答做纯状态裁定，参与者层面的去重由管理器负责。
type Evaluator interface {
	Type() models.GameType
	Begin(state *models.SessionState, pick func(int) int) (string, error)
	Check(state *models.SessionState, answer string) Verdict
}

// newEvaluators 组装全部游戏类型的评估器
//
// draw为抢答游戏提供题目来源（内容轮换器）。
func newEvaluators(draw func(category string) (string, error)) map[models.GameType]Evaluator {
	evs := []Evaluator{
		&songEvaluator{},
		&categoryEvaluator{},
		&wordChainEvaluator{},
		&fastestEvaluator{draw: draw},
		&oppositeEvaluator{},
		&wordComposerEvaluator{},
		&differenceEvaluator{},
		&compatibilityEvaluator{},
	}
	m := make(map[models.GameType]Evaluator, len(evs))
	for _, ev := range evs {
		m[ev.Type()] = ev
	}
	return m
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}

func lastRune(s string) string {
	var last rune
	for _, r := range s {
		last = r
	}
	if last == 0 {
		return ""
	}
	return string(last)
}

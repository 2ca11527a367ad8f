package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wfunc/whale-bot/internal/errors"
	"github.com/wfunc/whale-bot/internal/models"
)

// songEvaluator 猜歌：根据提示语猜歌名，完全匹配即得分
type songEvaluator struct{}

func (e *songEvaluator) Type() models.GameType { return models.GameSong }

func (e *songEvaluator) Begin(state *models.SessionState, pick func(int) int) (string, error) {
	s := songs[pick(len(songs))]
	state.Question = s.Hint
	state.Answer = s.Title
	return fmt.Sprintf("🎵 خمن الأغنية\n\n%s", s.Hint), nil
}

func (e *songEvaluator) Check(state *models.SessionState, answer string) Verdict {
	if !strings.EqualFold(strings.TrimSpace(answer), state.Answer) {
		return Verdict{}
	}
	return Verdict{
		Accepted: true,
		Scored:   true,
		Finished: true,
		Message:  fmt.Sprintf("✓ إجابة صحيحة! الأغنية هي: %s", state.Answer),
	}
}

// categoryEvaluator 人物动物植物：按抽中的字母报词，以该字母开头即得分
type categoryEvaluator struct{}

func (e *categoryEvaluator) Type() models.GameType { return models.GameCategory }

func (e *categoryEvaluator) Begin(state *models.SessionState, pick func(int) int) (string, error) {
	state.Letter = categoryLetters[pick(len(categoryLetters))]
	return fmt.Sprintf("✏️ إنسان حيوان نبات\n\nالحرف: %s", state.Letter), nil
}

func (e *categoryEvaluator) Check(state *models.SessionState, answer string) Verdict {
	answer = strings.TrimSpace(answer)
	if !strings.HasPrefix(answer, state.Letter) {
		return Verdict{}
	}
	return Verdict{
		Accepted: true,
		Scored:   true,
		Message:  fmt.Sprintf("✓ %s مقبولة", answer),
	}
}

// wordChainEvaluator 接龙：新词首字母须等于当前词尾字母，本局不得重复
type wordChainEvaluator struct{}

func (e *wordChainEvaluator) Type() models.GameType { return models.GameWordChain }

func (e *wordChainEvaluator) Begin(state *models.SessionState, pick func(int) int) (string, error) {
	state.CurrentWord = chainStartWords[pick(len(chainStartWords))]
	state.UsedWords = []string{state.CurrentWord}
	return fmt.Sprintf("🔗 سلسلة الكلمات\n\nابدأ بكلمة: %s", state.CurrentWord), nil
}

func (e *wordChainEvaluator) Check(state *models.SessionState, answer string) Verdict {
	answer = strings.TrimSpace(answer)
	if answer == "" || state.UsedWord(answer) {
		return Verdict{}
	}
	if firstRune(answer) != lastRune(state.CurrentWord) {
		return Verdict{}
	}
	state.MarkWordUsed(answer)
	state.CurrentWord = answer
	return Verdict{
		Accepted: true,
		Scored:   true,
		Message:  fmt.Sprintf("✓ الكلمة التالية تبدأ بحرف: %s", lastRune(answer)),
	}
}

// fastestEvaluator 抢答：第一个作答者直接获胜
type fastestEvaluator struct {
	draw func(category string) (string, error)
}

func (e *fastestEvaluator) Type() models.GameType { return models.GameFastest }

func (e *fastestEvaluator) Begin(state *models.SessionState, pick func(int) int) (string, error) {
	q, err := e.draw("questions")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrContentEmpty, "لا توجد أسئلة متاحة")
	}
	state.Question = q
	return fmt.Sprintf("⚡ أسرع إجابة\n\n%s", q), nil
}

func (e *fastestEvaluator) Check(state *models.SessionState, answer string) Verdict {
	if state.Answered {
		return Verdict{}
	}
	state.Answered = true
	return Verdict{
		Accepted: true,
		Scored:   true,
		Finished: true,
		Message:  "⚡ الأسرع! لك نقاط الجولة",
	}
}

// oppositeEvaluator 反义词：答出题面词的反义词
type oppositeEvaluator struct{}

func (e *oppositeEvaluator) Type() models.GameType { return models.GameOpposite }

func (e *oppositeEvaluator) Begin(state *models.SessionState, pick func(int) int) (string, error) {
	p := oppositePairs[pick(len(oppositePairs))]
	state.Question = p.Word
	state.Answer = p.Opposite
	return fmt.Sprintf("🔄 ما عكس الكلمة: %s؟", p.Word), nil
}

func (e *oppositeEvaluator) Check(state *models.SessionState, answer string) Verdict {
	if strings.TrimSpace(answer) != state.Answer {
		return Verdict{}
	}
	return Verdict{
		Accepted: true,
		Scored:   true,
		Finished: true,
		Message:  fmt.Sprintf("✓ صحيح! عكس %s هو %s", state.Question, state.Answer),
	}
}

// wordComposerEvaluator 拼词：只用给定字母组词，本局不得重复
type wordComposerEvaluator struct{}

func (e *wordComposerEvaluator) Type() models.GameType { return models.GameWordComposer }

func (e *wordComposerEvaluator) Begin(state *models.SessionState, pick func(int) int) (string, error) {
	set := composerSets[pick(len(composerSets))]
	state.Letters = append([]string(nil), set...)
	return fmt.Sprintf("🔡 كوّن كلمات باستخدام الحروف: %s", strings.Join(set, " ")), nil
}

func (e *wordComposerEvaluator) Check(state *models.SessionState, answer string) Verdict {
	word := strings.TrimSpace(answer)
	if word == "" || state.UsedWord(word) {
		return Verdict{}
	}
	allowed := make(map[string]bool, len(state.Letters))
	for _, l := range state.Letters {
		allowed[l] = true
	}
	for _, r := range word {
		if !allowed[string(r)] {
			return Verdict{}
		}
	}
	state.MarkWordUsed(word)
	return Verdict{
		Accepted: true,
		Scored:   true,
		Message:  fmt.Sprintf("✓ %s مقبولة", word),
	}
}

// differenceEvaluator 找不同：逐张推进图片，看完即终局，不计分
type differenceEvaluator struct{}

func (e *differenceEvaluator) Type() models.GameType { return models.GameDifference }

func (e *differenceEvaluator) Begin(state *models.SessionState, pick func(int) int) (string, error) {
	state.Images = append([]string(nil), differenceImages...)
	state.ImageIndex = 0
	return fmt.Sprintf("🔎 اكتشف الاختلاف في الصورة:\n%s", state.Images[0]), nil
}

func (e *differenceEvaluator) Check(state *models.SessionState, answer string) Verdict {
	state.ImageIndex++
	if state.ImageIndex >= len(state.Images) {
		return Verdict{
			Accepted: true,
			Finished: true,
			Message:  "✅ انتهت اللعبة",
		}
	}
	return Verdict{
		Accepted: true,
		Message:  fmt.Sprintf("🔎 اكتشف الاختلاف في الصورة:\n%s", state.Images[state.ImageIndex]),
	}
}

// compatibilityEvaluator 默契度：两个名字的字符和取模得出百分比，娱乐性质不计分
type compatibilityEvaluator struct{}

func (e *compatibilityEvaluator) Type() models.GameType { return models.GameCompatibility }

func (e *compatibilityEvaluator) Begin(state *models.SessionState, pick func(int) int) (string, error) {
	return "💞 قياس التوافق\n\nأرسل اسمين مفصولين بمسافة", nil
}

func (e *compatibilityEvaluator) Check(state *models.SessionState, answer string) Verdict {
	names := strings.Fields(answer)
	if len(names) != 2 {
		return Verdict{}
	}
	return Verdict{
		Accepted: true,
		Finished: true,
		Message: fmt.Sprintf("💞 نسبة التوافق بين %s و %s: %d%%",
			names[0], names[1], CompatibilityScore(names[0], names[1])),
	}
}

// CompatibilityScore 计算两个名字的默契度百分比
//
// 与名字顺序无关，同样的两个名字永远得到同样的结果。
func CompatibilityScore(name1, name2 string) int {
	pair := []string{name1, name2}
	sort.Strings(pair)
	sum := 0
	for _, r := range pair[0] + pair[1] {
		sum += int(r)
	}
	return sum % 100
}

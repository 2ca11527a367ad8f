package bot

import (
	"fmt"

	"github.com/wfunc/whale-bot/internal/models"
	"github.com/wfunc/whale-bot/internal/service"
)

// medals 排行榜前三名的奖牌
var medals = []string{"🥇", "🥈", "🥉"}

// welcomeCard 欢迎卡片
func welcomeCard() Card {
	return Card{
		Title: "🐳 أهلاً بك في بوت الحوت",
		Lines: []string{
			"بوت ألعاب وتسلية للقروبات",
			"أرسل (انضم) للتسجيل وبدء جمع النقاط",
			"أرسل (مساعدة) لعرض كل الأوامر",
		},
		Buttons: []Button{
			{Label: "▫️ انضم", Text: "انضم"},
			{Label: "▫️ مساعدة", Text: "مساعدة"},
		},
	}
}

// helpCard 帮助卡片，列出全部命令
func helpCard() Card {
	return Card{
		Title: "📖 قائمة الأوامر",
		Lines: []string{
			"▫️ انضم - التسجيل في البوت",
			"▫️ انسحب - إلغاء التسجيل",
			"▫️ نقاطي - عرض نقاطك",
			"▫️ الصدارة - لوحة المتصدرين",
			"▫️ سؤال - سؤال عشوائي",
			"▫️ تحدي - تحدي عشوائي",
			"▫️ اعتراف - اعتراف عشوائي",
			"▫️ منشن - منشن عشوائي",
			"▫️ أغنية - خمن الأغنية",
			"▫️ لعبة - إنسان حيوان نبات",
			"▫️ سلسلة - سلسلة الكلمات",
			"▫️ أسرع - أسرع إجابة",
			"▫️ ضد - عكس الكلمة",
			"▫️ تكوين - تكوين كلمات",
			"▫️ اختلاف - ابحث عن الاختلافات",
			"▫️ توافق - قياس التوافق",
			"▫️ لمح - تلميح (بخصم نقطة)",
			"▫️ الحل - عرض الحل",
			"▫️ اعادة - إعادة اللعبة",
			"▫️ ايقاف - إيقاف اللعبة",
		},
		Buttons: []Button{
			{Label: "▫️ ابدأ اللعب", Text: "أغنية"},
		},
	}
}

// pointsCard 个人积分卡片
func pointsCard(user models.User) Card {
	return Card{
		Title: "💰 نقاطك",
		Lines: []string{
			fmt.Sprintf("الاسم: %s", user.Name),
			fmt.Sprintf("النقاط: %d", user.Points),
			fmt.Sprintf("الألعاب: %d", user.GamesPlayed),
		},
		Buttons: []Button{
			{Label: "▫️ الصدارة", Text: "الصدارة"},
		},
	}
}

// leaderboardCard 排行榜卡片
func leaderboardCard(entries []service.LeaderboardEntry) Card {
	card := Card{Title: "🏆 لوحة الصدارة"}
	if len(entries) == 0 {
		card.Lines = []string{"لا يوجد مسجلون بعد، أرسل (انضم)!"}
		return card
	}
	for i, e := range entries {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		card.Lines = append(card.Lines, fmt.Sprintf("%s %s - %d نقطة", rank, e.Name, e.Points))
	}
	return card
}

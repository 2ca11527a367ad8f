package game

// 各游戏的内置素材表。
// 题目类内容（سؤال/تحدي等）走content包的轮换器，
// 这里只放游戏自身需要的固定素材。

// songs 猜歌素材：提示语 → 歌名
var songs = []struct {
	Hint  string
	Title string
}{
	{"أغنية مشهورة لأم كلثوم تبدأ بكلمة (أنت)", "أنت عمري"},
	{"أغنية لفيروز عن الذهب", "سألوني الناس"},
	{"أغنية لعبد الحليم عن القراءة", "قارئة الفنجان"},
	{"أغنية لماجدة الرومي عن بيروت", "بيروت ست الدنيا"},
	{"أغنية لعمرو دياب عن النور", "نور العين"},
	{"أغنية لكاظم الساهر عن المدرسة", "مدرسة الحب"},
	{"أغنية لوردة عن الأيام", "في يوم وليلة"},
	{"أغنية لمحمد عبده عن الأماكن", "الأماكن"},
}

// categoryLetters 分类游戏的抽签字母表
var categoryLetters = []string{
	"أ", "ب", "ت", "ث", "ج", "ح", "خ", "د", "ذ", "ر",
	"ز", "س", "ش", "ص", "ض", "ط", "ظ", "ع", "غ", "ف",
	"ق", "ك", "ل", "م", "ن", "ه", "و", "ي",
}

// chainStartWords 接龙的起始词
var chainStartWords = []string{"قلم", "كتاب", "مدرسة", "باب", "شمس", "قمر", "بحر", "جبل"}

// oppositePairs 反义词题库：题面词 → 期望答案
var oppositePairs = []struct {
	Word     string
	Opposite string
}{
	{"كبير", "صغير"},
	{"طويل", "قصير"},
	{"سريع", "بطيء"},
	{"قوي", "ضعيف"},
	{"نهار", "ليل"},
	{"فوق", "تحت"},
	{"قريب", "بعيد"},
	{"سهل", "صعب"},
	{"حار", "بارد"},
	{"فرح", "حزن"},
}

// composerSets 拼词游戏的字母集
var composerSets = [][]string{
	{"ق", "ل", "م", "ا", "ر", "س"},
	{"ب", "ح", "ر", "ك", "ت", "ا"},
	{"ش", "م", "س", "د", "ر", "ن"},
	{"ج", "ب", "ل", "و", "ع", "د"},
}

// differenceImages 找不同的图片轮次
var differenceImages = []string{
	"https://img.whale-bot.app/diff/round1.png",
	"https://img.whale-bot.app/diff/round2.png",
	"https://img.whale-bot.app/diff/round3.png",
}

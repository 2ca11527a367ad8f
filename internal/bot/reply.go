package bot

// Event 归一化后的入站命令
type Event struct {
	Command string // 去除首尾空白的原始文本
	UserID  string
	RoomID  string
}

// Button 卡片上的动作按钮，点击后代发Label对应的Text
type Button struct {
	Label string
	Text  string
}

// Card 语义化卡片内容，渲染成具体消息格式由出站层负责
type Card struct {
	Title   string
	Lines   []string
	Buttons []Button
}

// Reply 一条待发送的回复：纯文本或卡片，二者取一
type Reply struct {
	Text string
	Card *Card
}

// TextReply 构造纯文本回复
func TextReply(text string) Reply {
	return Reply{Text: text}
}

// CardReply 构造卡片回复
func CardReply(card Card) Reply {
	return Reply{Card: &card}
}

package dispatch

import (
	"fmt"
	"html"
	"strings"
	"time"

	"finbot/internal/domain"
)

const (
	DigestHeader   = "📊 <b>金融市场价格更新</b>"
	ThinkingText   = "🤔 正在思考..."
	AIDisabledText = "AI功能未启用"
	AnswerPrefix   = "🤖 "
	apologyPrefix  = "抱歉，AI回答时出现错误: "
	modelHint      = "抱歉，AI模型配置错误。请检查配置中的模型名称。"

	StartText = "你好！我是金融价格机器人 + AI助手 🤖\n\n" +
		"功能：\n" +
		"1. 定时推送金融市场价格信息\n" +
		"2. 在群里@我或回复我的消息来提问，我会用AI回答你的问题\n\n" +
		"示例：@bot 今天金价怎么样？"

	HelpText = "📖 使用说明：\n\n" +
		"💰 自动推送价格信息\n" +
		"机器人会在每天固定时间自动推送金融市场价格\n\n" +
		"🤖 AI问答功能\n" +
		"- 在群里@机器人 + 问题\n" +
		"- 或者回复机器人的消息来提问\n\n" +
		"示例：\n" +
		"@bot 比特币是什么？\n" +
		"@bot 如何理财？"
)

// Formatter 组装各类消息正文（HTML）
type Formatter struct {
	loc *time.Location
}

func NewFormatter(loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.Local
	}
	return &Formatter{loc: loc}
}

// Digest 按品种顺序逐行拼接
func (f *Formatter) Digest(quotes []domain.FormattedQuote, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(DigestHeader)
	sb.WriteString("\n\n")
	for _, q := range quotes {
		sb.WriteString(html.EscapeString(q.Text))
		sb.WriteString("\n")
	}
	sb.WriteString("\n🕐 更新时间: ")
	sb.WriteString(now.In(f.loc).Format("2006-01-02 15:04:05"))
	return sb.String()
}

// FeedItem 一条推文一条消息
func (f *Formatter) FeedItem(user string, it domain.FeedItem) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🐦 <b>@%s</b>\n\n", html.EscapeString(user))
	sb.WriteString(html.EscapeString(strings.TrimSpace(it.Text)))
	if it.Permalink != "" {
		fmt.Fprintf(&sb, "\n\n🔗 <a href=\"%s\">原文链接</a>", html.EscapeString(it.Permalink))
	}
	if !it.PublishedAt.IsZero() {
		fmt.Fprintf(&sb, "\n🕐 %s", it.PublishedAt.In(f.loc).Format("2006-01-02 15:04"))
	}
	return sb.String()
}

// Calendar 最多 max 条，剩余的只给数量
func (f *Formatter) Calendar(events []domain.CalendarEvent, max int, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 <b>%s 财经日历</b>\n\n", now.In(f.loc).Format("2006年01月02日"))
	sb.WriteString("<b>今日重要事件：</b>\n\n")

	shown := events
	if max > 0 && len(shown) > max {
		shown = shown[:max]
	}
	for _, ev := range shown {
		sb.WriteString(strings.Repeat("⭐", ev.Stars))
		sb.WriteString(" ")
		sb.WriteString(html.EscapeString(eventLine(ev)))
		sb.WriteString("\n")
	}
	if rest := len(events) - len(shown); rest > 0 {
		fmt.Fprintf(&sb, "\n... 还有 %d 个其他事件", rest)
	}
	sb.WriteString("\n\n💡 <i>请关注重要数据发布时间</i>")
	return sb.String()
}

func eventLine(ev domain.CalendarEvent) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{ev.Time, ev.Country, ev.Name} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	line := strings.Join(parts, " ")
	if ev.Consensus != "" {
		line += fmt.Sprintf(" (预期: %s%s)", ev.Consensus, ev.Unit)
	}
	if ev.Previous != "" {
		line += fmt.Sprintf(" (前值: %s%s)", ev.Previous, ev.Unit)
	}
	return line
}

// Brief summary 为空时只列标题
func (f *Formatter) Brief(headlines []string, summary string, now time.Time) string {
	var body strings.Builder
	if summary != "" {
		body.WriteString("<b>市场要点</b>\n")
		body.WriteString(html.EscapeString(summary))
		body.WriteString("\n\n<b>重点资讯</b>\n")
		writeBullets(&body, headlines, 5)
	} else {
		writeBullets(&body, headlines, 8)
	}
	return fmt.Sprintf("📰 <b>财经市场简报</b>\n\n%s\n\n🕐 %s",
		strings.TrimRight(body.String(), "\n"), now.In(f.loc).Format("2006-01-02 15:04"))
}

func writeBullets(sb *strings.Builder, items []string, max int) {
	if len(items) > max {
		items = items[:max]
	}
	for _, it := range items {
		sb.WriteString("• ")
		sb.WriteString(html.EscapeString(it))
		sb.WriteString("\n")
	}
}

// Apology AI 失败时给用户看的文字
func Apology(err error) string {
	msg := err.Error()
	low := strings.ToLower(msg)
	if strings.Contains(msg, "404") || strings.Contains(low, "not found") {
		return modelHint
	}
	return apologyPrefix + msg
}

// StripMention 去掉所有 @bot（不区分大小写），其余文字原样保留
func StripMention(text, bot string) (string, bool) {
	if bot == "" {
		return strings.TrimSpace(text), false
	}
	tag := "@" + bot
	var sb strings.Builder
	found := false
	for i := 0; i < len(text); {
		if i+len(tag) <= len(text) && strings.EqualFold(text[i:i+len(tag)], tag) {
			found = true
			i += len(tag)
			continue
		}
		sb.WriteByte(text[i])
		i++
	}
	return strings.TrimSpace(sb.String()), found
}

package console

import (
	"bufio"
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"finbot/internal/application/port"
	"finbot/internal/domain"
)

// Gateway dry-run 网关：消息打印到终端，stdin 的每一行当作一条频道消息
type Gateway struct {
	mu     sync.Mutex
	out    io.Writer
	in     io.Reader
	chatID int64
	name   string
	nextID int
	now    func() time.Time
}

var (
	_ port.Gateway = (*Gateway)(nil)
	_ port.Inbound = (*Gateway)(nil)
)

func NewGateway(chatID int64) *Gateway {
	return NewGatewayIO(os.Stdout, os.Stdin, chatID)
}

func NewGatewayIO(out io.Writer, in io.Reader, chatID int64) *Gateway {
	return &Gateway{out: out, in: in, chatID: chatID, name: "finbot", now: time.Now}
}

func (g *Gateway) BotName() string { return g.name }

func (g *Gateway) Send(ctx context.Context, msg domain.OutMessage) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++

	text := msg.Text
	if msg.HTML {
		text = StripTags(text)
	}
	reply := ""
	if msg.ReplyTo != 0 {
		reply = fmt.Sprintf(" reply_to=%d", msg.ReplyTo)
	}
	// 打印一条消息，前后各留一个空行
	fmt.Fprint(g.out, "\n")
	fmt.Fprintf(g.out, "%s [#%d chat=%d%s]\n%s\n", g.now().Format("2006-01-02 15:04:05"), g.nextID, msg.ChatID, reply, text)
	fmt.Fprint(g.out, "\n")
	return g.nextID, nil
}

func (g *Gateway) Delete(ctx context.Context, chatID int64, messageID int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	fmt.Fprintf(g.out, "[deleted #%d]\n", messageID)
	return nil
}

// Updates 每行一条消息；以 / 开头的视为命令
func (g *Gateway) Updates(ctx context.Context) (<-chan domain.InboundMessage, error) {
	out := make(chan domain.InboundMessage)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(g.in)
		id := 0
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			id++
			msg := domain.InboundMessage{ChatID: g.chatID, MessageID: id, From: "console", Text: line}
			if strings.HasPrefix(line, "/") {
				cmd, _, _ := strings.Cut(line[1:], " ")
				cmd, _, _ = strings.Cut(cmd, "@")
				msg.Command = cmd
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			log.Warn().Err(err).Msg("console input closed")
		}
	}()
	return out, nil
}

// StripTags 去掉 HTML 标签并还原实体，用于终端输出
func StripTags(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return html.UnescapeString(s)
	}
	return doc.Text()
}

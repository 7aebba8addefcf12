package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"finbot/internal/application/port"
	"finbot/internal/domain"
)

// Gateway Telegram Bot API，同时实现 port.Gateway 和 port.Inbound
type Gateway struct {
	bot         *tgbotapi.BotAPI
	pollTimeout int
}

var (
	_ port.Gateway = (*Gateway)(nil)
	_ port.Inbound = (*Gateway)(nil)
)

type Options struct {
	Token       string
	APIEndpoint string // 形如 https://api.telegram.org/bot%s/%s
	PollTimeout int    // 秒
	HTTPClient  *http.Client
}

// New 会调用一次 getMe 校验 token
func New(opts Options) (*Gateway, error) {
	endpoint := opts.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	client := opts.HTTPClient
	if client == nil {
		// 长轮询需要比 poll timeout 更长的超时
		client = &http.Client{Timeout: time.Duration(opts.PollTimeout+15) * time.Second}
	}
	bot, err := tgbotapi.NewBotAPIWithClient(opts.Token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram getMe: %w", classify(err))
	}
	pt := opts.PollTimeout
	if pt <= 0 {
		pt = 60
	}
	log.Info().Str("bot", bot.Self.UserName).Int64("bot_id", bot.Self.ID).Msg("telegram bot authorized")
	return &Gateway{bot: bot, pollTimeout: pt}, nil
}

func (g *Gateway) BotName() string { return g.bot.Self.UserName }

func (g *Gateway) Send(ctx context.Context, msg domain.OutMessage) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m := tgbotapi.NewMessage(msg.ChatID, msg.Text)
	if msg.HTML {
		m.ParseMode = tgbotapi.ModeHTML
	}
	m.DisableWebPagePreview = msg.DisablePreview
	if msg.ReplyTo != 0 {
		m.ReplyToMessageID = msg.ReplyTo
	}

	sent, err := g.bot.Send(m)
	if err != nil {
		return 0, fmt.Errorf("telegram send: %w", classify(err))
	}
	return sent.MessageID, nil
}

func (g *Gateway) Delete(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := g.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("telegram delete: %w", classify(err))
	}
	return nil
}

// Updates 长轮询；ctx 取消后停止并关闭 channel
func (g *Gateway) Updates(ctx context.Context) (<-chan domain.InboundMessage, error) {
	// 丢弃离线期间积压的消息
	if _, err := g.bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		return nil, fmt.Errorf("telegram delete webhook: %w", classify(err))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = g.pollTimeout
	updates := g.bot.GetUpdatesChan(u)

	out := make(chan domain.InboundMessage, 16)
	go func() {
		defer close(out)
		defer g.bot.StopReceivingUpdates()
		for {
			select {
			case <-ctx.Done():
				return
			case upd, ok := <-updates:
				if !ok {
					return
				}
				in, ok := g.convert(upd)
				if !ok {
					continue
				}
				select {
				case out <- in:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (g *Gateway) convert(upd tgbotapi.Update) (domain.InboundMessage, bool) {
	m := upd.Message
	if m == nil || m.Chat == nil || strings.TrimSpace(m.Text) == "" {
		return domain.InboundMessage{}, false
	}
	in := domain.InboundMessage{
		ChatID:    m.Chat.ID,
		MessageID: m.MessageID,
		Text:      m.Text,
	}
	if m.From != nil {
		in.From = m.From.UserName
		if in.From == "" {
			in.From = m.From.FirstName
		}
	}
	if m.IsCommand() {
		in.Command = m.Command()
	}
	if r := m.ReplyToMessage; r != nil && r.From != nil && r.From.ID == g.bot.Self.ID {
		in.ReplyToBot = true
	}
	return in, true
}

// classify 4xx（429 除外）视为永久失败
func classify(err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != http.StatusTooManyRequests {
			return fmt.Errorf("%w: %d %s", port.ErrPermanent, apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("telegram api %d: %s", apiErr.Code, apiErr.Message)
	}
	return err
}

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"finbot/internal/application/port"
	"finbot/internal/application/service"
	"finbot/internal/domain"
)

const (
	briefMinSummaryRunes = 40
	briefMaxForAI        = 6
)

var (
	errNoCalendar = errors.New("calendar source returned no events")
	errNoNews     = errors.New("news source returned no headlines")
)

// SendPriceUpdate 并发解析所有品种，按配置顺序拼成一条消息
func (s *Service) SendPriceUpdate(ctx context.Context) error {
	start := s.now()
	quotes := s.deps.Resolver.ResolveAll(ctx, s.deps.Instruments)

	avail := 0
	for _, q := range quotes {
		if q.Available {
			avail++
		}
	}
	text := s.fmt.Digest(quotes, s.now())
	if _, err := s.send(ctx, domain.DispatchDigest, domain.OutMessage{Text: text, HTML: true}); err != nil {
		return fmt.Errorf("send price update: %w", err)
	}
	log.Info().
		Int("instruments", len(quotes)).
		Int("available", avail).
		Dur("took", s.now().Sub(start)).
		Msg("price update sent")
	return nil
}

// CheckFeed 每条新内容单独发送，最旧的在前。
// 发送成功或永久失败都标记已读；临时失败停止本轮，留给下一次轮询。
func (s *Service) CheckFeed(ctx context.Context) error {
	if s.deps.Feed == nil {
		return nil
	}
	if !s.feedMu.TryLock() {
		log.Warn().Str("feed", s.deps.Feed.Name()).Msg("previous poll still running, skip")
		return nil
	}
	defer s.feedMu.Unlock()

	items, err := s.deps.Feed.PollAndFilter(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		log.Debug().Str("feed", s.deps.Feed.Name()).Msg("no new feed items")
		return nil
	}

	sent := 0
	for _, it := range items {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		_, err := s.send(ctx, domain.DispatchFeed, domain.OutMessage{
			Text: s.fmt.FeedItem(s.deps.FeedUser, it),
			HTML: true,
		})
		if err != nil {
			if !errors.Is(err, port.ErrPermanent) {
				return fmt.Errorf("send feed item %s: %w", it.ID, err)
			}
			log.Error().Err(err).Str("item", it.ID).Msg("feed item rejected, marking seen")
		} else {
			sent++
		}
		if err := s.deps.Feed.MarkSeen(ctx, it.ID); err != nil {
			log.Error().Err(err).Str("item", it.ID).Msg("persist seen id failed")
		}
	}
	log.Info().Str("feed", s.deps.Feed.Name()).Int("new", len(items)).Int("sent", sent).Msg("feed checked")
	return nil
}

// Answer 原样转发问题；失败时返回给用户看的提示，不返回错误
func (s *Service) Answer(ctx context.Context, question string) string {
	if s.deps.Completer == nil {
		return AIDisabledText
	}
	actx, cancel := context.WithTimeout(ctx, s.deps.AITimeout)
	defer cancel()

	ans, err := s.deps.Completer.Complete(actx, question, s.deps.AIOptions)
	if err != nil {
		log.Error().Err(err).Str("ai", s.deps.Completer.Name()).Msg("ai answer failed")
		return Apology(err)
	}
	return strings.TrimSpace(ans)
}

// HandleInbound 只处理配置的频道：/start /help，@机器人 或回复机器人
func (s *Service) HandleInbound(ctx context.Context, m domain.InboundMessage) {
	if m.ChatID != s.deps.ChatID {
		log.Debug().Int64("chat_id", m.ChatID).Msg("message from other chat, skip")
		return
	}

	switch m.Command {
	case "":
	case "start":
		s.reply(ctx, m, StartText)
		return
	case "help":
		s.reply(ctx, m, HelpText)
		return
	default:
		return
	}

	bot := ""
	if s.deps.Inbound != nil {
		bot = s.deps.Inbound.BotName()
	}
	question, mentioned := StripMention(m.Text, bot)
	if !mentioned && !m.ReplyToBot {
		return
	}
	if question == "" {
		return
	}
	log.Info().Str("from", m.From).Int("message_id", m.MessageID).Msg("question received")

	thinking, err := s.deps.Gateway.Send(ctx, domain.OutMessage{
		ChatID:  m.ChatID,
		Text:    ThinkingText,
		ReplyTo: m.MessageID,
	})
	if err != nil {
		log.Warn().Err(err).Msg("send thinking placeholder failed")
	}

	answer := s.Answer(ctx, question)

	if thinking != 0 {
		if err := s.deps.Gateway.Delete(ctx, m.ChatID, thinking); err != nil {
			log.Warn().Err(err).Int("message_id", thinking).Msg("delete thinking placeholder failed")
		}
	}
	s.reply(ctx, m, AnswerPrefix+answer)
}

func (s *Service) reply(ctx context.Context, m domain.InboundMessage, text string) {
	if _, err := s.send(ctx, domain.DispatchAnswer, domain.OutMessage{
		ChatID:  m.ChatID,
		Text:    text,
		ReplyTo: m.MessageID,
	}); err != nil {
		log.Error().Err(err).Int("message_id", m.MessageID).Msg("reply failed")
	}
}

// SendCalendar 今日财经日历；所有源都没有数据时不发送
func (s *Service) SendCalendar(ctx context.Context) error {
	now := s.now()
	if s.deps.Location != nil {
		now = now.In(s.deps.Location)
	}
	opts := service.FallbackOptions[port.CalendarSource]{
		Kind: "calendar",
		Name: func(c port.CalendarSource) string { return c.Name() },
	}
	events, _, err := service.FirstOK(ctx, s.deps.Calendars, opts, func(ctx context.Context, c port.CalendarSource) ([]domain.CalendarEvent, error) {
		evs, err := c.Events(ctx, now)
		if err != nil {
			return nil, err
		}
		if len(evs) == 0 {
			return nil, errNoCalendar
		}
		return evs, nil
	})
	if err != nil {
		log.Warn().Err(err).Msg("no calendar data, skip")
		return nil
	}

	text := s.fmt.Calendar(events, s.deps.MaxEvents, now)
	if _, err := s.send(ctx, domain.DispatchCalendar, domain.OutMessage{Text: text, HTML: true}); err != nil {
		return fmt.Errorf("send calendar: %w", err)
	}
	log.Info().Int("events", len(events)).Msg("calendar sent")
	return nil
}

// SendNewsBrief 新闻标题列表，可选 AI 总结
func (s *Service) SendNewsBrief(ctx context.Context) error {
	opts := service.FallbackOptions[port.NewsSource]{
		Kind: "news",
		Name: func(n port.NewsSource) string { return n.Name() },
	}
	headlines, _, err := service.FirstOK(ctx, s.deps.News, opts, func(ctx context.Context, n port.NewsSource) ([]string, error) {
		hs, err := n.Headlines(ctx)
		if err != nil {
			return nil, err
		}
		if len(hs) == 0 {
			return nil, errNoNews
		}
		return hs, nil
	})
	if err != nil {
		log.Warn().Err(err).Msg("no news headlines, skip")
		return nil
	}
	headlines = uniq(headlines)

	summary := ""
	if s.deps.BriefSummary && s.deps.Completer != nil && len(headlines) >= 3 {
		summary = s.summarize(ctx, headlines)
	}

	text := s.fmt.Brief(headlines, summary, s.now())
	if _, err := s.send(ctx, domain.DispatchBrief, domain.OutMessage{Text: text, HTML: true}); err != nil {
		return fmt.Errorf("send news brief: %w", err)
	}
	log.Info().Int("headlines", len(headlines)).Bool("summary", summary != "").Msg("news brief sent")
	return nil
}

func (s *Service) summarize(ctx context.Context, headlines []string) string {
	top := headlines
	if len(top) > briefMaxForAI {
		top = top[:briefMaxForAI]
	}
	prompt := "请用100字以内总结以下财经要闻的核心信息：\n\n" +
		strings.Join(top, "\n") +
		"\n\n要求：1行话简洁 2客观中立 3突出市场动态"

	actx, cancel := context.WithTimeout(ctx, s.deps.AITimeout)
	defer cancel()
	out, err := s.deps.Completer.Complete(actx, prompt, port.CompletionOptions{MaxTokens: 400, Temperature: 0.5})
	if err != nil {
		log.Warn().Err(err).Msg("brief summary failed, falling back to list")
		return ""
	}
	out = strings.TrimSpace(out)
	if utf8.RuneCountInString(out) < briefMinSummaryRunes {
		return ""
	}
	return out
}

func uniq(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

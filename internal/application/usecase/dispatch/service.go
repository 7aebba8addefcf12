package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"finbot/internal/application/port"
	"finbot/internal/application/service"
	"finbot/internal/domain"
)

// QuoteResolver 见 resolver.Resolver
type QuoteResolver interface {
	ResolveAll(ctx context.Context, insts []domain.Instrument) []domain.FormattedQuote
}

// FeedPoller 见 feed.Deduplicator
type FeedPoller interface {
	Name() string
	PollAndFilter(ctx context.Context) ([]domain.FeedItem, error)
	MarkSeen(ctx context.Context, id string) error
}

// Schedule 空串表示不注册
type Schedule struct {
	PriceUpdate []string
	Calendar    string
	NewsBrief   string
	FeedCheck   string
}

type ServiceDeps struct {
	ChatID      int64
	Instruments []domain.Instrument
	Resolver    QuoteResolver

	Feed      FeedPoller // nil 表示不转发
	FeedUser  string
	SendDelay time.Duration

	Gateway port.Gateway
	Inbound port.Inbound // nil 表示不接收消息

	Completer port.Completer // nil 表示 AI 未启用
	AIOptions port.CompletionOptions
	AITimeout time.Duration

	Calendars    []port.CalendarSource
	News         []port.NewsSource
	BriefSummary bool
	MaxEvents    int

	Journal     *service.JournalService
	Scheduler   port.Scheduler
	Schedule    Schedule
	SendOnStart bool

	Location *time.Location
	Now      func() time.Time
}

type Service struct {
	deps    ServiceDeps
	fmt     *Formatter
	limiter *rate.Limiter
	now     func() time.Time

	// 同一 feed 只允许一个 poller
	feedMu sync.Mutex
}

func NewService(deps ServiceDeps) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Journal == nil {
		deps.Journal = service.NewJournalService(nil, deps.Now)
	}
	if deps.AITimeout <= 0 {
		deps.AITimeout = 60 * time.Second
	}
	if deps.MaxEvents <= 0 {
		deps.MaxEvents = 12
	}
	limit := rate.Inf
	if deps.SendDelay > 0 {
		limit = rate.Every(deps.SendDelay)
	}
	return &Service{
		deps:    deps,
		fmt:     NewFormatter(deps.Location),
		limiter: rate.NewLimiter(limit, 1),
		now:     deps.Now,
	}
}

// Run 注册定时任务并处理收到的消息，直到 ctx 结束
func (s *Service) Run(ctx context.Context) error {
	if s.deps.Gateway == nil {
		return errors.New("no gateway")
	}
	if s.deps.Scheduler == nil {
		return errors.New("no scheduler")
	}

	if err := s.register(ctx); err != nil {
		return err
	}
	s.deps.Scheduler.Start()
	defer s.deps.Scheduler.Stop()

	if s.deps.SendOnStart {
		go func() {
			if err := s.SendPriceUpdate(ctx); err != nil {
				log.Error().Err(err).Msg("startup price update failed")
			}
		}()
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	var updates <-chan domain.InboundMessage
	if s.deps.Inbound != nil {
		ch, err := s.deps.Inbound.Updates(ctx)
		if err != nil {
			log.Error().Err(err).Msg("inbound disabled: updates failed")
		} else {
			updates = ch
			log.Info().Str("bot", s.deps.Inbound.BotName()).Msg("listening for messages")
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case m, ok := <-updates:
			if !ok {
				// 输入结束后只保留定时任务
				updates = nil
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.HandleInbound(ctx, m)
			}()
		}
	}
}

func (s *Service) register(ctx context.Context) error {
	sch := s.deps.Scheduler
	logErr := func(name string, f func(context.Context) error) func(context.Context) {
		return func(ctx context.Context) {
			if err := f(ctx); err != nil {
				log.Error().Err(err).Str("job", name).Msg("job failed")
			}
		}
	}

	for _, spec := range s.deps.Schedule.PriceUpdate {
		if spec == "" {
			continue
		}
		if err := sch.Add(ctx, "price_update", spec, logErr("price_update", s.SendPriceUpdate), false); err != nil {
			return err
		}
	}
	if spec := s.deps.Schedule.FeedCheck; spec != "" && s.deps.Feed != nil {
		if err := sch.Add(ctx, "feed_check", spec, logErr("feed_check", s.CheckFeed), true); err != nil {
			return err
		}
	}
	if spec := s.deps.Schedule.Calendar; spec != "" && len(s.deps.Calendars) > 0 {
		if err := sch.Add(ctx, "calendar", spec, logErr("calendar", s.SendCalendar), true); err != nil {
			return err
		}
	}
	if spec := s.deps.Schedule.NewsBrief; spec != "" && len(s.deps.News) > 0 {
		if err := sch.Add(ctx, "news_brief", spec, logErr("news_brief", s.SendNewsBrief), true); err != nil {
			return err
		}
	}
	return nil
}

// send 发送并写 journal
func (s *Service) send(ctx context.Context, kind domain.DispatchKind, msg domain.OutMessage) (int, error) {
	if msg.ChatID == 0 {
		msg.ChatID = s.deps.ChatID
	}
	id, err := s.deps.Gateway.Send(ctx, msg)
	s.deps.Journal.Record(ctx, kind, msg.Text, err)
	return id, err
}

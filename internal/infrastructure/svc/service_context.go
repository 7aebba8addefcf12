package svc

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	appcontainer "finbot/internal/application/container"
	"finbot/internal/application/port"
	"finbot/internal/application/usecase/dispatch"
	"finbot/internal/application/usecase/feed"
	"finbot/internal/application/usecase/resolver"
	"finbot/internal/domain"
	domainservice "finbot/internal/domain/service"
	"finbot/internal/infrastructure/ai/claude"
	"finbot/internal/infrastructure/ai/gemini"
	"finbot/internal/infrastructure/config"
	infracontainer "finbot/internal/infrastructure/container"
	"finbot/internal/infrastructure/feedsource"
	"finbot/internal/infrastructure/gateway/telegram"
	"finbot/internal/infrastructure/httpx"
	"finbot/internal/infrastructure/market"
	"finbot/internal/infrastructure/quote"
	"finbot/internal/infrastructure/scheduler"
	"finbot/internal/interfaces/console"
)

type ServiceContext struct {
	Ctx    context.Context
	Config *config.Config

	// 基础设施层（第一层初始化）
	infra      *infracontainer.Container
	app        *appcontainer.Container
	httpClient *httpx.Client
	registry   *quote.Registry

	// 业务组件
	Instruments []domain.Instrument
	Resolver    *resolver.Resolver
	Feed        *feed.Deduplicator // 未启用时为 nil
	Completer   port.Completer     // 未启用时为 nil
	Calendars   []port.CalendarSource
	News        []port.NewsSource
	Scheduler   *scheduler.Scheduler

	// 输出端口
	Gateway port.Gateway
	Inbound port.Inbound

	// 资源管理
	closerChain []func() error
}

type Option func(*options)

type options struct {
	gateway   port.Gateway
	inbound   port.Inbound
	skipGW    bool
	completer port.Completer
}

// WithGateway 替换消息出口，inbound 可以为 nil
func WithGateway(g port.Gateway, in port.Inbound) Option {
	return func(o *options) { o.gateway, o.inbound = g, in }
}

// WithoutGateway 不连接 telegram，用于只读命令
func WithoutGateway() Option {
	return func(o *options) { o.skipGW = true }
}

// WithCompleter 测试用
func WithCompleter(c port.Completer) Option {
	return func(o *options) { o.completer = c }
}

// New 创建并初始化 ServiceContext
// 这是应用启动的唯一入口点，所有依赖初始化都在这里完成
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*ServiceContext, error) {
	var o options
	for _, fn := range opts {
		fn(&o)
	}

	sc := &ServiceContext{
		Ctx:         ctx,
		Config:      cfg,
		closerChain: make([]func() error, 0),
	}

	// 初始化所有组件，按依赖顺序
	if err := sc.initializeComponents(o); err != nil {
		// 清理已初始化的资源
		_ = sc.Close()
		return nil, err
	}
	return sc, nil
}

// initializeComponents 按照依赖关系有序初始化，确保不会有循环依赖
func (sc *ServiceContext) initializeComponents(o options) error {
	// 0. 存储层
	infra, err := infracontainer.New(sc.Ctx, sc.Config)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInitFailed, err)
	}
	sc.infra = infra
	sc.closerChain = append(sc.closerChain, infra.Close)
	sc.app = appcontainer.New(infra.Repository())

	// 1. 传输
	sc.httpClient = httpx.New(sc.Config.HTTPTimeout(), httpx.WithUserAgent(sc.Config.HTTP.UserAgent))
	sc.registry = quote.DefaultRegistry()

	// 2. 行情
	if err := sc.initQuotes(); err != nil {
		return err
	}

	// 3. feed
	if sc.Config.Feed.Enabled {
		if err := sc.initFeed(); err != nil {
			return err
		}
	}

	// 4. 日历和新闻
	sc.initMarket()

	// 5. AI
	sc.Completer = o.completer
	if sc.Completer == nil && sc.Config.AI.Enabled {
		if err := sc.initCompleter(); err != nil {
			return fmt.Errorf("ai initialization failed: %w", err)
		}
	}

	// 6. 出口
	switch {
	case o.gateway != nil:
		sc.Gateway, sc.Inbound = o.gateway, o.inbound
	case o.skipGW:
	case sc.Config.App.DryRun:
		g := console.NewGateway(sc.Config.Telegram.ChatID)
		sc.Gateway, sc.Inbound = g, g
	default:
		g, err := telegram.New(telegram.Options{
			Token:       sc.Config.Telegram.Token,
			APIEndpoint: sc.Config.Telegram.APIEndpoint,
			PollTimeout: sc.Config.Telegram.PollTimeout,
		})
		if err != nil {
			return fmt.Errorf("telegram initialization failed: %w", err)
		}
		sc.Gateway, sc.Inbound = g, g
	}

	sc.Scheduler = scheduler.New(sc.Config.Location())

	log.Info().
		Int("instruments", len(sc.Instruments)).
		Bool("feed", sc.Feed != nil).
		Bool("ai", sc.Completer != nil).
		Int("calendars", len(sc.Calendars)).
		Int("news", len(sc.News)).
		Bool("dry_run", sc.Config.App.DryRun).
		Msg("✓ All components initialized")
	return nil
}

func (sc *ServiceContext) initQuotes() error {
	insts, err := sc.Config.BuildInstruments()
	if err != nil {
		return err
	}
	if len(insts) == 0 {
		return ErrNoInstruments
	}
	for _, in := range insts {
		for _, s := range in.Sources {
			if _, ok := sc.registry.Parser(s.Shape); !ok {
				return fmt.Errorf("instrument %s source %s: unknown shape %q", in.Key, s.Name, s.Shape)
			}
		}
	}
	sc.Instruments = insts

	mux := &quote.Mux{HTTP: quote.NewHTTPSource(sc.httpClient), WS: quote.NewWSSource()}
	norm := domainservice.NewNormalizer(sc.Config.Location(), nil)
	sc.Resolver = resolver.New(mux, sc.registry, norm).WithDefaultTimeout(sc.Config.HTTPTimeout())
	return nil
}

func (sc *ServiceContext) initFeed() error {
	fc := sc.Config.Feed
	sources := make([]port.FeedSource, 0, len(fc.Mirrors))
	for _, m := range fc.Mirrors {
		src, err := feedsource.New(m.Kind, m.URL, fc.Username, sc.httpClient)
		if err != nil {
			log.Warn().Err(err).Str("kind", m.Kind).Str("url", m.URL).Msg("skip mirror")
			continue
		}
		sources = append(sources, src)
	}
	if len(sources) == 0 {
		return ErrNoMirrors
	}
	sc.Feed = sc.app.Feed(fc.Name, fc.SeenLimit, sources).
		WithMirrorTimeout(time.Duration(fc.MirrorTimeoutSec) * time.Second)
	return nil
}

func (sc *ServiceContext) initMarket() {
	mc := sc.Config.Market
	sc.Calendars = []port.CalendarSource{
		market.NewJin10Calendar(mc.Jin10CalendarURL, sc.httpClient),
		market.NewInvestingCalendar(mc.InvestingCalendarURL, sc.httpClient),
	}
	sc.News = []port.NewsSource{
		market.NewJin10Flash(mc.Jin10FlashURL, sc.httpClient),
		market.NewEastmoneyNews(mc.EastmoneyNewsURL, sc.httpClient),
	}
}

func (sc *ServiceContext) initCompleter() error {
	ac := sc.Config.AI
	switch ac.Provider {
	case "anthropic":
		c, err := claude.New(claude.Options{APIKey: ac.APIKey, Model: ac.Model})
		if err != nil {
			return err
		}
		sc.Completer = c
	default:
		c, err := gemini.New(sc.Ctx, gemini.Options{
			APIKey: ac.APIKey,
			Model:  ac.Model,
			HTTP:   &http.Client{Timeout: time.Duration(ac.TimeoutSec) * time.Second},
		})
		if err != nil {
			return err
		}
		sc.Completer = c
	}
	log.Info().Str("model", sc.Completer.Name()).Msg("ai completer ready")
	return nil
}

// Repository 合成后的仓储
func (sc *ServiceContext) Repository() port.Repository {
	return sc.infra.Repository()
}

// DispatchDeps 组装调度循环的依赖
func (sc *ServiceContext) DispatchDeps() dispatch.ServiceDeps {
	cfg := sc.Config
	sched := dispatch.Schedule{
		Calendar:  enabled(cfg.Schedule.Calendar),
		NewsBrief: enabled(cfg.Schedule.NewsBrief),
		FeedCheck: enabled(cfg.Schedule.FeedCheck),
	}
	for _, s := range cfg.Schedule.PriceUpdate {
		if s = enabled(s); s != "" {
			sched.PriceUpdate = append(sched.PriceUpdate, s)
		}
	}

	deps := dispatch.ServiceDeps{
		ChatID:      cfg.Telegram.ChatID,
		Instruments: sc.Instruments,
		Resolver:    sc.Resolver,
		FeedUser:    cfg.Feed.Username,
		SendDelay:   time.Duration(cfg.Feed.SendDelayMs) * time.Millisecond,
		Gateway:     sc.Gateway,
		Inbound:     sc.Inbound,
		Completer:   sc.Completer,
		AIOptions: port.CompletionOptions{
			MaxTokens:   cfg.AI.MaxTokens,
			Temperature: cfg.AI.Temperature,
		},
		AITimeout:    time.Duration(cfg.AI.TimeoutSec) * time.Second,
		Calendars:    sc.Calendars,
		News:         sc.News,
		BriefSummary: cfg.Market.BriefSummary,
		MaxEvents:    cfg.Market.MaxEvents,
		Journal:      sc.app.JournalService(),
		Scheduler:    sc.Scheduler,
		Schedule:     sched,
		SendOnStart:  cfg.App.SendOnStart,
		Location:     cfg.Location(),
	}
	// 接口里放 nil 指针会让 nil 判断失效
	if sc.Feed != nil {
		deps.Feed = sc.Feed
	}
	return deps
}

// DispatchService 构建调度服务
func (sc *ServiceContext) DispatchService() *dispatch.Service {
	return dispatch.NewService(sc.DispatchDeps())
}

func enabled(spec string) string {
	if config.Off(spec) {
		return ""
	}
	return spec
}

// Close 关闭所有资源（按后进先出顺序）
func (sc *ServiceContext) Close() error {
	var err error
	for i := len(sc.closerChain) - 1; i >= 0; i-- {
		if e := sc.closerChain[i](); e != nil {
			log.Error().Err(e).Msg("error closing resource")
			if err == nil {
				err = e
			}
		}
	}
	sc.closerChain = nil
	log.Info().Msg("service context closed")
	return err
}

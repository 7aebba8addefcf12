package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

type Config struct {
	App      AppConfig      `toml:"app"`
	Telegram TelegramConfig `toml:"telegram"`
	Schedule ScheduleConfig `toml:"schedule"`
	HTTP     HTTPConfig     `toml:"http"`
	AI       AIConfig       `toml:"ai"`
	Feed     FeedConfig     `toml:"feed"`
	Market   MarketConfig   `toml:"market"`
	Storage  StorageConfig  `toml:"storage"`

	// 为空时使用内置的 DefaultInstruments
	Instruments []InstrumentConfig `toml:"instruments" validate:"dive"`
}

type AppConfig struct {
	LogLevel    string `toml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
	Timezone    string `toml:"timezone"`
	SendOnStart bool   `toml:"send_on_start"`
	// dry_run 时消息只打印到控制台，不需要 telegram token
	DryRun bool `toml:"dry_run"`
}

type TelegramConfig struct {
	Token       string `toml:"token"`
	ChatID      int64  `toml:"chat_id"`
	APIEndpoint string `toml:"api_endpoint"`
	PollTimeout int    `toml:"poll_timeout_sec" validate:"gte=0,lte=120"`
}

// ScheduleConfig 标准 5 段 cron 表达式或 @every 描述符，"off" 表示关闭
// news_brief 默认关闭
type ScheduleConfig struct {
	PriceUpdate []string `toml:"price_update"`
	Calendar    string   `toml:"calendar"`
	NewsBrief   string   `toml:"news_brief"`
	FeedCheck   string   `toml:"feed_check"`
}

type HTTPConfig struct {
	UserAgent  string `toml:"user_agent"`
	TimeoutSec int    `toml:"timeout_sec" validate:"gte=0"`
}

type AIConfig struct {
	Enabled     bool    `toml:"enabled"`
	Provider    string  `toml:"provider" validate:"omitempty,oneof=gemini anthropic"`
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens" validate:"gte=0"`
	Temperature float64 `toml:"temperature" validate:"gte=0,lte=2"`
	TimeoutSec  int     `toml:"timeout_sec" validate:"gte=0"`
}

type FeedConfig struct {
	Enabled          bool           `toml:"enabled"`
	Name             string         `toml:"name"`
	Username         string         `toml:"username"`
	SeenLimit        int            `toml:"seen_limit" validate:"gte=0"`
	SendDelayMs      int            `toml:"send_delay_ms" validate:"gte=0"`
	MirrorTimeoutSec int            `toml:"mirror_timeout_sec" validate:"gte=0"`
	Mirrors          []MirrorConfig `toml:"mirrors" validate:"dive"`
}

type MirrorConfig struct {
	Kind string `toml:"kind" validate:"required,oneof=nitter-html nitter-rss rss-bridge syndication"`
	URL  string `toml:"url" validate:"required,url"`
}

// MarketConfig 财经日历与新闻简报的数据源
type MarketConfig struct {
	Jin10CalendarURL     string `toml:"jin10_calendar_url"`
	InvestingCalendarURL string `toml:"investing_calendar_url"`
	Jin10FlashURL        string `toml:"jin10_flash_url"`
	EastmoneyNewsURL     string `toml:"eastmoney_news_url"`
	MaxEvents            int    `toml:"max_events" validate:"gte=0"`
	// 简报是否先交给 AI 总结
	BriefSummary bool `toml:"brief_summary"`
}

type StorageConfig struct {
	SQLite struct {
		Enabled bool   `toml:"enabled"`
		Path    string `toml:"path"`
	} `toml:"sqlite"`

	Redis struct {
		Enabled         bool   `toml:"enabled"`
		Addr            string `toml:"addr"`
		Password        string `toml:"password"`
		DB              int    `toml:"db"`
		Prefix          string `toml:"prefix"`
		TTLHours        int    `toml:"ttl_hours"`
		DispatchStream  string `toml:"dispatch_stream"`
		DispatchChannel string `toml:"dispatch_channel"`
	} `toml:"redis"`

	Postgres struct {
		Enabled bool   `toml:"enabled"`
		DSN     string `toml:"dsn"`
	} `toml:"postgres"`

	Badger struct {
		Enabled bool   `toml:"enabled"`
		Path    string `toml:"path"`
	} `toml:"badger"`
}

type InstrumentConfig struct {
	Key             string         `toml:"key" validate:"required"`
	Label           string         `toml:"label" validate:"required"`
	Glyph           string         `toml:"glyph"`
	Prefix          string         `toml:"prefix"`
	Unit            string         `toml:"unit"`
	Decimals        *int           `toml:"decimals" validate:"omitempty,gte=0,lte=8"`
	Thousands       bool           `toml:"thousands"`
	ShowAbsChange   bool           `toml:"show_abs_change"`
	Session         string         `toml:"session" validate:"omitempty,oneof=none weekend full"`
	Timezone        string         `toml:"timezone"`
	Hours           []string       `toml:"hours"`
	ClosedShowsPrev bool           `toml:"closed_shows_prev"`
	Placeholder     string         `toml:"placeholder"`
	Sources         []SourceConfig `toml:"sources" validate:"required,min=1,dive"`
}

type SourceConfig struct {
	Name       string            `toml:"name"`
	Transport  string            `toml:"transport" validate:"omitempty,oneof=http ws"`
	URL        string            `toml:"url" validate:"required,url"`
	Params     map[string]string `toml:"params"`
	Headers    map[string]string `toml:"headers"`
	Subscribe  string            `toml:"subscribe"`
	Shape      string            `toml:"shape" validate:"required"`
	TimeoutSec int               `toml:"timeout_sec" validate:"gte=0"`
}

// 敏感配置可以走环境变量
const (
	EnvTelegramToken   = "FINBOT_TELEGRAM_TOKEN"
	EnvTelegramChatID  = "FINBOT_TELEGRAM_CHAT_ID"
	EnvGeminiAPIKey    = "FINBOT_GEMINI_API_KEY"
	EnvAnthropicAPIKey = "FINBOT_ANTHROPIC_API_KEY"
)

// Load 读取 toml，环境变量覆盖敏感项，mods 在校验前执行（命令行覆盖用）
func Load(path string, mods ...func(*Config)) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	if err := applyEnv(&cfg, os.Getenv); err != nil {
		return nil, err
	}
	for _, m := range mods {
		m(&cfg)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Parse 从字符串加载，测试和 check-config 用
func Parse(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvTelegramToken)); v != "" {
		cfg.Telegram.Token = v
	}
	if v := strings.TrimSpace(getenv(EnvTelegramChatID)); v != "" {
		var id int64
		if _, err := fmt.Sscan(v, &id); err != nil {
			return fmt.Errorf("%s: %w", EnvTelegramChatID, err)
		}
		cfg.Telegram.ChatID = id
	}
	if cfg.AI.APIKey == "" {
		switch cfg.AI.Provider {
		case "anthropic":
			cfg.AI.APIKey = strings.TrimSpace(getenv(EnvAnthropicAPIKey))
		default:
			cfg.AI.APIKey = strings.TrimSpace(getenv(EnvGeminiAPIKey))
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	if cfg.App.Timezone == "" {
		cfg.App.Timezone = "Asia/Shanghai"
	}
	if cfg.Telegram.PollTimeout <= 0 {
		cfg.Telegram.PollTimeout = 60
	}

	if cfg.Schedule.PriceUpdate == nil {
		cfg.Schedule.PriceUpdate = []string{
			"30 7 * * *",
			"30 11 * * *",
			"0 15 * * *",
			"40 17 * * *",
			"0 20 * * *",
			"0 21 * * *",
			"0 22 * * *",
		}
	}
	if cfg.Schedule.Calendar == "" {
		cfg.Schedule.Calendar = "0 7 * * *"
	}
	if cfg.Schedule.FeedCheck == "" {
		cfg.Schedule.FeedCheck = "@every 5m"
	}

	if cfg.HTTP.TimeoutSec <= 0 {
		cfg.HTTP.TimeoutSec = 15
	}
	if cfg.HTTP.UserAgent == "" {
		cfg.HTTP.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	}

	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "gemini"
	}
	if cfg.AI.Model == "" {
		switch cfg.AI.Provider {
		case "anthropic":
			cfg.AI.Model = "claude-sonnet-4-5"
		default:
			cfg.AI.Model = "gemini-2.5-flash"
		}
	}
	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = 500
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = 0.7
	}
	if cfg.AI.TimeoutSec <= 0 {
		cfg.AI.TimeoutSec = 60
	}

	if cfg.Feed.Name == "" {
		cfg.Feed.Name = "twitter"
	}
	if cfg.Feed.SeenLimit <= 0 {
		cfg.Feed.SeenLimit = 100
	}
	if cfg.Feed.SendDelayMs <= 0 {
		cfg.Feed.SendDelayMs = 2000
	}
	if cfg.Feed.MirrorTimeoutSec <= 0 {
		cfg.Feed.MirrorTimeoutSec = 20
	}
	if len(cfg.Feed.Mirrors) == 0 {
		cfg.Feed.Mirrors = []MirrorConfig{
			{Kind: "nitter-html", URL: "https://nitter.net"},
			{Kind: "nitter-rss", URL: "https://nitter.poast.org"},
			{Kind: "rss-bridge", URL: "https://rss-bridge.org/bridge01/"},
			{Kind: "syndication", URL: "https://cdn.syndication.twimg.com"},
		}
	}

	if cfg.Market.MaxEvents <= 0 {
		cfg.Market.MaxEvents = 12
	}

	if cfg.Storage.SQLite.Enabled && cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = "data/finbot.db"
	}
	if cfg.Storage.Redis.Prefix == "" {
		cfg.Storage.Redis.Prefix = "finbot"
	}
	if cfg.Storage.Redis.TTLHours <= 0 {
		cfg.Storage.Redis.TTLHours = 24 * 30
	}

	if len(cfg.Instruments) == 0 {
		cfg.Instruments = DefaultInstruments()
	}
}

func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if _, err := time.LoadLocation(cfg.App.Timezone); err != nil {
		return fmt.Errorf("app.timezone: %w", err)
	}

	if !cfg.App.DryRun {
		if strings.TrimSpace(cfg.Telegram.Token) == "" {
			return errors.New("telegram.token is empty (set it or " + EnvTelegramToken + ")")
		}
		if cfg.Telegram.ChatID == 0 {
			return errors.New("telegram.chat_id is empty")
		}
	}

	if cfg.AI.Enabled && strings.TrimSpace(cfg.AI.APIKey) == "" {
		return errors.New("ai.api_key empty but enabled")
	}

	if cfg.Feed.Enabled && strings.TrimSpace(cfg.Feed.Username) == "" {
		return errors.New("feed.username empty but enabled")
	}

	if cfg.Storage.Redis.Enabled && strings.TrimSpace(cfg.Storage.Redis.Addr) == "" {
		return errors.New("storage.redis.addr empty but enabled")
	}
	if cfg.Storage.Postgres.Enabled && strings.TrimSpace(cfg.Storage.Postgres.DSN) == "" {
		return errors.New("storage.postgres.dsn empty but enabled")
	}

	for i, spec := range cfg.Schedule.PriceUpdate {
		if Off(spec) {
			continue
		}
		if err := checkSpec(spec); err != nil {
			return fmt.Errorf("schedule.price_update[%d]: %w", i, err)
		}
	}
	for name, spec := range map[string]string{
		"schedule.calendar":   cfg.Schedule.Calendar,
		"schedule.news_brief": cfg.Schedule.NewsBrief,
		"schedule.feed_check": cfg.Schedule.FeedCheck,
	} {
		if Off(spec) {
			continue
		}
		if err := checkSpec(spec); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	seen := map[string]struct{}{}
	for _, ic := range cfg.Instruments {
		k := strings.TrimSpace(ic.Key)
		if _, ok := seen[k]; ok {
			return fmt.Errorf("instruments: duplicate key %q", k)
		}
		seen[k] = struct{}{}
	}
	return nil
}

// Off 空串或 "off"
func Off(spec string) bool {
	s := strings.TrimSpace(spec)
	return s == "" || strings.EqualFold(s, "off")
}

func checkSpec(spec string) error {
	_, err := cron.ParseStandard(spec)
	return err
}

// Location app.timezone，加载失败回落到 Local
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSec) * time.Second
}

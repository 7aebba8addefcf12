package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnavailable 报价不可用：字段缺失、前收为 0 等
var ErrUnavailable = errors.New("quote unavailable")

const (
	GlyphUp   = "📈"
	GlyphDown = "📉"

	AnnotWeekend = "[周五收盘]"
	AnnotClosed  = "[收盘]"
	AnnotHalted  = "[闭市]"
)

type Transport string

const (
	TransportHTTP Transport = "http"
	TransportWS   Transport = "ws"
)

// SourceSpec 一个上游报价源的描述
type SourceSpec struct {
	Name      string
	Transport Transport
	URL       string
	Params    map[string]string
	Headers   map[string]string
	Subscribe string // ws 连接后发送的订阅帧，可为空
	Shape     string
	Timeout   time.Duration
}

// SessionRule 决定交易时段标注的方式
type SessionRule int

const (
	SessionNone    SessionRule = iota // 不标注（加密货币、外汇）
	SessionWeekend                    // 仅周末标注
	SessionFull                       // 周末 + 市场状态/交易时段
)

func ParseSessionRule(s string) (SessionRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SessionNone, nil
	case "weekend":
		return SessionWeekend, nil
	case "full":
		return SessionFull, nil
	}
	return SessionNone, fmt.Errorf("unknown session rule %q", s)
}

// TimeWindow 一天内的交易区间，单位为分钟
type TimeWindow struct {
	Start int
	End   int
}

// TradingHours 没有 market state 的 shape 用它判断是否收盘
type TradingHours struct {
	Location *time.Location
	Windows  []TimeWindow
}

// ParseTradingHours 解析 "09:30-11:30" 形式的区间
func ParseTradingHours(tz string, windows []string) (*TradingHours, error) {
	if len(windows) == 0 {
		return nil, nil
	}
	loc := time.UTC
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("load location %q: %w", tz, err)
		}
		loc = l
	}
	h := &TradingHours{Location: loc}
	for _, w := range windows {
		from, to, ok := strings.Cut(w, "-")
		if !ok {
			return nil, fmt.Errorf("bad window %q", w)
		}
		s, err := clockMinutes(from)
		if err != nil {
			return nil, err
		}
		e, err := clockMinutes(to)
		if err != nil {
			return nil, err
		}
		if e <= s {
			return nil, fmt.Errorf("bad window %q: end before start", w)
		}
		h.Windows = append(h.Windows, TimeWindow{Start: s, End: e})
	}
	return h, nil
}

func clockMinutes(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("bad clock %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Open 判断 t 是否落在某个交易区间内（周末一律视为休市）
func (h *TradingHours) Open(t time.Time) bool {
	lt := t.In(h.Location)
	if wd := lt.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	m := lt.Hour()*60 + lt.Minute()
	for _, w := range h.Windows {
		if m >= w.Start && m < w.End {
			return true
		}
	}
	return false
}

// PriceFormat 价格展示格式
type PriceFormat struct {
	Prefix        string // "$" "¥"
	Unit          string // "/盎司" "/克"
	Decimals      int
	Thousands     bool
	ShowAbsChange bool
}

// Instrument 一个被报价的品种，启动时由配置构建，之后只读
type Instrument struct {
	Key             string
	Label           string
	Glyph           string
	Format          PriceFormat
	Session         SessionRule
	Hours           *TradingHours
	ClosedShowsPrev bool
	Placeholder     string
	Sources         []SourceSpec
}

// Unavailable 所有源都失败时的占位行
func (i Instrument) Unavailable() FormattedQuote {
	text := i.Placeholder
	if text == "" {
		text = fmt.Sprintf("%s %s: --", i.Glyph, i.Label)
	}
	return FormattedQuote{Key: i.Key, Text: text}
}

// RawQuote shape 解析后的中间结果，价格已按映射缩放
type RawQuote struct {
	Last        decimal.Decimal
	Prev        decimal.Decimal
	HasLast     bool
	HasPrev     bool
	MarketState string
}

// FormattedQuote 一行可展示的报价
type FormattedQuote struct {
	Key        string
	Text       string
	Available  bool
	Source     string
	Last       decimal.Decimal
	Prev       decimal.Decimal
	ChangePct  decimal.Decimal
	ChangeAbs  decimal.Decimal
	Annotation string
}

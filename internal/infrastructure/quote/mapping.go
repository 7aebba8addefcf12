package quote

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"finbot/internal/domain"
)

// shape tags
const (
	ShapeYahooChart     = "yahoo-chart"
	ShapeEastmoneyQuote = "eastmoney-quote"
	ShapeFX168          = "fx168-embedded-json"
	ShapeSinaHQ         = "sina-hq"
	ShapeBinanceTicker  = "binance-ticker"
)

var errInvalidJSON = errors.New("invalid json")

// Mapping 用 gjson 路径从 JSON 中取 last/prev/state；Scale > 1 时做除法
type Mapping struct {
	Tag   string
	Last  string
	Prev  string
	State string
	Scale int64
}

var (
	YahooChart = Mapping{
		Tag:   ShapeYahooChart,
		Last:  "chart.result.0.meta.regularMarketPrice",
		Prev:  "chart.result.0.meta.chartPreviousClose",
		State: "chart.result.0.meta.marketState",
	}

	// 东方财富价格单位为分
	EastmoneyQuote = Mapping{
		Tag:   ShapeEastmoneyQuote,
		Last:  "data.f43",
		Prev:  "data.f60",
		Scale: 100,
	}

	// 24hr ticker: c 最新价，x 窗口开始前最后成交价
	BinanceTicker = Mapping{
		Tag:  ShapeBinanceTicker,
		Last: "c",
		Prev: "x",
	}
)

func (m Mapping) Shape() string { return m.Tag }

func (m Mapping) Parse(payload []byte) (domain.RawQuote, error) {
	if !gjson.ValidBytes(payload) {
		return domain.RawQuote{}, fmt.Errorf("%s: %w", m.Tag, errInvalidJSON)
	}
	doc := gjson.ParseBytes(payload)

	var raw domain.RawQuote
	raw.Last, raw.HasLast = m.number(doc.Get(m.Last))
	raw.Prev, raw.HasPrev = m.number(doc.Get(m.Prev))
	if m.State != "" {
		raw.MarketState = strings.ToUpper(strings.TrimSpace(doc.Get(m.State).String()))
	}
	return raw, nil
}

// number 数字或数字字符串都接受；"-" 之类视为缺失
func (m Mapping) number(r gjson.Result) (decimal.Decimal, bool) {
	var (
		d   decimal.Decimal
		err error
	)
	switch r.Type {
	case gjson.Number:
		d, err = decimal.NewFromString(r.Raw)
	case gjson.String:
		d, err = decimal.NewFromString(strings.TrimSpace(r.Str))
	default:
		return decimal.Zero, false
	}
	if err != nil {
		return decimal.Zero, false
	}
	if m.Scale > 1 {
		d = d.Div(decimal.NewFromInt(m.Scale))
	}
	return d, true
}

package config

import (
	"fmt"
	"strings"
	"time"

	"finbot/internal/domain"
)

// 与 quote 包里的 shape 常量保持一致
const (
	shapeYahoo     = "yahoo-chart"
	shapeEastmoney = "eastmoney-quote"
	shapeFX168     = "fx168-embedded-json"
	shapeSina      = "sina-hq"
	shapeBinance   = "binance-ticker"
)

func intp(v int) *int { return &v }

func yahoo(name, symbol string) SourceConfig {
	return SourceConfig{
		Name:   name,
		URL:    "https://query1.finance.yahoo.com/v8/finance/chart/" + symbol,
		Params: map[string]string{"interval": "1d", "range": "1d"},
		Shape:  shapeYahoo,
	}
}

// yahoo 的备用域名
func yahoo2(name, symbol string) SourceConfig {
	s := yahoo(name, symbol)
	s.URL = "https://query2.finance.yahoo.com/v8/finance/chart/" + symbol
	return s
}

func eastmoney(name, secid string) SourceConfig {
	return SourceConfig{
		Name: name,
		URL:  "https://push2.eastmoney.com/api/qt/stock/get",
		Params: map[string]string{
			"secid":  secid,
			"fields": "f43,f44,f45,f46,f60,f169,f170",
		},
		Headers: map[string]string{"Referer": "https://quote.eastmoney.com/"},
		Shape:   shapeEastmoney,
	}
}

func binanceWS(name, stream string) SourceConfig {
	return SourceConfig{
		Name:      name,
		Transport: string(domain.TransportWS),
		URL:       "wss://stream.binance.com:9443/ws/" + stream,
		Shape:     shapeBinance,
	}
}

// DefaultInstruments 内置品种表，顺序即推送顺序
func DefaultInstruments() []InstrumentConfig {
	return []InstrumentConfig{
		{
			Key: "sse", Label: "上证指数", Glyph: "📊",
			Decimals: intp(2), ShowAbsChange: true,
			Session: "full", Timezone: "Asia/Shanghai", Hours: []string{"09:30-11:30", "13:00-15:00"},
			Sources: []SourceConfig{
				yahoo("yahoo", "000001.SS"),
				{
					Name:    "sina",
					URL:     "https://hq.sinajs.cn/list=s_sh000001",
					Headers: map[string]string{"Referer": "https://finance.sina.com.cn/"},
					Shape:   shapeSina,
				},
				eastmoney("eastmoney", "1.000001"),
			},
		},
		{
			Key: "btc", Label: "BTC", Glyph: "🪙",
			Prefix: "$", Decimals: intp(2), Thousands: true,
			Sources: []SourceConfig{
				yahoo("yahoo", "BTC-USD"),
				binanceWS("binance", "btcusdt@ticker"),
			},
		},
		{
			Key: "eth", Label: "ETH", Glyph: "💎",
			Prefix: "$", Decimals: intp(2), Thousands: true,
			Sources: []SourceConfig{
				yahoo("yahoo", "ETH-USD"),
				binanceWS("binance", "ethusdt@ticker"),
			},
		},
		{
			Key: "gold", Label: "伦敦金", Glyph: "💰",
			Prefix: "$", Unit: "/盎司", Decimals: intp(2),
			Session: "weekend",
			Sources: []SourceConfig{
				{Name: "fx168", URL: "https://www.fx168news.com/quote/XAU", Shape: shapeFX168},
				yahoo("yahoo", "GC=F"),
			},
		},
		{
			Key: "shanghai_gold", Label: "上海金", Glyph: "🏆",
			Prefix: "¥", Unit: "/克", Decimals: intp(2),
			ClosedShowsPrev: true,
			Sources: []SourceConfig{
				eastmoney("eastmoney", "118.SHAU"),
			},
		},
		{
			Key: "dxy", Label: "美元指数", Glyph: "💵",
			Decimals: intp(2),
			Sources: []SourceConfig{
				yahoo("yahoo", "DX-Y.NYB"),
				yahoo2("yahoo-q2", "DX-Y.NYB"),
			},
		},
		{
			Key: "usdcny", Label: "美元/人民币", Glyph: "💴",
			Prefix: "¥", Decimals: intp(4),
			Sources: []SourceConfig{
				yahoo("yahoo", "CNY=X"),
				yahoo2("yahoo-q2", "CNY=X"),
			},
		},
		{
			Key: "oil", Label: "WTI原油", Glyph: "🛢️",
			Prefix: "$", Decimals: intp(2),
			Sources: []SourceConfig{
				yahoo("yahoo", "CL=F"),
				yahoo2("yahoo-q2", "CL=F"),
			},
		},
		{
			Key: "nasdaq", Label: "纳斯达克", Glyph: "📊",
			Decimals: intp(2), Thousands: true, ShowAbsChange: true,
			Session: "full", Timezone: "America/New_York", Hours: []string{"09:30-16:00"},
			Sources: []SourceConfig{
				yahoo("yahoo", "%5EIXIC"),
				yahoo2("yahoo-q2", "%5EIXIC"),
			},
		},
		{
			Key: "dow", Label: "道琼斯", Glyph: "📊",
			Decimals: intp(2), Thousands: true, ShowAbsChange: true,
			Session: "full", Timezone: "America/New_York", Hours: []string{"09:30-16:00"},
			Sources: []SourceConfig{
				yahoo("yahoo", "%5EDJI"),
				yahoo2("yahoo-q2", "%5EDJI"),
			},
		},
		{
			Key: "hsi", Label: "恒生指数", Glyph: "📊",
			Decimals: intp(2), Thousands: true, ShowAbsChange: true,
			Session: "full", Timezone: "Asia/Hong_Kong", Hours: []string{"09:30-12:00", "13:00-16:00"},
			Sources: []SourceConfig{
				yahoo("yahoo", "%5EHSI"),
				yahoo2("yahoo-q2", "%5EHSI"),
			},
		},
		{
			Key: "hstech", Label: "恒生科技", Glyph: "📊",
			Decimals: intp(2), Thousands: true, ShowAbsChange: true,
			Session: "full", Timezone: "Asia/Hong_Kong", Hours: []string{"09:30-12:00", "13:00-16:00"},
			Sources: []SourceConfig{
				yahoo("yahoo", "%5EHSTECH"),
				yahoo("yahoo-hk", "HSTECH.HK"),
			},
		},
	}
}

// BuildInstruments 把配置转成只读的领域对象；defaultTimeout 用于没有单独配置超时的源
func (c *Config) BuildInstruments() ([]domain.Instrument, error) {
	defTimeout := c.HTTPTimeout()
	out := make([]domain.Instrument, 0, len(c.Instruments))
	for _, ic := range c.Instruments {
		inst, err := ic.build(defTimeout)
		if err != nil {
			return nil, fmt.Errorf("instrument %s: %w", ic.Key, err)
		}
		out = append(out, inst)
	}
	return out, nil
}

func (ic InstrumentConfig) build(defTimeout time.Duration) (domain.Instrument, error) {
	session, err := domain.ParseSessionRule(ic.Session)
	if err != nil {
		return domain.Instrument{}, err
	}
	hours, err := domain.ParseTradingHours(ic.Timezone, ic.Hours)
	if err != nil {
		return domain.Instrument{}, err
	}

	decimals := 2
	if ic.Decimals != nil {
		decimals = *ic.Decimals
	}

	inst := domain.Instrument{
		Key:   strings.TrimSpace(ic.Key),
		Label: ic.Label,
		Glyph: ic.Glyph,
		Format: domain.PriceFormat{
			Prefix:        ic.Prefix,
			Unit:          ic.Unit,
			Decimals:      decimals,
			Thousands:     ic.Thousands,
			ShowAbsChange: ic.ShowAbsChange,
		},
		Session:         session,
		Hours:           hours,
		ClosedShowsPrev: ic.ClosedShowsPrev,
		Placeholder:     ic.Placeholder,
	}

	for i, sc := range ic.Sources {
		name := sc.Name
		if name == "" {
			name = fmt.Sprintf("%s#%d", sc.Shape, i)
		}
		timeout := defTimeout
		if sc.TimeoutSec > 0 {
			timeout = time.Duration(sc.TimeoutSec) * time.Second
		}
		transport := domain.Transport(sc.Transport)
		if transport == "" {
			transport = domain.TransportHTTP
		}
		inst.Sources = append(inst.Sources, domain.SourceSpec{
			Name:      name,
			Transport: transport,
			URL:       sc.URL,
			Params:    sc.Params,
			Headers:   sc.Headers,
			Subscribe: sc.Subscribe,
			Shape:     sc.Shape,
			Timeout:   timeout,
		})
	}
	return inst, nil
}

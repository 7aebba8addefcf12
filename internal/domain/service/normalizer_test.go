package service

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbot/internal/domain"
)

var shanghai = time.FixedZone("CST", 8*3600)

func at(s string) func() time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, shanghai)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func raw(last, prev string) domain.RawQuote {
	return domain.RawQuote{Last: dec(last), Prev: dec(prev), HasLast: true, HasPrev: true}
}

var (
	// 2026-10-19 周一，2026-10-24 周六
	monday   = at("2026-10-19 10:00")
	saturday = at("2026-10-24 10:00")
)

func goldInst() domain.Instrument {
	return domain.Instrument{
		Key: "gold", Label: "伦敦金", Glyph: "💰",
		Format:  domain.PriceFormat{Prefix: "$", Unit: "/盎司", Decimals: 2},
		Session: domain.SessionWeekend,
	}
}

func indexInst() domain.Instrument {
	return domain.Instrument{
		Key: "sse", Label: "上证指数", Glyph: "📊",
		Format:  domain.PriceFormat{Decimals: 2, ShowAbsChange: true},
		Session: domain.SessionFull,
	}
}

func TestChangeFormula(t *testing.T) {
	cases := []struct{ last, prev string }{
		{"3000", "2999"},
		{"100", "200"},
		{"0.5", "0.25"},
		{"-3", "4"},
		{"67000.12", "66000.5"},
	}
	for _, c := range cases {
		last, prev := dec(c.last), dec(c.prev)
		pct, abs := Change(last, prev)
		want := last.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100))
		assert.True(t, pct.Equal(want), "pct for %s/%s", c.last, c.prev)
		assert.True(t, abs.Equal(last.Sub(prev)))

		if pct.Sign() >= 0 {
			assert.Equal(t, domain.GlyphUp, TrendGlyph(pct))
		} else {
			assert.Equal(t, domain.GlyphDown, TrendGlyph(pct))
		}
	}
	assert.Equal(t, domain.GlyphUp, TrendGlyph(decimal.Zero))
}

func TestNormalizeUnavailable(t *testing.T) {
	n := NewNormalizer(shanghai, monday)
	inst := goldInst()

	cases := map[string]domain.RawQuote{
		"missing last": {Prev: dec("1"), HasPrev: true},
		"missing prev": {Last: dec("1"), HasLast: true},
		"zero prev":    raw("10", "0"),
		"zero last":    raw("0", "10"),
		"empty":        {},
	}
	for name, r := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := n.Normalize(inst, r)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrUnavailable))
		})
	}
}

func TestNormalizeGold(t *testing.T) {
	n := NewNormalizer(shanghai, monday)
	fq, err := n.Normalize(goldInst(), raw("4020", "4000"))
	require.NoError(t, err)
	assert.Equal(t, "💰 伦敦金: $4020.00/盎司 📈+0.50%", fq.Text)
	assert.True(t, fq.Available)
	assert.Empty(t, fq.Annotation)
}

func TestNormalizeIndexWithAbsChange(t *testing.T) {
	n := NewNormalizer(shanghai, monday)
	r := raw("2970", "3000")
	r.MarketState = "REGULAR"
	fq, err := n.Normalize(indexInst(), r)
	require.NoError(t, err)
	assert.Equal(t, "📊 上证指数: 2970.00 📉-30.00 (-1.00%)", fq.Text)
}

func TestNormalizeSessionAnnotations(t *testing.T) {
	inst := indexInst()

	t.Run("weekend wins over market state", func(t *testing.T) {
		n := NewNormalizer(shanghai, saturday)
		r := raw("3010", "3000")
		r.MarketState = "REGULAR"
		fq, err := n.Normalize(inst, r)
		require.NoError(t, err)
		assert.Equal(t, domain.AnnotWeekend, fq.Annotation)
		assert.Contains(t, fq.Text, "[周五收盘]")
	})

	t.Run("closed state", func(t *testing.T) {
		n := NewNormalizer(shanghai, monday)
		r := raw("3010", "3000")
		r.MarketState = "CLOSED"
		fq, err := n.Normalize(inst, r)
		require.NoError(t, err)
		assert.Equal(t, "📊 上证指数: 3010.00 [收盘] 📈+10.00 (+0.33%)", fq.Text)
	})

	t.Run("post market is not regular", func(t *testing.T) {
		n := NewNormalizer(shanghai, monday)
		r := raw("3010", "3000")
		r.MarketState = "POST"
		fq, err := n.Normalize(inst, r)
		require.NoError(t, err)
		assert.Equal(t, domain.AnnotClosed, fq.Annotation)
	})

	t.Run("hours window without state", func(t *testing.T) {
		hours, err := domain.ParseTradingHours("", []string{"09:30-11:30", "13:00-15:00"})
		require.NoError(t, err)
		hours.Location = shanghai
		withHours := inst
		withHours.Hours = hours

		open, err := NewNormalizer(shanghai, monday).Normalize(withHours, raw("3010", "3000"))
		require.NoError(t, err)
		assert.Empty(t, open.Annotation)

		closed, err := NewNormalizer(shanghai, at("2026-10-19 16:00")).Normalize(withHours, raw("3010", "3000"))
		require.NoError(t, err)
		assert.Equal(t, domain.AnnotClosed, closed.Annotation)
	})

	t.Run("no annotation for crypto", func(t *testing.T) {
		btc := domain.Instrument{Key: "btc", Label: "BTC", Glyph: "🪙",
			Format: domain.PriceFormat{Prefix: "$", Decimals: 2, Thousands: true}}
		fq, err := NewNormalizer(shanghai, saturday).Normalize(btc, raw("67000", "66000"))
		require.NoError(t, err)
		assert.Equal(t, "🪙 BTC: $67,000.00 📈+1.52%", fq.Text)
	})
}

func TestNormalizeClosedShowsPrev(t *testing.T) {
	inst := domain.Instrument{
		Key: "shanghai_gold", Label: "上海金", Glyph: "🏆",
		Format:          domain.PriceFormat{Prefix: "¥", Unit: "/克", Decimals: 2},
		ClosedShowsPrev: true,
	}

	fq, err := NewNormalizer(shanghai, monday).Normalize(inst, raw("0", "950.5"))
	require.NoError(t, err)
	assert.Equal(t, "🏆 上海金: ¥950.50/克 [闭市]", fq.Text)
	assert.NotContains(t, fq.Text, "%")

	fq, err = NewNormalizer(shanghai, saturday).Normalize(inst, raw("0", "950.5"))
	require.NoError(t, err)
	assert.Equal(t, "🏆 上海金: ¥950.50/克 [周五收盘]", fq.Text)

	fq, err = NewNormalizer(shanghai, monday).Normalize(inst, raw("955", "950"))
	require.NoError(t, err)
	assert.Equal(t, "🏆 上海金: ¥955.00/克 📈+0.53%", fq.Text)
}

func TestSignedAndThousands(t *testing.T) {
	assert.Equal(t, "+0.00", Signed(decimal.Zero, 2))
	assert.Equal(t, "-0.00", Signed(dec("-0.001"), 2))
	assert.Equal(t, "-1.25", Signed(dec("-1.2500"), 2))
	assert.Equal(t, "+0.0334", Signed(dec("0.03336"), 4))

	f := domain.PriceFormat{Prefix: "$", Decimals: 2, Thousands: true}
	assert.Equal(t, "$1,234,567.89", FormatPrice(f, dec("1234567.891")))
	assert.Equal(t, "$999.00", FormatPrice(f, dec("999")))
	assert.Equal(t, "$-1,000.00", FormatPrice(f, dec("-1000")))
}

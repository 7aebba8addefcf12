package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finbot/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Normalizer 把各种 shape 解析出的 RawQuote 统一成展示行
// 纯函数，除时钟外没有状态，不做重试
type Normalizer struct {
	loc *time.Location
	now func() time.Time
}

func NewNormalizer(loc *time.Location, now func() time.Time) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Normalizer{loc: loc, now: now}
}

// Change 计算涨跌幅和涨跌额，prev 不能为 0
func Change(last, prev decimal.Decimal) (pct, abs decimal.Decimal) {
	abs = last.Sub(prev)
	pct = abs.Div(prev).Mul(hundred)
	return pct, abs
}

// TrendGlyph change_pct >= 0 为上涨
func TrendGlyph(pct decimal.Decimal) string {
	if pct.Sign() >= 0 {
		return domain.GlyphUp
	}
	return domain.GlyphDown
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Normalize 返回格式化报价；数据不完整时返回 domain.ErrUnavailable
func (n *Normalizer) Normalize(inst domain.Instrument, raw domain.RawQuote) (domain.FormattedQuote, error) {
	now := n.now().In(n.loc)

	// 上海金收盘后 last 为 0，改为展示前收
	if inst.ClosedShowsPrev && raw.HasLast && raw.Last.IsZero() && raw.HasPrev && raw.Prev.IsPositive() {
		annot := domain.AnnotHalted
		if IsWeekend(now) {
			annot = domain.AnnotWeekend
		}
		text := fmt.Sprintf("%s %s: %s %s", inst.Glyph, inst.Label, FormatPrice(inst.Format, raw.Prev), annot)
		return domain.FormattedQuote{
			Key:        inst.Key,
			Text:       text,
			Available:  true,
			Last:       raw.Prev,
			Prev:       raw.Prev,
			Annotation: annot,
		}, nil
	}

	// 0 价视为缺失
	if !raw.HasLast || !raw.HasPrev || raw.Prev.IsZero() || raw.Last.IsZero() {
		return domain.FormattedQuote{}, fmt.Errorf("%s: %w", inst.Key, domain.ErrUnavailable)
	}

	pct, abs := Change(raw.Last, raw.Prev)
	annot := n.annotate(inst, raw, now)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s", inst.Glyph, inst.Label, FormatPrice(inst.Format, raw.Last))
	if annot != "" {
		b.WriteString(" ")
		b.WriteString(annot)
	}
	b.WriteString(" ")
	b.WriteString(TrendGlyph(pct))
	if inst.Format.ShowAbsChange {
		fmt.Fprintf(&b, "%s (%s%%)", Signed(abs, inst.Format.Decimals), Signed(pct, 2))
	} else {
		fmt.Fprintf(&b, "%s%%", Signed(pct, 2))
	}

	return domain.FormattedQuote{
		Key:        inst.Key,
		Text:       b.String(),
		Available:  true,
		Last:       raw.Last,
		Prev:       raw.Prev,
		ChangePct:  pct,
		ChangeAbs:  abs,
		Annotation: annot,
	}, nil
}

func (n *Normalizer) annotate(inst domain.Instrument, raw domain.RawQuote, now time.Time) string {
	switch inst.Session {
	case domain.SessionWeekend:
		if IsWeekend(now) {
			return domain.AnnotWeekend
		}
	case domain.SessionFull:
		if IsWeekend(now) {
			return domain.AnnotWeekend
		}
		if raw.MarketState != "" {
			if !strings.EqualFold(raw.MarketState, "REGULAR") {
				return domain.AnnotClosed
			}
			return ""
		}
		if inst.Hours != nil && !inst.Hours.Open(now) {
			return domain.AnnotClosed
		}
	}
	return ""
}

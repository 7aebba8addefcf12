package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"finbot/internal/domain"
)

// FormatPrice 前缀 + 定点小数（可选千分位）+ 单位
func FormatPrice(f domain.PriceFormat, v decimal.Decimal) string {
	s := v.StringFixed(int32(f.Decimals))
	if f.Thousands {
		s = groupThousands(s)
	}
	return f.Prefix + s + f.Unit
}

// Signed 带符号的定点小数；负数四舍五入到 0 时保留 "-"
func Signed(v decimal.Decimal, places int) string {
	r := v.Round(int32(places))
	s := r.StringFixed(int32(places))
	switch {
	case v.Sign() < 0 && r.IsZero():
		return "-" + s
	case r.Sign() >= 0:
		return "+" + s
	}
	return s
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}

	out := b.String()
	if hasFrac {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

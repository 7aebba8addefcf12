package quote

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"finbot/internal/domain"
)

// SinaHQ 新浪简版行情：var hq_str_s_sh000001="名称,现价,涨跌额,涨跌幅,量,额";
// prev 由 现价 - 涨跌额 推出
type SinaHQ struct{}

func (SinaHQ) Shape() string { return ShapeSinaHQ }

func (SinaHQ) Parse(payload []byte) (domain.RawQuote, error) {
	s := string(payload)
	i := strings.IndexByte(s, '"')
	j := strings.LastIndexByte(s, '"')
	if i < 0 || j <= i {
		return domain.RawQuote{}, fmt.Errorf("sina: no quoted payload")
	}
	parts := strings.Split(s[i+1:j], ",")
	if len(parts) < 3 {
		return domain.RawQuote{}, fmt.Errorf("sina: expected >=3 fields, got %d", len(parts))
	}

	var raw domain.RawQuote
	last, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return raw, nil
	}
	raw.Last, raw.HasLast = last, true

	chg, err := decimal.NewFromString(strings.TrimSpace(parts[2]))
	if err != nil {
		return raw, nil
	}
	raw.Prev, raw.HasPrev = last.Sub(chg), true
	return raw, nil
}

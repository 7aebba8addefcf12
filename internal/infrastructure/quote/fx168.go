package quote

import (
	"errors"
	"regexp"
	"strings"

	"finbot/internal/domain"
)

var (
	fx168InfoList = regexp.MustCompile(`"infoListData":\[(\{[^}]+\})\]`)

	errFX168NoData = errors.New("fx168: infoListData not found")
)

// FX168 页面内嵌 JSON，先用正则截出对象再走字段映射
type FX168 struct{}

var fx168Fields = Mapping{Tag: ShapeFX168, Last: "tradePrice", Prev: "preClosePrice"}

func (FX168) Shape() string { return ShapeFX168 }

func (FX168) Parse(payload []byte) (domain.RawQuote, error) {
	m := fx168InfoList.FindSubmatch(payload)
	if m == nil {
		// Next.js 页面里的 JSON 被转义过一次
		unescaped := strings.ReplaceAll(string(payload), `\"`, `"`)
		m = fx168InfoList.FindSubmatch([]byte(unescaped))
	}
	if m == nil {
		return domain.RawQuote{}, errFX168NoData
	}
	return fx168Fields.Parse(m[1])
}

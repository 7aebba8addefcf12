package port

import (
	"context"

	"finbot/internal/domain"
)

// QuoteSource 按 SourceSpec 发起一次上游请求，返回原始 payload
type QuoteSource interface {
	Fetch(ctx context.Context, spec domain.SourceSpec) ([]byte, error)
}

// ShapeParser 把某种上游格式解析成 RawQuote
type ShapeParser interface {
	Shape() string
	Parse(payload []byte) (domain.RawQuote, error)
}

// ParserLookup 按 shape tag 查找解析器
type ParserLookup interface {
	Parser(shape string) (ShapeParser, bool)
}

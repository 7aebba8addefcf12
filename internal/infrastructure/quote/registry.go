package quote

import (
	"sort"

	"github.com/rs/zerolog/log"

	"finbot/internal/application/port"
)

// Registry shape tag -> 解析器，显式构建，不用包级变量
type Registry struct {
	parsers map[string]port.ShapeParser
}

var _ port.ParserLookup = (*Registry)(nil)

func NewRegistry(parsers ...port.ShapeParser) *Registry {
	r := &Registry{parsers: make(map[string]port.ShapeParser, len(parsers))}
	for _, p := range parsers {
		r.Register(p)
	}
	return r
}

// DefaultRegistry 内置的全部 shape
func DefaultRegistry() *Registry {
	return NewRegistry(YahooChart, EastmoneyQuote, FX168{}, SinaHQ{}, BinanceTicker)
}

// Register 注册解析器，同名覆盖
func (r *Registry) Register(p port.ShapeParser) {
	if p == nil {
		log.Warn().Msg("invalid shape parser")
		return
	}
	shape := p.Shape()
	if _, exists := r.parsers[shape]; exists {
		log.Warn().Str("shape", shape).Msg("shape parser already registered, overwriting")
	}
	r.parsers[shape] = p
	log.Debug().Str("shape", shape).Msg("shape parser registered")
}

func (r *Registry) Parser(shape string) (port.ShapeParser, bool) {
	p, ok := r.parsers[shape]
	return p, ok
}

func (r *Registry) Shapes() []string {
	out := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

package resolver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"finbot/internal/application/port"
	"finbot/internal/application/service"
	"finbot/internal/domain"
	dsvc "finbot/internal/domain/service"
)

const defaultTimeout = 15 * time.Second

// Resolver 按顺序尝试品种的各个源，第一个有效结果胜出
type Resolver struct {
	source  port.QuoteSource
	parsers port.ParserLookup
	norm    *dsvc.Normalizer
	timeout time.Duration
}

func New(source port.QuoteSource, parsers port.ParserLookup, norm *dsvc.Normalizer) *Resolver {
	return &Resolver{source: source, parsers: parsers, norm: norm, timeout: defaultTimeout}
}

// WithDefaultTimeout SourceSpec 未设置超时时使用
func (r *Resolver) WithDefaultTimeout(d time.Duration) *Resolver {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Normalize 用 shape 对应的解析器处理 payload
func (r *Resolver) Normalize(inst domain.Instrument, shape string, payload []byte) (domain.FormattedQuote, error) {
	p, ok := r.parsers.Parser(shape)
	if !ok {
		return domain.FormattedQuote{}, fmt.Errorf("unknown shape %q", shape)
	}
	raw, err := p.Parse(payload)
	if err != nil {
		return domain.FormattedQuote{}, fmt.Errorf("parse %s: %w", shape, err)
	}
	return r.norm.Normalize(inst, raw)
}

// Resolve 从不返回错误；全部失败时返回占位行
func (r *Resolver) Resolve(ctx context.Context, inst domain.Instrument) domain.FormattedQuote {
	opts := service.FallbackOptions[domain.SourceSpec]{
		Kind: "quote:" + inst.Key,
		Name: func(s domain.SourceSpec) string { return s.Name },
		Timeout: func(s domain.SourceSpec) time.Duration {
			if s.Timeout > 0 {
				return s.Timeout
			}
			return r.timeout
		},
	}

	fq, idx, err := service.FirstOK(ctx, inst.Sources, opts, func(ctx context.Context, src domain.SourceSpec) (domain.FormattedQuote, error) {
		payload, err := r.source.Fetch(ctx, src)
		if err != nil {
			return domain.FormattedQuote{}, err
		}
		return r.Normalize(inst, src.Shape, payload)
	})
	if err != nil {
		log.Error().Str("instrument", inst.Key).Err(err).Msg("all sources failed")
		return inst.Unavailable()
	}

	fq.Source = inst.Sources[idx].Name
	log.Debug().Str("instrument", inst.Key).Str("source", fq.Source).Msg("quote resolved")
	return fq
}

// ResolveAll 每个品种一个 goroutine，结果保持输入顺序
func (r *Resolver) ResolveAll(ctx context.Context, insts []domain.Instrument) []domain.FormattedQuote {
	out := make([]domain.FormattedQuote, len(insts))
	var wg sync.WaitGroup
	for i := range insts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i] = r.Resolve(ctx, insts[i])
		}(i)
	}
	wg.Wait()
	return out
}

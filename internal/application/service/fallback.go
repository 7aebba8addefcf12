package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrExhausted 所有候选都失败
var ErrExhausted = errors.New("all candidates failed")

// FallbackOptions 描述候选的名字和单次超时
type FallbackOptions[S any] struct {
	Kind    string // 日志用："quote" "feed" "calendar"
	Name    func(S) string
	Timeout func(S) time.Duration
}

// FirstOK 严格按顺序尝试候选，返回第一个成功的结果及其下标。
// 失败的候选记 warn 后继续；没有跨候选的总超时。
func FirstOK[S, T any](ctx context.Context, candidates []S, opts FallbackOptions[S], try func(context.Context, S) (T, error)) (T, int, error) {
	var zero T
	errs := make([]error, 0, len(candidates))

	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			return zero, -1, err
		}

		name := fmt.Sprintf("#%d", i)
		if opts.Name != nil {
			name = opts.Name(c)
		}

		tctx, cancel := ctx, context.CancelFunc(func() {})
		if opts.Timeout != nil {
			if d := opts.Timeout(c); d > 0 {
				tctx, cancel = context.WithTimeout(ctx, d)
			}
		}
		v, err := try(tctx, c)
		cancel()
		if err == nil {
			return v, i, nil
		}

		log.Warn().
			Str("kind", opts.Kind).
			Str("candidate", name).
			Int("attempt", i+1).
			Int("of", len(candidates)).
			Err(err).
			Msg("candidate failed, falling back")
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}

	if len(errs) == 0 {
		return zero, -1, fmt.Errorf("%w: no candidates", ErrExhausted)
	}
	return zero, -1, fmt.Errorf("%w: %w", ErrExhausted, errors.Join(errs...))
}

package port

//go:generate mockgen -source=ai.go -destination=mocks/ai.go -package=mocks

import "context"

type CompletionOptions struct {
	MaxTokens   int
	Temperature float64
}

// Completer 单次文本补全
type Completer interface {
	Name() string
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

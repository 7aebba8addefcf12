package claude

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"

	"finbot/internal/application/port"
)

const DefaultModel = "claude-sonnet-4-5"

// Completer Anthropic Messages API
type Completer struct {
	client anthropic.Client
	model  string
}

var _ port.Completer = (*Completer)(nil)

type Options struct {
	APIKey  string
	Model   string
	BaseURL string
}

func New(opts Options) (*Completer, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("claude: empty api key")
	}
	ro := []option.RequestOption{option.WithAPIKey(opts.APIKey), option.WithMaxRetries(1)}
	if opts.BaseURL != "" {
		ro = append(ro, option.WithBaseURL(opts.BaseURL))
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	log.Debug().Str("model", model).Msg("claude completer initialized")
	return &Completer{client: anthropic.NewClient(ro...), model: model}, nil
}

func (c *Completer) Name() string { return "claude/" + c.model }

func (c *Completer) Complete(ctx context.Context, prompt string, opts port.CompletionOptions) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 500
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude messages: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errors.New("claude: empty response")
	}
	return text, nil
}

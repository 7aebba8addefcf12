package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"finbot/internal/application/port"
)

const DefaultModel = "gemini-2.5-flash"

// Completer Google Gemini，单轮文本生成
type Completer struct {
	client *genai.Client
	model  string
}

var _ port.Completer = (*Completer)(nil)

type Options struct {
	APIKey  string
	Model   string
	BaseURL string // 测试用
	HTTP    *http.Client
}

func New(ctx context.Context, opts Options) (*Completer, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini: empty api key")
	}
	cc := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTP,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	log.Debug().Str("model", model).Msg("gemini completer initialized")
	return &Completer{client: client, model: model}, nil
}

func (c *Completer) Name() string { return "gemini/" + c.model }

func (c *Completer) Complete(ctx context.Context, prompt string, opts port.CompletionOptions) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(opts.Temperature)),
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	var b strings.Builder
	if resp != nil {
		for _, cand := range resp.Candidates {
			if cand == nil || cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if part != nil && part.Text != "" {
					b.WriteString(part.Text)
				}
			}
			if b.Len() > 0 {
				break
			}
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}

package quote

import (
	"context"
	"fmt"

	"finbot/internal/application/port"
	"finbot/internal/domain"
	"finbot/internal/infrastructure/httpx"
)

// HTTPSource GET + query 参数 + 请求头
type HTTPSource struct {
	client *httpx.Client
}

func NewHTTPSource(client *httpx.Client) *HTTPSource {
	return &HTTPSource{client: client}
}

func (s *HTTPSource) Fetch(ctx context.Context, spec domain.SourceSpec) ([]byte, error) {
	return s.client.Get(ctx, spec.URL, spec.Params, spec.Headers)
}

// Mux 按 transport 分发
type Mux struct {
	HTTP port.QuoteSource
	WS   port.QuoteSource
}

var _ port.QuoteSource = (*Mux)(nil)

func (m *Mux) Fetch(ctx context.Context, spec domain.SourceSpec) ([]byte, error) {
	switch spec.Transport {
	case domain.TransportWS:
		if m.WS == nil {
			return nil, fmt.Errorf("%s: ws transport not configured", spec.Name)
		}
		return m.WS.Fetch(ctx, spec)
	case domain.TransportHTTP, "":
		if m.HTTP == nil {
			return nil, fmt.Errorf("%s: http transport not configured", spec.Name)
		}
		return m.HTTP.Fetch(ctx, spec)
	}
	return nil, fmt.Errorf("%s: unknown transport %q", spec.Name, spec.Transport)
}

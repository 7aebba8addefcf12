package quote

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"finbot/internal/domain"
)

// WSSource 一次性 websocket：连接、可选订阅、读到第一条数据帧就断开
type WSSource struct {
	dialer *websocket.Dialer
}

func NewWSSource() *WSSource {
	return &WSSource{dialer: websocket.DefaultDialer}
}

func (s *WSSource) Fetch(ctx context.Context, spec domain.SourceSpec) ([]byte, error) {
	header := http.Header{}
	for k, v := range spec.Headers {
		header.Set(k, v)
	}

	conn, resp, err := s.dialer.DialContext(ctx, spec.URL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("ws dial: http %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("ws dial: %w", err)
	}
	defer conn.Close()
	log.Debug().Str("source", spec.Name).Str("url", spec.URL).Msg("ws connected")

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(dl)
	} else {
		_ = conn.SetReadDeadline(time.Now().Add(15 * time.Second))
	}

	if spec.Subscribe != "" {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(spec.Subscribe)); err != nil {
			return nil, fmt.Errorf("ws subscribe: %w", err)
		}
	}

	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("ws read: %w", err)
		}
		payload, ok := unwrapFrame(b)
		if !ok {
			continue
		}
		return payload, nil
	}
}

// unwrapFrame 跳过订阅回执；combined stream 取出 data
func unwrapFrame(b []byte) ([]byte, bool) {
	doc := gjson.ParseBytes(b)
	if doc.Get("id").Exists() && doc.Get("result").Exists() {
		return nil, false
	}
	if data := doc.Get("data"); data.Exists() && doc.Get("stream").Exists() {
		return []byte(data.Raw), true
	}
	return b, true
}

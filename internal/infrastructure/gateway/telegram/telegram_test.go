package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbot/internal/application/port"
	"finbot/internal/domain"
)

type fakeAPI struct {
	mu       sync.Mutex
	sendBody string // sendMessage 的响应
	forms    []map[string]string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	form := map[string]string{}
	for k := range r.Form {
		form[k] = r.Form.Get(k)
	}
	f.mu.Lock()
	f.forms = append(f.forms, form)
	body := f.sendBody
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		fmt.Fprint(w, `{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"fin","username":"finbot"}}`)
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		fmt.Fprint(w, body)
	case strings.HasSuffix(r.URL.Path, "/deleteMessage"):
		fmt.Fprint(w, `{"ok":true,"result":true}`)
	default:
		fmt.Fprint(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
	}
}

func (f *fakeAPI) last() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.forms[len(f.forms)-1]
}

func newGateway(t *testing.T, api *fakeAPI) *Gateway {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	g, err := New(Options{
		Token:       "123:abc",
		APIEndpoint: srv.URL + "/bot%s/%s",
		HTTPClient:  srv.Client(),
	})
	require.NoError(t, err)
	return g
}

func TestSendHTML(t *testing.T) {
	api := &fakeAPI{sendBody: `{"ok":true,"result":{"message_id":77,"date":0,"chat":{"id":-1001,"type":"channel"}}}`}
	g := newGateway(t, api)
	assert.Equal(t, "finbot", g.BotName())

	id, err := g.Send(context.Background(), domain.OutMessage{
		ChatID: -1001, Text: "<b>hi</b>", HTML: true, ReplyTo: 5, DisablePreview: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 77, id)

	form := api.last()
	assert.Equal(t, "-1001", form["chat_id"])
	assert.Equal(t, "<b>hi</b>", form["text"])
	assert.Equal(t, "HTML", form["parse_mode"])
	assert.Equal(t, "5", form["reply_to_message_id"])
	assert.Equal(t, "true", form["disable_web_page_preview"])
}

func TestSendPermanentFailure(t *testing.T) {
	api := &fakeAPI{sendBody: `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`}
	g := newGateway(t, api)

	_, err := g.Send(context.Background(), domain.OutMessage{ChatID: 1, Text: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, port.ErrPermanent))
	assert.Contains(t, err.Error(), "chat not found")
}

func TestSendRateLimitedIsTransient(t *testing.T) {
	api := &fakeAPI{sendBody: `{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 3","parameters":{"retry_after":3}}`}
	g := newGateway(t, api)

	_, err := g.Send(context.Background(), domain.OutMessage{ChatID: 1, Text: "x"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, port.ErrPermanent))
}

func TestDelete(t *testing.T) {
	api := &fakeAPI{}
	g := newGateway(t, api)

	require.NoError(t, g.Delete(context.Background(), -1001, 9))
	form := api.last()
	assert.Equal(t, "9", form["message_id"])
}

func TestClassify(t *testing.T) {
	assert.True(t, errors.Is(classify(&tgbotapi.Error{Code: 403, Message: "Forbidden"}), port.ErrPermanent))
	assert.False(t, errors.Is(classify(&tgbotapi.Error{Code: 502, Message: "Bad Gateway"}), port.ErrPermanent))
	assert.False(t, errors.Is(classify(&tgbotapi.Error{Code: 429}), port.ErrPermanent))

	plain := errors.New("dial tcp: timeout")
	assert.Equal(t, plain, classify(plain))
}

func TestConvert(t *testing.T) {
	g := &Gateway{bot: &tgbotapi.BotAPI{Self: tgbotapi.User{ID: 42, UserName: "finbot"}}}

	in, ok := g.convert(tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 3,
		Chat:      &tgbotapi.Chat{ID: -1001},
		From:      &tgbotapi.User{ID: 7, UserName: "alice"},
		Text:      "金价怎么看",
		ReplyToMessage: &tgbotapi.Message{
			From: &tgbotapi.User{ID: 42},
		},
	}})
	require.True(t, ok)
	assert.Equal(t, int64(-1001), in.ChatID)
	assert.Equal(t, 3, in.MessageID)
	assert.Equal(t, "alice", in.From)
	assert.True(t, in.ReplyToBot)
	assert.Empty(t, in.Command)

	cmd, ok := g.convert(tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: 1},
		Text:     "/help",
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 5}},
	}})
	require.True(t, ok)
	assert.Equal(t, "help", cmd.Command)
	assert.Empty(t, cmd.From)

	_, ok = g.convert(tgbotapi.Update{})
	assert.False(t, ok)
	_, ok = g.convert(tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Text: "  "}})
	assert.False(t, ok)
}

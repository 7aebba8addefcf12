package svc

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbot/internal/infrastructure/config"
	"finbot/internal/interfaces/console"
)

func load(t *testing.T, extra string) *config.Config {
	t.Helper()
	db := filepath.Join(t.TempDir(), "finbot.db")
	cfg, err := config.Parse(`
[app]
dry_run = true
[telegram]
chat_id = 42
[storage.sqlite]
enabled = true
path = "` + filepath.ToSlash(db) + `"
` + extra)
	require.NoError(t, err)
	return cfg
}

func TestNewDryRun(t *testing.T) {
	cfg := load(t, "")
	sc, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer sc.Close()

	assert.Len(t, sc.Instruments, 12)
	assert.NotNil(t, sc.Resolver)
	assert.Nil(t, sc.Feed)
	assert.Nil(t, sc.Completer)
	assert.IsType(t, &console.Gateway{}, sc.Gateway)
	assert.Len(t, sc.Calendars, 2)
	assert.Len(t, sc.News, 2)

	deps := sc.DispatchDeps()
	assert.Equal(t, int64(42), deps.ChatID)
	assert.Nil(t, deps.Feed)
	assert.Len(t, deps.Schedule.PriceUpdate, 7)
	assert.Empty(t, deps.Schedule.NewsBrief)
	assert.Equal(t, "0 7 * * *", deps.Schedule.Calendar)
}

func TestNewWithFeedAndOffSchedules(t *testing.T) {
	cfg := load(t, `
[schedule]
price_update = ["off", "0 9 * * *"]
calendar = "off"
[feed]
enabled = true
username = "someone"
send_delay_ms = 10
`)
	var out bytes.Buffer
	gw := console.NewGatewayIO(&out, strings.NewReader(""), 42)
	sc, err := New(context.Background(), cfg, WithGateway(gw, nil))
	require.NoError(t, err)
	defer sc.Close()

	require.NotNil(t, sc.Feed)
	assert.Equal(t, "twitter", sc.Feed.Name())

	deps := sc.DispatchDeps()
	assert.NotNil(t, deps.Feed)
	assert.Nil(t, deps.Inbound)
	assert.Equal(t, []string{"0 9 * * *"}, deps.Schedule.PriceUpdate)
	assert.Empty(t, deps.Schedule.Calendar)
	assert.Equal(t, "@every 5m", deps.Schedule.FeedCheck)
	assert.Equal(t, "someone", deps.FeedUser)
}

func TestNewUnknownShape(t *testing.T) {
	cfg := load(t, `
[[instruments]]
key = "x"
label = "X"
[[instruments.sources]]
url = "https://example.com"
shape = "no-such-shape"
`)
	_, err := New(context.Background(), cfg, WithoutGateway())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-shape")
}

func TestNewStorageFailure(t *testing.T) {
	cfg := load(t, "")
	cfg.Storage.Redis.Enabled = true
	cfg.Storage.Redis.Addr = "127.0.0.1:1"

	_, err := New(context.Background(), cfg, WithoutGateway())
	require.ErrorIs(t, err, ErrStorageInitFailed)
}

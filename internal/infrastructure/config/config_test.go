package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbot/internal/domain"
)

const minimal = `
[telegram]
token = "123:abc"
chat_id = -1001
`

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(minimal)
	require.NoError(t, err)

	assert.Equal(t, "Asia/Shanghai", cfg.App.Timezone)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Len(t, cfg.Schedule.PriceUpdate, 7)
	assert.Equal(t, "@every 5m", cfg.Schedule.FeedCheck)
	assert.Empty(t, cfg.Schedule.NewsBrief, "news brief is off by default")
	assert.Equal(t, 100, cfg.Feed.SeenLimit)
	assert.Equal(t, 500, cfg.AI.MaxTokens)
	assert.InDelta(t, 0.7, cfg.AI.Temperature, 1e-9)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.Model)
	assert.Len(t, cfg.Feed.Mirrors, 4)
	assert.Len(t, cfg.Instruments, 12)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout())
}

func TestDefaultInstrumentsBuild(t *testing.T) {
	cfg, err := Parse(minimal)
	require.NoError(t, err)

	insts, err := cfg.BuildInstruments()
	require.NoError(t, err)
	require.Len(t, insts, 12)

	keys := make([]string, 0, len(insts))
	for _, in := range insts {
		keys = append(keys, in.Key)
		require.NotEmpty(t, in.Sources, in.Key)
		for _, s := range in.Sources {
			assert.NotEmpty(t, s.Name)
			assert.Equal(t, 15*time.Second, s.Timeout)
		}
	}
	assert.Equal(t, []string{"sse", "btc", "eth", "gold", "shanghai_gold", "dxy", "usdcny",
		"oil", "nasdaq", "dow", "hsi", "hstech"}, keys)

	sse := insts[0]
	assert.Equal(t, domain.SessionFull, sse.Session)
	require.NotNil(t, sse.Hours)
	assert.Len(t, sse.Hours.Windows, 2)

	btc := insts[1]
	assert.Equal(t, domain.TransportWS, btc.Sources[1].Transport)
	assert.Equal(t, "binance-ticker", btc.Sources[1].Shape)

	sg := insts[4]
	assert.True(t, sg.ClosedShowsPrev)
	assert.Equal(t, "118.SHAU", sg.Sources[0].Params["secid"])
}

func TestParseCustomInstruments(t *testing.T) {
	cfg, err := Parse(minimal + `
[[instruments]]
key = "gold"
label = "Gold"
glyph = "G"
decimals = 1
session = "weekend"

[[instruments.sources]]
name = "primary"
url = "https://example.com/gold"
shape = "yahoo-chart"
timeout_sec = 3

[[instruments.sources]]
url = "https://example.com/gold2"
shape = "sina-hq"
`)
	require.NoError(t, err)

	insts, err := cfg.BuildInstruments()
	require.NoError(t, err)
	require.Len(t, insts, 1)

	g := insts[0]
	assert.Equal(t, 1, g.Format.Decimals)
	assert.Equal(t, domain.SessionWeekend, g.Session)
	assert.Equal(t, 3*time.Second, g.Sources[0].Timeout)
	assert.Equal(t, "sina-hq#1", g.Sources[1].Name)
	assert.Equal(t, domain.TransportHTTP, g.Sources[1].Transport)
}

func TestValidateErrors(t *testing.T) {
	cases := map[string]string{
		"missing token":   "[telegram]\nchat_id = 1\n",
		"missing chat id": "[telegram]\ntoken = \"x\"\n",
		"bad schedule":    minimal + "[schedule]\nfeed_check = \"every five\"\n",
		"ai without key":  minimal + "[ai]\nenabled = true\n",
		"bad provider":    minimal + "[ai]\nprovider = \"other\"\n",
		"feed no user":    minimal + "[feed]\nenabled = true\n",
		"redis no addr":   minimal + "[storage.redis]\nenabled = true\n",
		"bad mirror kind": minimal + "[feed]\n[[feed.mirrors]]\nkind = \"x\"\nurl = \"https://a\"\n",
		"bad timezone":    "[app]\ntimezone = \"Mars/Base\"\n" + minimal,
		"duplicate key": minimal + `
[[instruments]]
key = "a"
label = "A"
[[instruments.sources]]
url = "https://a"
shape = "yahoo-chart"
[[instruments]]
key = "a"
label = "A2"
[[instruments.sources]]
url = "https://b"
shape = "yahoo-chart"
`,
		"instrument without sources": minimal + "[[instruments]]\nkey = \"a\"\nlabel = \"A\"\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(data)
			assert.Error(t, err)
		})
	}
}

func TestDryRunNeedsNoToken(t *testing.T) {
	cfg, err := Parse("[app]\ndry_run = true\n")
	require.NoError(t, err)
	assert.True(t, cfg.App.DryRun)
}

func TestLoadWithEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ai]\nenabled = true\n[telegram]\nchat_id = 5\n"), 0o600))

	t.Setenv(EnvTelegramToken, "env-token")
	t.Setenv(EnvGeminiAPIKey, "env-key")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.Equal(t, "env-key", cfg.AI.APIKey)
}

func TestApplyEnvChatID(t *testing.T) {
	var cfg Config
	env := map[string]string{EnvTelegramChatID: "-100123"}
	require.NoError(t, applyEnv(&cfg, func(k string) string { return env[k] }))
	assert.Equal(t, int64(-100123), cfg.Telegram.ChatID)

	env[EnvTelegramChatID] = "abc"
	assert.Error(t, applyEnv(&cfg, func(k string) string { return env[k] }))
}

func TestScheduleOff(t *testing.T) {
	cfg, err := Parse(minimal + "[schedule]\nfeed_check = \"off\"\ncalendar = \"OFF\"\n")
	require.NoError(t, err)
	assert.True(t, Off(cfg.Schedule.FeedCheck))
	assert.True(t, Off(cfg.Schedule.Calendar))
	assert.True(t, Off(cfg.Schedule.NewsBrief))
	assert.False(t, Off(cfg.Schedule.PriceUpdate[0]))
}

func TestLoadMods(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[app]\nlog_level = \"warn\"\n"), 0o600))
	t.Setenv(EnvTelegramToken, "")

	_, err := Load(path)
	require.Error(t, err, "token is required outside dry run")

	cfg, err := Load(path, func(c *Config) { c.App.DryRun = true })
	require.NoError(t, err)
	assert.True(t, cfg.App.DryRun)
	assert.Equal(t, "warn", cfg.App.LogLevel)
}

func TestLoadSampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "..", "configs", "config.toml"), func(c *Config) { c.App.DryRun = true })
	require.NoError(t, err)
	assert.True(t, cfg.Storage.SQLite.Enabled)
	assert.True(t, Off(cfg.Schedule.NewsBrief))
	assert.Len(t, cfg.Feed.Mirrors, 4)
	assert.Len(t, cfg.Instruments, 12)
}

func TestPriceUpdateOffEntry(t *testing.T) {
	cfg, err := Parse(minimal + "[schedule]\nprice_update = [\"off\", \"0 9 * * *\"]\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"off", "0 9 * * *"}, cfg.Schedule.PriceUpdate)

	_, err = Parse(minimal + "[schedule]\nprice_update = [\"off\", \"every nine\"]\n")
	assert.Error(t, err, "entries that are not off are still checked")
}

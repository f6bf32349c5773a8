package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_Validate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 60*time.Second, cfg.Cache.TTL.Duration)
	assert.Equal(t, 100, cfg.Polymarket.MarketLimit)
	assert.Equal(t, 365, cfg.Server.MaxHistoryDays)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "verbose"
	cfg.Polymarket.GammaHost = ""
	cfg.Cache.TTL = Duration{}
	cfg.Server.Port = 70000
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = ""
	cfg.S3.Enabled = true
	cfg.S3.Bucket = ""
	cfg.Notify.TelegramToken = "token-only"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		`unknown log_level "verbose"`,
		"polymarket: gamma_host",
		"cache: ttl",
		"server: port must be 1-65535, got 70000",
		"redis: addr",
		"s3: bucket",
		"notify: telegram_token and telegram_chat_id",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidate_DisabledSectionsSkipped(t *testing.T) {
	cfg := Defaults()
	cfg.Redis.Addr = ""
	cfg.S3.Bucket = ""
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "polydash.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "debug"

[cache]
ttl = "15s"

[server]
port = 9090
rate_limit = 30
rate_window = "30s"

[polymarket]
market_limit = 50
`), 0o600))

	t.Setenv("POLYDASH_SERVER_PORT", "7070")
	t.Setenv("POLYDASH_SERVER_CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("POLYDASH_REDIS_ENABLED", "true")
	t.Setenv("POLYDASH_POLYMARKET_TIMEOUT", "5s")
	t.Setenv("POLYDASH_SERVER_MAX_HISTORY_DAYS", "not-a-number")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 15*time.Second, cfg.Cache.TTL.Duration)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Server.RateLimit)
	assert.Equal(t, 30*time.Second, cfg.Server.RateWindow.Duration)
	assert.Equal(t, 50, cfg.Polymarket.MarketLimit)
	assert.Equal(t, 5*time.Second, cfg.Polymarket.Timeout.Duration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 365, cfg.Server.MaxHistoryDays, "unparsable override is ignored")
	assert.Equal(t, "https://gamma-api.polymarket.com", cfg.Polymarket.GammaHost)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults().Polymarket, cfg.Polymarket)
}

func TestLoad_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[cache]\nttl = \"soon\"\n"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Server.APIKey = "key"
	cfg.S3.SecretKey = "secret"
	cfg.Notify.DiscordWebhookURL = "https://discord.example/hook"

	out := RedactedConfig(&cfg)
	assert.Equal(t, "***", out.Server.APIKey)
	assert.Equal(t, "***", out.S3.SecretKey)
	assert.Equal(t, "***", out.Notify.DiscordWebhookURL)
	assert.Empty(t, out.Redis.Password)
	assert.Equal(t, "key", cfg.Server.APIKey)

	out.Server.CORSOrigins[0] = "mutated"
	assert.NotEqual(t, "mutated", cfg.Server.CORSOrigins[0])
}

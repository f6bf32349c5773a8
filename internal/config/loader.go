package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies POLYDASH_* environment variable overrides, and
// returns the final Config. An empty path or a missing file leaves the
// defaults in place. The returned Config has NOT been validated; the caller
// should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known POLYDASH_* environment variables and
// overwrites the corresponding Config fields when a variable is set.
func applyEnvOverrides(cfg *Config) {
	// ── Polymarket ──
	setStr(&cfg.Polymarket.GammaHost, "POLYDASH_POLYMARKET_GAMMA_HOST")
	setInt(&cfg.Polymarket.MarketLimit, "POLYDASH_POLYMARKET_MARKET_LIMIT")
	setDuration(&cfg.Polymarket.Timeout, "POLYDASH_POLYMARKET_TIMEOUT")

	// ── Cache ──
	setDuration(&cfg.Cache.TTL, "POLYDASH_CACHE_TTL")

	// ── Server ──
	setInt(&cfg.Server.Port, "POLYDASH_SERVER_PORT")
	setInt(&cfg.Server.Port, "PORT") // platform-assigned port wins
	setStringSlice(&cfg.Server.CORSOrigins, "POLYDASH_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "POLYDASH_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "POLYDASH_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "POLYDASH_SERVER_RATE_WINDOW")
	setInt(&cfg.Server.MaxHistoryDays, "POLYDASH_SERVER_MAX_HISTORY_DAYS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "POLYDASH_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "POLYDASH_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "POLYDASH_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "POLYDASH_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "POLYDASH_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "POLYDASH_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "POLYDASH_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "POLYDASH_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "POLYDASH_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "POLYDASH_S3_REGION")
	setStr(&cfg.S3.Bucket, "POLYDASH_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "POLYDASH_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "POLYDASH_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "POLYDASH_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "POLYDASH_S3_FORCE_PATH_STYLE")
	setStr(&cfg.S3.Prefix, "POLYDASH_S3_PREFIX")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "POLYDASH_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "POLYDASH_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "POLYDASH_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "POLYDASH_NOTIFY_EVENTS")
	setDuration(&cfg.Notify.Cooldown, "POLYDASH_NOTIFY_COOLDOWN")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "POLYDASH_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and parses cleanly.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies HEDGEFINDER_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known HEDGEFINDER_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Odds provider ──
	setStr(&cfg.OddsAPI.BaseURL, "HEDGEFINDER_ODDS_API_BASE_URL")
	setStr(&cfg.OddsAPI.ApiKey, "HEDGEFINDER_ODDS_API_KEY")
	setStr(&cfg.OddsAPI.Regions, "HEDGEFINDER_ODDS_API_REGIONS")
	setBool(&cfg.OddsAPI.Sample, "HEDGEFINDER_ODDS_API_SAMPLE")

	// ── Books ──
	setStr(&cfg.Books.Target, "HEDGEFINDER_BOOKS_TARGET")
	setStr(&cfg.Books.Compare, "HEDGEFINDER_BOOKS_COMPARE")
	setFloat64(&cfg.Books.VigBuffer, "HEDGEFINDER_BOOKS_VIG_BUFFER")

	// ── Detect ──
	setFloat64(&cfg.Detect.MarginBuffer, "HEDGEFINDER_DETECT_MARGIN_BUFFER")
	setFloat64(&cfg.Detect.MaxPriceAbs, "HEDGEFINDER_DETECT_MAX_PRICE_ABS")

	// ── Scan ──
	setStringSlice(&cfg.Scan.Sports, "HEDGEFINDER_SCAN_SPORTS")
	setStringSlice(&cfg.Scan.Markets, "HEDGEFINDER_SCAN_MARKETS")
	setDuration(&cfg.Scan.Interval, "HEDGEFINDER_SCAN_INTERVAL")
	setInt(&cfg.Scan.Concurrency, "HEDGEFINDER_SCAN_CONCURRENCY")
	setFloat64(&cfg.Scan.MinEVPercent, "HEDGEFINDER_SCAN_MIN_EV_PERCENT")
	setInt(&cfg.Scan.MaxAlertsPerCycle, "HEDGEFINDER_SCAN_MAX_ALERTS_PER_CYCLE")

	// ── Cache ──
	setBool(&cfg.Cache.Enabled, "HEDGEFINDER_CACHE_ENABLED")
	setDuration(&cfg.Cache.TTL, "HEDGEFINDER_CACHE_TTL")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "HEDGEFINDER_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "HEDGEFINDER_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "HEDGEFINDER_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "HEDGEFINDER_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "HEDGEFINDER_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "HEDGEFINDER_REDIS_TLS_ENABLED")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "HEDGEFINDER_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "HEDGEFINDER_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "HEDGEFINDER_SERVER_CORS_ORIGINS")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "HEDGEFINDER_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "HEDGEFINDER_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "HEDGEFINDER_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "HEDGEFINDER_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "HEDGEFINDER_MODE")
	setStr(&cfg.LogLevel, "HEDGEFINDER_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
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

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
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

func setDuration(dst *duration, key string) {
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

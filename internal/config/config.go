// Package config defines the top-level configuration for the hedge finder
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by HEDGEFINDER_* environment variables.
type Config struct {
	OddsAPI  OddsAPIConfig `toml:"odds_api"`
	Books    BooksConfig   `toml:"books"`
	Detect   DetectConfig  `toml:"detect"`
	Scan     ScanConfig    `toml:"scan"`
	Cache    CacheConfig   `toml:"cache"`
	Redis    RedisConfig   `toml:"redis"`
	Server   ServerConfig  `toml:"server"`
	Notify   NotifyConfig  `toml:"notify"`
	Mode     string        `toml:"mode"`
	LogLevel string        `toml:"log_level"`
}

// OddsAPIConfig holds the odds provider endpoint and credentials.
type OddsAPIConfig struct {
	BaseURL string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
	Regions string `toml:"regions"`
	// Sample serves built-in fixture events instead of calling the provider.
	// Useful for trying the tool without an API key.
	Sample bool `toml:"sample"`
}

// BooksConfig names the bookmaker pairing and per-book vig assumptions.
type BooksConfig struct {
	// Target is the book whose prices are evaluated for value.
	Target string `toml:"target"`
	// Compare is the reference book whose prices anchor fair value.
	Compare string `toml:"compare"`
	// Vig maps bookmaker key to the vig fraction (0-0.30) stripped from its
	// quotes before comparison. Unlisted books pass through unadjusted.
	Vig map[string]float64 `toml:"vig"`
	// VigBuffer is the extra decimal-space haircut applied on top of the
	// per-book fraction.
	VigBuffer float64 `toml:"vig_buffer"`
}

// DetectConfig holds play-detection thresholds.
type DetectConfig struct {
	// MarginBuffer is subtracted from every raw arbitrage margin, in
	// percentage points.
	MarginBuffer float64 `toml:"margin_buffer"`
	// MaxPriceAbs rejects quotes at or beyond this absolute American price.
	MaxPriceAbs float64 `toml:"max_price_abs"`
}

// ScanConfig holds the scan set and polling parameters.
type ScanConfig struct {
	Sports      []string `toml:"sports"`
	Markets     []string `toml:"markets"`
	Interval    duration `toml:"interval"`
	Concurrency int      `toml:"concurrency"`
	// MinEVPercent gates value-play alerts; arbitrage always alerts.
	MinEVPercent      float64 `toml:"min_ev_percent"`
	MaxAlertsPerCycle int     `toml:"max_alerts_per_cycle"`
}

// CacheConfig controls the event cache layered over the odds provider.
type CacheConfig struct {
	Enabled bool     `toml:"enabled"`
	TTL     duration `toml:"ttl"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		OddsAPI: OddsAPIConfig{
			BaseURL: "https://api.the-odds-api.com/v4",
			Regions: "us",
			Sample:  false,
		},
		Books: BooksConfig{
			Target:  "fanduel",
			Compare: "pinnacle",
			Vig: map[string]float64{
				"pinnacle": 0.02,
			},
			VigBuffer: 0.01,
		},
		Detect: DetectConfig{
			MarginBuffer: 0.1,
			MaxPriceAbs:  10000,
		},
		Scan: ScanConfig{
			Sports:            []string{"basketball_nba"},
			Markets:           []string{"h2h", "spreads", "totals"},
			Interval:          duration{5 * time.Minute},
			Concurrency:       4,
			MinEVPercent:      2.0,
			MaxAlertsPerCycle: 5,
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     duration{60 * time.Second},
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Notify: NotifyConfig{
			Events: []string{"arb_found", "value_play", "error"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"scan":   true,
	"watch":  true,
	"server": true,
	"full":   true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, watch, server, full)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Odds provider — a key is required whenever real requests will be made.
	if c.OddsAPI.BaseURL == "" {
		errs = append(errs, "odds_api: base_url must not be empty")
	}
	if !c.OddsAPI.Sample && c.OddsAPI.ApiKey == "" {
		errs = append(errs, "odds_api: api_key is required unless sample mode is enabled")
	}

	// Books
	if c.Books.Target == "" {
		errs = append(errs, "books: target must not be empty")
	}
	if c.Books.Compare == "" {
		errs = append(errs, "books: compare must not be empty")
	}
	if c.Books.Target != "" && c.Books.Target == c.Books.Compare {
		errs = append(errs, "books: target and compare must be different books")
	}
	for book, frac := range c.Books.Vig {
		if frac < 0 || frac > 0.30 {
			errs = append(errs, fmt.Sprintf("books: vig fraction for %q must be 0-0.30, got %g", book, frac))
		}
	}
	if c.Books.VigBuffer < 0 {
		errs = append(errs, "books: vig_buffer must be >= 0")
	}

	// Detect
	if c.Detect.MarginBuffer < 0 {
		errs = append(errs, "detect: margin_buffer must be >= 0")
	}
	if c.Detect.MaxPriceAbs <= 100 {
		errs = append(errs, fmt.Sprintf("detect: max_price_abs must exceed 100, got %g", c.Detect.MaxPriceAbs))
	}

	// Scan
	if len(c.Scan.Sports) == 0 {
		errs = append(errs, "scan: at least one sport is required")
	}
	if len(c.Scan.Markets) == 0 {
		errs = append(errs, "scan: at least one market is required")
	}
	if c.Scan.Interval.Duration < 30*time.Second {
		errs = append(errs, fmt.Sprintf("scan: interval must be at least 30s, got %s", c.Scan.Interval.Duration))
	}
	if c.Scan.Concurrency < 1 {
		errs = append(errs, "scan: concurrency must be >= 1")
	}

	// Cache
	if c.Cache.Enabled {
		if c.Cache.TTL.Duration <= 0 {
			errs = append(errs, "cache: ttl must be positive when cache is enabled")
		}
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when cache is enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bsumme/hedgefinder/internal/cache/redis"
	"github.com/bsumme/hedgefinder/internal/config"
	"github.com/bsumme/hedgefinder/internal/domain"
	"github.com/bsumme/hedgefinder/internal/engine"
	"github.com/bsumme/hedgefinder/internal/notify"
	"github.com/bsumme/hedgefinder/internal/odds"
	"github.com/bsumme/hedgefinder/internal/oddsapi"
	"github.com/bsumme/hedgefinder/internal/watch"
)

// Dependencies holds every wired subsystem handed to the operating modes.
type Dependencies struct {
	// Source serves events, possibly through the Redis cache layer.
	Source    domain.EventSource
	Collector *engine.Collector
	Watcher   *watch.Watcher
	Notifier  *notify.Notifier
}

// Wire builds the dependency graph from the configuration. It returns the
// dependencies, a cleanup function that closes everything in reverse order,
// and an error if any subsystem fails to initialize.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Odds provider ---
	client := oddsapi.NewClient(oddsapi.Config{
		BaseURL: cfg.OddsAPI.BaseURL,
		APIKey:  cfg.OddsAPI.ApiKey,
		Regions: cfg.OddsAPI.Regions,
		Sample:  cfg.OddsAPI.Sample,
	}, logger)
	deps.Source = client

	// --- Redis event cache (optional) ---
	if cfg.Cache.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		eventCache := redis.NewEventCache(redisClient, cfg.Cache.TTL.Duration)
		deps.Source = oddsapi.NewCachedSource(client, eventCache, client.Sample(), logger)
	}

	// --- Detection engine ---
	vig := odds.NewVig(cfg.Books.Vig, cfg.Books.VigBuffer)
	deps.Collector = engine.NewCollector(vig, engine.Config{
		MaxPriceAbs:  cfg.Detect.MaxPriceAbs,
		MarginBuffer: cfg.Detect.MarginBuffer,
	}, nil, logger)

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- Watcher ---
	deps.Watcher = watch.New(deps.Source, deps.Collector, deps.Notifier, watch.Config{
		Sports:            cfg.Scan.Sports,
		Markets:           cfg.Scan.Markets,
		TargetBook:        cfg.Books.Target,
		CompareBook:       cfg.Books.Compare,
		Interval:          cfg.Scan.Interval.Duration,
		Concurrency:       cfg.Scan.Concurrency,
		MinEVPercent:      cfg.Scan.MinEVPercent,
		MaxAlertsPerCycle: cfg.Scan.MaxAlertsPerCycle,
	}, logger)

	return deps, cleanup, nil
}

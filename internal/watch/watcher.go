// Package watch runs the polling loop: on each tick it fans out independent
// scans across every configured sport/market combination, merges and ranks
// the plays, and pushes qualifying ones to the notifier.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bsumme/hedgefinder/internal/domain"
	"github.com/bsumme/hedgefinder/internal/engine"
	"github.com/bsumme/hedgefinder/internal/notify"
)

// Config holds the watcher's scan set and alert thresholds.
type Config struct {
	Sports      []string
	Markets     []string
	TargetBook  string
	CompareBook string

	Interval    time.Duration
	Concurrency int

	// MinEVPercent gates value_play alerts; arbitrage plays always alert.
	MinEVPercent float64
	// MaxAlertsPerCycle caps how many alerts one cycle may emit.
	MaxAlertsPerCycle int
}

// Watcher polls the event source on a fixed interval and scans each cycle's
// payloads. Scans are independent and order-insensitive, so combinations run
// concurrently; cancellation is honored between cycles.
type Watcher struct {
	source    domain.EventSource
	collector *engine.Collector
	notifier  *notify.Notifier
	cfg       Config
	logger    *slog.Logger

	// alerted suppresses repeat alerts for the same priced play across
	// cycles, keyed by play identity, valued by game start for eviction.
	alerted map[string]time.Time
}

// New creates a Watcher. notifier may be nil to scan without alerting.
func New(source domain.EventSource, collector *engine.Collector, notifier *notify.Notifier, cfg Config, logger *slog.Logger) *Watcher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.MaxAlertsPerCycle <= 0 {
		cfg.MaxAlertsPerCycle = 5
	}
	return &Watcher{
		source:    source,
		collector: collector,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "watcher")),
		alerted:   make(map[string]time.Time),
	}
}

// Run polls until ctx is cancelled. The first cycle starts immediately; an
// in-flight cycle runs to completion before cancellation takes effect.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watcher started",
		slog.Duration("interval", w.cfg.Interval),
		slog.Int("combinations", len(w.cfg.Sports)*len(w.cfg.Markets)),
		slog.String("target_book", w.cfg.TargetBook),
		slog.String("compare_book", w.cfg.CompareBook),
	)
	defer w.logger.Info("watcher stopped")

	w.cycle(ctx)

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.cycle(ctx)
		}
	}
}

func (w *Watcher) cycle(ctx context.Context) {
	started := time.Now()
	plays, err := w.Scan(ctx)
	if err != nil {
		w.logger.Error("scan cycle failed", slog.String("error", err.Error()))
		if w.notifier != nil {
			_ = w.notifier.Notify(ctx, notify.EventError, "scan failed", err.Error())
		}
		return
	}

	arbs := 0
	for i := range plays {
		if plays[i].IsArbitrage {
			arbs++
		}
	}
	w.logger.Info("scan cycle complete",
		slog.Int("plays", len(plays)),
		slog.Int("arbitrage", arbs),
		slog.Duration("elapsed", time.Since(started)),
	)

	w.alert(ctx, plays)
	w.evictAlerted()
}

// Scan runs one full pass over every sport/market combination and returns
// the merged, ranked play list. It is also the one-shot entry point for the
// scan mode and the HTTP layer's bulk endpoint.
func (w *Watcher) Scan(ctx context.Context) ([]domain.ValuePlay, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.Concurrency)

	var (
		mu     sync.Mutex
		merged []domain.ValuePlay
	)

	for _, sport := range w.cfg.Sports {
		for _, market := range w.cfg.Markets {
			sport, market := sport, market
			g.Go(func() error {
				plays, err := w.scanOne(ctx, sport, market)
				if err != nil {
					return err
				}
				mu.Lock()
				merged = append(merged, plays...)
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	engine.Rank(merged)
	return merged, nil
}

func (w *Watcher) scanOne(ctx context.Context, sport, market string) ([]domain.ValuePlay, error) {
	books := []string{w.cfg.TargetBook, w.cfg.CompareBook}
	events, err := w.source.Events(ctx, sport, market, books)
	if err != nil {
		return nil, fmt.Errorf("fetch %s/%s: %w", sport, market, err)
	}

	plays, err := w.collector.Collect(events, market, w.cfg.TargetBook, w.cfg.CompareBook)
	if err != nil {
		return nil, fmt.Errorf("collect %s/%s: %w", sport, market, err)
	}
	return plays, nil
}

func (w *Watcher) alert(ctx context.Context, plays []domain.ValuePlay) {
	if w.notifier == nil {
		return
	}

	sent := 0
	for i := range plays {
		if sent >= w.cfg.MaxAlertsPerCycle {
			return
		}
		p := &plays[i]

		event := notify.EventValuePlay
		if p.IsArbitrage {
			event = notify.EventArbFound
		} else if p.EVPercent < w.cfg.MinEVPercent {
			continue
		}

		key := alertKey(p)
		if _, dup := w.alerted[key]; dup {
			continue
		}

		if err := w.notifier.Notify(ctx, event, notify.PlayTitle(*p), notify.PlayMessage(*p)); err != nil {
			w.logger.Warn("alert delivery failed",
				slog.String("play_id", p.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		w.alerted[key] = p.CommenceTime
		sent++
	}
}

// alertKey identifies a play by its pairing and prices, so the same line
// does not re-alert every cycle but a moved price does.
func alertKey(p *domain.ValuePlay) string {
	point := 0.0
	if p.Point != nil {
		point = *p.Point
	}
	return fmt.Sprintf("%s|%s|%s|%s|%g|%g|%g",
		p.EventID, p.MarketKey, p.OutcomeName, p.Description, point, p.TargetPrice, p.ComparePrice)
}

// evictAlerted drops suppression entries for games that have started.
func (w *Watcher) evictAlerted() {
	now := time.Now()
	for key, commence := range w.alerted {
		if commence.Before(now) {
			delete(w.alerted, key)
		}
	}
}

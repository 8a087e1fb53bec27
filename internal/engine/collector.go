package engine

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/bsumme/hedgefinder/internal/domain"
	"github.com/bsumme/hedgefinder/internal/odds"
)

const (
	// DefaultMaxPriceAbs rejects corrupt quotes: an American price at or
	// beyond this magnitude implies an effectively certain outcome and is
	// feed noise, not a real line.
	DefaultMaxPriceAbs = 10000

	// DefaultMarginBuffer is subtracted from every computed arbitrage margin
	// so that fair two-way pairings hovering at exactly 0% are not reported
	// as arbitrage. Tunable via detect.margin_buffer in config.
	DefaultMarginBuffer = 0.1
)

// Config tunes the collector's data-quality guards and noise thresholds.
type Config struct {
	MaxPriceAbs  float64
	MarginBuffer float64
}

// DefaultConfig returns the documented default thresholds.
func DefaultConfig() Config {
	return Config{
		MaxPriceAbs:  DefaultMaxPriceAbs,
		MarginBuffer: DefaultMarginBuffer,
	}
}

// Collector scans event lists for value plays: target-book outcomes whose
// vig-adjusted price beats the comparison book's quote for the same outcome,
// with a two-way arbitrage margin when the comparison book also prices the
// opposite side.
type Collector struct {
	vig    *odds.Vig
	cfg    Config
	now    func() time.Time
	logger *slog.Logger
}

// NewCollector creates a Collector. now may be nil, defaulting to time.Now;
// tests inject a fixed clock.
func NewCollector(vig *odds.Vig, cfg Config, now func() time.Time, logger *slog.Logger) *Collector {
	if now == nil {
		now = time.Now
	}
	if cfg.MaxPriceAbs <= 0 {
		cfg.MaxPriceAbs = DefaultMaxPriceAbs
	}
	return &Collector{
		vig:    vig,
		cfg:    cfg,
		now:    now,
		logger: logger.With(slog.String("component", "collector")),
	}
}

// Collect produces all value plays for the requested market, pairing
// targetBook against compareBook across events. Per-event data problems skip
// the event; the scan itself never fails on bad records.
func (c *Collector) Collect(events []domain.Event, marketKey, targetBook, compareBook string) ([]domain.ValuePlay, error) {
	if targetBook == compareBook {
		return nil, fmt.Errorf("collect %q: %w", targetBook, domain.ErrSameBook)
	}
	if marketKey == "" {
		return nil, fmt.Errorf("collect: market key must not be empty")
	}

	now := c.now()
	plays := make([]domain.ValuePlay, 0, len(events))

	for i := range events {
		ev := &events[i]
		if err := ev.Validate(); err != nil {
			c.logger.Debug("skipping malformed event",
				slog.String("event_id", ev.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		// Started games have unreliable odds and are never actionable.
		if !ev.CommenceTime.After(now) {
			continue
		}
		plays = append(plays, c.collectEvent(ev, marketKey, targetBook, compareBook)...)
	}
	return plays, nil
}

func (c *Collector) collectEvent(ev *domain.Event, marketKey, targetBook, compareBook string) []domain.ValuePlay {
	targetQuote := ev.Quote(targetBook)
	compareQuote := ev.Quote(compareBook)
	if targetQuote == nil || compareQuote == nil {
		return nil
	}
	targetMarket := targetQuote.Market(marketKey)
	compareMarket := compareQuote.Market(marketKey)
	if targetMarket == nil || compareMarket == nil {
		return nil
	}

	compareOutcomes := c.filterOutcomes(compareMarket.Outcomes)
	if len(compareOutcomes) == 0 {
		return nil
	}
	flex := domain.PointFlexible(marketKey)

	var plays []domain.ValuePlay
	for _, target := range c.filterOutcomes(targetMarket.Outcomes) {
		adjusted := c.vig.Apply(target.Price, targetBook)

		match := FindMatch(compareOutcomes, MatchSpec{
			Name:        target.Name,
			Point:       target.Point,
			Description: target.Description,
			Flex:        flex,
		})
		if match == nil {
			continue
		}

		play := domain.ValuePlay{
			ID:           uuid.NewString(),
			EventID:      ev.ID,
			Matchup:      ev.Matchup(),
			CommenceTime: ev.CommenceTime,
			MarketKey:    marketKey,
			OutcomeName:  target.Name,
			Point:        target.Point,
			Description:  target.Description,
			TargetBook:   targetBook,
			CompareBook:  compareBook,
			ComparePrice: match.Price,
			TargetPrice:  adjusted,
			EVPercent:    odds.EVPercent(adjusted, match.Price),
		}

		if opp := FindMatch(compareOutcomes, MatchSpec{
			Name:        target.Name,
			Point:       target.Point,
			Description: target.Description,
			Flex:        flex,
			Opposite:    true,
		}); opp != nil {
			hedgeEV := odds.EVPercent(opp.Price, adjusted)
			margin := c.arbMargin(adjusted, opp.Price)
			play.NoVigReversePrice = &opp.Price
			play.HedgeEVPercent = &hedgeEV
			play.ArbMarginPercent = &margin
			play.IsArbitrage = margin > 0
		}

		plays = append(plays, play)
	}
	return plays
}

// arbMargin is the guaranteed-profit fraction of betting both sides, in
// percent, less the configured noise buffer.
func (c *Collector) arbMargin(adjustedTarget, oppositeCompare float64) float64 {
	inv := 1/odds.AmericanToDecimal(adjustedTarget) + 1/odds.AmericanToDecimal(oppositeCompare)
	return (1-inv)*100 - c.cfg.MarginBuffer
}

// filterOutcomes drops outcomes with missing names, missing prices, or
// implausible price magnitudes.
func (c *Collector) filterOutcomes(in []domain.Outcome) []domain.Outcome {
	out := make([]domain.Outcome, 0, len(in))
	for _, o := range in {
		if o.Name == "" || o.Price == 0 {
			continue
		}
		if math.Abs(o.Price) >= c.cfg.MaxPriceAbs {
			continue
		}
		out = append(out, o)
	}
	return out
}

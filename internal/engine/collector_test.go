package engine

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/bsumme/hedgefinder/internal/domain"
	"github.com/bsumme/hedgefinder/internal/odds"
)

var testNow = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestCollector uses an empty vig table so adjusted prices equal the raw
// quotes and assertions can be computed by hand.
func newTestCollector() *Collector {
	vig := odds.NewVig(nil, odds.DefaultVigBuffer)
	return NewCollector(vig, DefaultConfig(), func() time.Time { return testNow }, testLogger())
}

func testEvent(id string, commence time.Time, books ...domain.BookmakerQuote) domain.Event {
	return domain.Event{
		ID:           id,
		SportKey:     "basketball_nba",
		HomeTeam:     "Boston Celtics",
		AwayTeam:     "Miami Heat",
		CommenceTime: commence,
		Bookmakers:   books,
	}
}

func h2hQuote(book string, outcomes ...domain.Outcome) domain.BookmakerQuote {
	return domain.BookmakerQuote{
		Key:     book,
		Markets: []domain.Market{{Key: domain.MarketMoneyline, Outcomes: outcomes}},
	}
}

func TestCollectRejectsSameBook(t *testing.T) {
	c := newTestCollector()
	_, err := c.Collect(nil, domain.MarketMoneyline, "fanduel", "fanduel")
	if !errors.Is(err, domain.ErrSameBook) {
		t.Fatalf("err = %v, want ErrSameBook", err)
	}
}

func TestCollectSkipsStartedGames(t *testing.T) {
	c := newTestCollector()
	started := testEvent("ev1", testNow.Add(-30*time.Minute),
		h2hQuote("fanduel",
			domain.Outcome{Name: "Boston Celtics", Price: -110},
			domain.Outcome{Name: "Miami Heat", Price: -110},
		),
		h2hQuote("pinnacle",
			domain.Outcome{Name: "Boston Celtics", Price: -125},
			domain.Outcome{Name: "Miami Heat", Price: 115},
		),
	)

	plays, err := c.Collect([]domain.Event{started}, domain.MarketMoneyline, "fanduel", "pinnacle")
	if err != nil {
		t.Fatal(err)
	}
	if len(plays) != 0 {
		t.Fatalf("got %d plays for a started game, want 0", len(plays))
	}
}

func TestCollectSkipsUndatedAndMalformedEvents(t *testing.T) {
	c := newTestCollector()
	undated := testEvent("ev1", time.Time{},
		h2hQuote("fanduel", domain.Outcome{Name: "Boston Celtics", Price: -110}),
		h2hQuote("pinnacle", domain.Outcome{Name: "Boston Celtics", Price: -125}),
	)
	noID := testEvent("", testNow.Add(time.Hour),
		h2hQuote("fanduel", domain.Outcome{Name: "Boston Celtics", Price: -110}),
		h2hQuote("pinnacle", domain.Outcome{Name: "Boston Celtics", Price: -125}),
	)
	good := testEvent("ev2", testNow.Add(time.Hour),
		h2hQuote("fanduel",
			domain.Outcome{Name: "Boston Celtics", Price: -110},
		),
		h2hQuote("pinnacle",
			domain.Outcome{Name: "Boston Celtics", Price: -125},
			domain.Outcome{Name: "Miami Heat", Price: 115},
		),
	)

	plays, err := c.Collect([]domain.Event{undated, noID, good}, domain.MarketMoneyline, "fanduel", "pinnacle")
	if err != nil {
		t.Fatal(err)
	}
	if len(plays) != 1 || plays[0].EventID != "ev2" {
		t.Fatalf("got %d plays, want 1 from ev2 only", len(plays))
	}
}

func TestCollectOneSidedTargetProducesNoPlays(t *testing.T) {
	// Target book posts only the home side; comparison book only prices the
	// away side. Nothing can be paired and nothing may be synthesized.
	c := newTestCollector()
	ev := testEvent("ev1", testNow.Add(time.Hour),
		h2hQuote("fanduel", domain.Outcome{Name: "Boston Celtics", Price: -125}),
		h2hQuote("pinnacle", domain.Outcome{Name: "Miami Heat", Price: 105}),
	)

	plays, err := c.Collect([]domain.Event{ev}, domain.MarketMoneyline, "fanduel", "pinnacle")
	if err != nil {
		t.Fatal(err)
	}
	if len(plays) != 0 {
		t.Fatalf("got %d plays from a one-sided market, want 0", len(plays))
	}
}

func TestCollectFiltersImplausiblePrices(t *testing.T) {
	c := newTestCollector()
	ev := testEvent("ev1", testNow.Add(time.Hour),
		h2hQuote("fanduel",
			domain.Outcome{Name: "Boston Celtics", Price: 25000}, // corrupt
			domain.Outcome{Name: "Miami Heat", Price: -110},
		),
		h2hQuote("pinnacle",
			domain.Outcome{Name: "Boston Celtics", Price: -10000}, // at the guard
			domain.Outcome{Name: "Miami Heat", Price: -120},
			domain.Outcome{Name: "", Price: -105}, // unnamed
		),
	)

	plays, err := c.Collect([]domain.Event{ev}, domain.MarketMoneyline, "fanduel", "pinnacle")
	if err != nil {
		t.Fatal(err)
	}
	if len(plays) != 1 || plays[0].OutcomeName != "Miami Heat" {
		t.Fatalf("plays = %+v, want exactly the Miami Heat pairing", plays)
	}
	// The corrupt Celtics quote was dropped from the comparison list, so the
	// Heat pairing has no opposite side.
	if plays[0].ArbMarginPercent != nil {
		t.Fatalf("margin = %v, want nil after opposite side was filtered", *plays[0].ArbMarginPercent)
	}
}

func TestCollectMissingOppositeYieldsNilMargin(t *testing.T) {
	c := newTestCollector()
	ev := testEvent("ev1", testNow.Add(time.Hour),
		h2hQuote("fanduel", domain.Outcome{Name: "Boston Celtics", Price: -110}),
		h2hQuote("pinnacle", domain.Outcome{Name: "Boston Celtics", Price: -125}),
	)

	plays, err := c.Collect([]domain.Event{ev}, domain.MarketMoneyline, "fanduel", "pinnacle")
	if err != nil {
		t.Fatal(err)
	}
	if len(plays) != 1 {
		t.Fatalf("got %d plays, want 1", len(plays))
	}
	p := plays[0]
	if p.ArbMarginPercent != nil {
		t.Errorf("margin = %v, want nil (absence of data, not a 0%% hedge)", *p.ArbMarginPercent)
	}
	if p.IsArbitrage {
		t.Error("IsArbitrage = true without an opposite side")
	}
	if p.NoVigReversePrice != nil {
		t.Errorf("reverse price = %v, want nil", *p.NoVigReversePrice)
	}
}

func TestCollectFairHedgeIsNotArbitrage(t *testing.T) {
	// -105 / +105 is the textbook fair two-way: margin lands at just the
	// noise buffer below zero.
	c := newTestCollector()
	ev := testEvent("ev1", testNow.Add(time.Hour),
		h2hQuote("fanduel", domain.Outcome{Name: "Boston Celtics", Price: -105}),
		h2hQuote("pinnacle",
			domain.Outcome{Name: "Boston Celtics", Price: -105},
			domain.Outcome{Name: "Miami Heat", Price: 105},
		),
	)

	plays, err := c.Collect([]domain.Event{ev}, domain.MarketMoneyline, "fanduel", "pinnacle")
	if err != nil {
		t.Fatal(err)
	}
	if len(plays) != 1 {
		t.Fatalf("got %d plays, want 1", len(plays))
	}
	p := plays[0]
	if p.ArbMarginPercent == nil {
		t.Fatal("margin = nil, want a computed value")
	}
	if math.Abs(*p.ArbMarginPercent) > 0.2 {
		t.Errorf("margin = %v, want near 0 for a fair hedge", *p.ArbMarginPercent)
	}
	if p.IsArbitrage {
		t.Error("fair -105/+105 hedge flagged as arbitrage")
	}
}

func TestCollectWidePricingIsArbitrage(t *testing.T) {
	c := newTestCollector()
	ev := testEvent("ev1", testNow.Add(time.Hour),
		h2hQuote("fanduel", domain.Outcome{Name: "Boston Celtics", Price: -105}),
		h2hQuote("pinnacle",
			domain.Outcome{Name: "Boston Celtics", Price: -105},
			domain.Outcome{Name: "Miami Heat", Price: 250},
		),
	)

	plays, err := c.Collect([]domain.Event{ev}, domain.MarketMoneyline, "fanduel", "pinnacle")
	if err != nil {
		t.Fatal(err)
	}
	if len(plays) != 1 {
		t.Fatalf("got %d plays, want 1", len(plays))
	}
	p := plays[0]
	if p.ArbMarginPercent == nil || *p.ArbMarginPercent <= 0 {
		t.Fatalf("margin = %v, want positive", p.ArbMarginPercent)
	}
	if !p.IsArbitrage {
		t.Error("IsArbitrage = false for a -105/+250 two-way")
	}
}

func TestCollectRoundTripScenario(t *testing.T) {
	c := newTestCollector()
	ev := testEvent("ev1", testNow.Add(time.Hour),
		h2hQuote("fanduel", domain.Outcome{Name: "Boston Celtics", Price: -110}),
		h2hQuote("pinnacle",
			domain.Outcome{Name: "Boston Celtics", Price: -125},
			domain.Outcome{Name: "Miami Heat", Price: 115},
		),
	)

	plays, err := c.Collect([]domain.Event{ev}, domain.MarketMoneyline, "fanduel", "pinnacle")
	if err != nil {
		t.Fatal(err)
	}
	if len(plays) != 1 {
		t.Fatalf("got %d plays, want 1", len(plays))
	}
	p := plays[0]

	wantEV := odds.EVPercent(-110, -125)
	if math.Abs(p.EVPercent-wantEV) > 1e-9 {
		t.Errorf("EV = %v, want %v", p.EVPercent, wantEV)
	}
	if p.NoVigReversePrice == nil || *p.NoVigReversePrice != 115 {
		t.Fatalf("reverse price = %v, want 115", p.NoVigReversePrice)
	}
	wantMargin := (1-(1/odds.AmericanToDecimal(-110)+1/odds.AmericanToDecimal(115)))*100 - DefaultMarginBuffer
	if p.ArbMarginPercent == nil || math.Abs(*p.ArbMarginPercent-wantMargin) > 1e-9 {
		t.Errorf("margin = %v, want %v", p.ArbMarginPercent, wantMargin)
	}
	if p.ComparePrice != -125 || p.TargetPrice != -110 {
		t.Errorf("prices = %v / %v, want -125 / -110", p.ComparePrice, p.TargetPrice)
	}
	if p.HedgeEVPercent == nil {
		t.Error("hedge EV = nil, want informational value")
	}
	if p.ID == "" || p.Matchup != "Miami Heat @ Boston Celtics" {
		t.Errorf("play identity = %q / %q", p.ID, p.Matchup)
	}
}

func TestCollectAppliesVigToTargetOnly(t *testing.T) {
	vig := odds.NewVig(map[string]float64{"fanduel": 0.05}, odds.DefaultVigBuffer)
	c := NewCollector(vig, DefaultConfig(), func() time.Time { return testNow }, testLogger())

	ev := testEvent("ev1", testNow.Add(time.Hour),
		h2hQuote("fanduel", domain.Outcome{Name: "Boston Celtics", Price: -110}),
		h2hQuote("pinnacle",
			domain.Outcome{Name: "Boston Celtics", Price: -125},
			domain.Outcome{Name: "Miami Heat", Price: 115},
		),
	)

	plays, err := c.Collect([]domain.Event{ev}, domain.MarketMoneyline, "fanduel", "pinnacle")
	if err != nil {
		t.Fatal(err)
	}
	if len(plays) != 1 {
		t.Fatalf("got %d plays, want 1", len(plays))
	}
	p := plays[0]
	if p.TargetPrice != vig.Apply(-110, "fanduel") {
		t.Errorf("target price = %v, want vig-adjusted quote", p.TargetPrice)
	}
	if p.ComparePrice != -125 {
		t.Errorf("compare price = %v, want untouched -125", p.ComparePrice)
	}
}

func TestCollectSpreadsUseHalfPointFlex(t *testing.T) {
	c := newTestCollector()
	ev := testEvent("ev1", testNow.Add(time.Hour),
		domain.BookmakerQuote{Key: "fanduel", Markets: []domain.Market{{
			Key: domain.MarketSpreads,
			Outcomes: []domain.Outcome{
				{Name: "Boston Celtics", Price: -110, Point: fp(-4.5)},
			},
		}}},
		domain.BookmakerQuote{Key: "pinnacle", Markets: []domain.Market{{
			Key: domain.MarketSpreads,
			Outcomes: []domain.Outcome{
				{Name: "Boston Celtics", Price: -118, Point: fp(-5.0)},
				{Name: "Miami Heat", Price: 102, Point: fp(5.0)},
			},
		}}},
	)

	plays, err := c.Collect([]domain.Event{ev}, domain.MarketSpreads, "fanduel", "pinnacle")
	if err != nil {
		t.Fatal(err)
	}
	if len(plays) != 1 {
		t.Fatalf("got %d plays, want 1 via half-point flex", len(plays))
	}
}

func TestCollectMoneylineHasNoFlex(t *testing.T) {
	// Moneyline outcomes carry no points; an outcome with a spurious point on
	// one side only must not pair against a point-less quote.
	c := newTestCollector()
	ev := testEvent("ev1", testNow.Add(time.Hour),
		h2hQuote("fanduel", domain.Outcome{Name: "Boston Celtics", Price: -110, Point: fp(0.5)}),
		h2hQuote("pinnacle", domain.Outcome{Name: "Boston Celtics", Price: -125}),
	)

	plays, err := c.Collect([]domain.Event{ev}, domain.MarketMoneyline, "fanduel", "pinnacle")
	if err != nil {
		t.Fatal(err)
	}
	if len(plays) != 0 {
		t.Fatalf("got %d plays, want 0 for mismatched point presence", len(plays))
	}
}

func TestCollectMissingMarketSkipsEvent(t *testing.T) {
	c := newTestCollector()
	ev := testEvent("ev1", testNow.Add(time.Hour),
		h2hQuote("fanduel",
			domain.Outcome{Name: "Boston Celtics", Price: -110},
			domain.Outcome{Name: "Miami Heat", Price: -110},
		),
		// Comparison book offers spreads only.
		domain.BookmakerQuote{Key: "pinnacle", Markets: []domain.Market{{
			Key: domain.MarketSpreads,
			Outcomes: []domain.Outcome{
				{Name: "Boston Celtics", Price: -110, Point: fp(-4.5)},
			},
		}}},
	)

	plays, err := c.Collect([]domain.Event{ev}, domain.MarketMoneyline, "fanduel", "pinnacle")
	if err != nil {
		t.Fatal(err)
	}
	if len(plays) != 0 {
		t.Fatalf("got %d plays, want 0 when the market is absent", len(plays))
	}
}

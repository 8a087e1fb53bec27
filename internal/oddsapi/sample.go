package oddsapi

import (
	"fmt"
	"time"

	"github.com/bsumme/hedgefinder/internal/domain"
)

// sampleMatchups are deterministic fixtures for sample mode. Prices are laid
// out so a scan over them yields both plain value plays and at least one
// genuine two-way arbitrage.
var sampleMatchups = []struct {
	home, away string
	target     [2]float64 // home, away prices at the first requested book
	compare    [2]float64 // home, away prices at the second requested book
}{
	{"Boston Celtics", "Miami Heat", [2]float64{-110, -105}, [2]float64{-125, 115}},
	{"Denver Nuggets", "Phoenix Suns", [2]float64{135, -160}, [2]float64{120, -140}},
	{"Milwaukee Bucks", "New York Knicks", [2]float64{-105, -115}, [2]float64{-120, 250}},
	{"Dallas Mavericks", "Golden State Warriors", [2]float64{100, -120}, [2]float64{105, -130}},
}

// sampleEvents generates a stable event list for the given combination. The
// first two requested books get quotes; commence times sit a few hours out
// so the collector treats every game as upcoming.
func sampleEvents(sportKey, marketKey string, bookKeys []string) []domain.Event {
	if len(bookKeys) < 2 {
		return nil
	}
	base := time.Now().UTC().Truncate(time.Hour).Add(3 * time.Hour)

	events := make([]domain.Event, 0, len(sampleMatchups))
	for i, m := range sampleMatchups {
		events = append(events, domain.Event{
			ID:           fmt.Sprintf("sample-%s-%d", sportKey, i+1),
			SportKey:     sportKey,
			HomeTeam:     m.home,
			AwayTeam:     m.away,
			CommenceTime: base.Add(time.Duration(i) * 30 * time.Minute),
			Bookmakers: []domain.BookmakerQuote{
				sampleQuote(bookKeys[0], marketKey, m.home, m.away, m.target),
				sampleQuote(bookKeys[1], marketKey, m.home, m.away, m.compare),
			},
		})
	}
	return events
}

func sampleQuote(book, marketKey, home, away string, prices [2]float64) domain.BookmakerQuote {
	outcomes := []domain.Outcome{
		{Name: home, Price: prices[0]},
		{Name: away, Price: prices[1]},
	}
	if domain.PointFlexible(marketKey) {
		pt := 4.5
		neg := -pt
		outcomes[0].Point = &neg
		outcomes[1].Point = &pt
	}
	return domain.BookmakerQuote{
		Key:     book,
		Title:   book,
		Markets: []domain.Market{{Key: marketKey, Outcomes: outcomes}},
	}
}

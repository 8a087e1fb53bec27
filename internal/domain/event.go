package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Well-known market keys in the-odds-api naming. Player-prop markets all use
// the "player_" prefix; PointFlexible treats them like spreads/totals.
const (
	MarketMoneyline = "h2h"
	MarketSpreads   = "spreads"
	MarketTotals    = "totals"

	playerPropPrefix = "player_"
)

// PointFlexible reports whether outcomes in the given market are quoted
// against a numeric line that books may round differently (spreads, totals,
// player props). Moneyline outcomes carry no line and never flex.
func PointFlexible(marketKey string) bool {
	switch marketKey {
	case MarketSpreads, MarketTotals:
		return true
	}
	return strings.HasPrefix(marketKey, playerPropPrefix)
}

// IsPlayerProp reports whether the market key names a player-prop market.
func IsPlayerProp(marketKey string) bool {
	return strings.HasPrefix(marketKey, playerPropPrefix)
}

// Outcome is one side of a bet: a team, a player threshold, or Over/Under.
// Price is in American-odds convention. Point is the spread margin, total
// threshold, or prop threshold when the market has one. Description carries
// the player qualifier on prop markets.
type Outcome struct {
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Point       *float64 `json:"point,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Market is one bet type posted by a single bookmaker.
type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// BookmakerQuote is one bookmaker's posted markets for an event.
type BookmakerQuote struct {
	Key     string   `json:"key"`
	Title   string   `json:"title,omitempty"`
	Markets []Market `json:"markets"`
}

// Market returns the bookmaker's market with the given key, or nil.
func (b *BookmakerQuote) Market(key string) *Market {
	for i := range b.Markets {
		if b.Markets[i].Key == key {
			return &b.Markets[i]
		}
	}
	return nil
}

// Event is a single game instance with per-bookmaker quotes. Events are
// fetched fresh each poll cycle and never mutated after receipt.
type Event struct {
	ID           string           `json:"id"`
	SportKey     string           `json:"sport_key"`
	HomeTeam     string           `json:"home_team"`
	AwayTeam     string           `json:"away_team"`
	CommenceTime time.Time        `json:"commence_time"`
	Bookmakers   []BookmakerQuote `json:"bookmakers"`
}

// Quote returns the event's quote for the given bookmaker key, or nil.
func (e *Event) Quote(bookKey string) *BookmakerQuote {
	for i := range e.Bookmakers {
		if e.Bookmakers[i].Key == bookKey {
			return &e.Bookmakers[i]
		}
	}
	return nil
}

// Matchup returns the display label for the event, away team first.
func (e *Event) Matchup() string {
	return fmt.Sprintf("%s @ %s", e.AwayTeam, e.HomeTeam)
}

// Validate checks the required fields that every downstream consumer relies
// on. Events failing validation are dropped at the boundary rather than
// probed ad hoc inside the matching logic.
func (e *Event) Validate() error {
	var errs []string
	if e.ID == "" {
		errs = append(errs, "missing id")
	}
	if e.HomeTeam == "" {
		errs = append(errs, "missing home_team")
	}
	if e.AwayTeam == "" {
		errs = append(errs, "missing away_team")
	}
	if e.CommenceTime.IsZero() {
		errs = append(errs, "missing commence_time")
	}
	if len(errs) > 0 {
		return errors.New("invalid event: " + strings.Join(errs, ", "))
	}
	return nil
}

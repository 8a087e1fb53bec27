package notify

import (
	"fmt"
	"strings"

	"github.com/bsumme/hedgefinder/internal/domain"
)

// Event types the watcher emits. Operators filter on these via
// notify.events in config.
const (
	EventArbFound  = "arb_found"
	EventValuePlay = "value_play"
	EventError     = "error"
)

// PlayTitle builds a one-line alert title for a play.
func PlayTitle(p domain.ValuePlay) string {
	if p.IsArbitrage && p.ArbMarginPercent != nil {
		return fmt.Sprintf("ARB %.2f%% — %s", *p.ArbMarginPercent, p.Matchup)
	}
	return fmt.Sprintf("+EV %.2f%% — %s", p.EVPercent, p.Matchup)
}

// PlayMessage builds the alert body: the bet, both books' prices, and the
// hedge numbers when present.
func PlayMessage(p domain.ValuePlay) string {
	var b strings.Builder

	bet := p.OutcomeName
	if p.Description != "" {
		bet = p.Description + " " + bet
	}
	if p.Point != nil {
		bet = fmt.Sprintf("%s %+g", bet, *p.Point)
	}
	fmt.Fprintf(&b, "%s | %s\n", p.MarketKey, bet)
	fmt.Fprintf(&b, "%s: %+.0f (vig adj) vs %s: %+.0f\n", p.TargetBook, p.TargetPrice, p.CompareBook, p.ComparePrice)
	fmt.Fprintf(&b, "EV %.2f%%", p.EVPercent)

	if p.NoVigReversePrice != nil && p.ArbMarginPercent != nil {
		fmt.Fprintf(&b, " | reverse %+.0f, margin %.2f%%", *p.NoVigReversePrice, *p.ArbMarginPercent)
	}
	fmt.Fprintf(&b, "\nstarts %s", p.CommenceTime.Format("Jan 2 15:04 MST"))
	return b.String()
}

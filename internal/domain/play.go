package domain

import "time"

// ValuePlay is one scored pairing of a target-book outcome against the
// comparison book's quote for the same outcome. It is derived data: it owns
// no identity beyond the pairing it was computed from, plus a generated ID
// for alerting and display.
type ValuePlay struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	Matchup      string    `json:"matchup"`
	CommenceTime time.Time `json:"commence_time"`
	MarketKey    string    `json:"market_key"`

	OutcomeName string   `json:"outcome_name"`
	Point       *float64 `json:"point,omitempty"`
	Description string   `json:"description,omitempty"`

	TargetBook  string `json:"target_book"`
	CompareBook string `json:"compare_book"`

	// ComparePrice is the comparison book's quote for the matched outcome,
	// treated as the reference "fair" price. NoVigReversePrice is that book's
	// opposite-side quote when one was found.
	ComparePrice      float64  `json:"compare_price"`
	NoVigReversePrice *float64 `json:"novig_reverse_price,omitempty"`

	// TargetPrice is the target book's quote after vig adjustment.
	TargetPrice float64 `json:"target_price"`

	EVPercent      float64  `json:"ev_percent"`
	HedgeEVPercent *float64 `json:"hedge_ev_percent,omitempty"`

	// ArbMarginPercent is nil when no opposite side was priced; absence of
	// data is never reported as a 0% margin.
	ArbMarginPercent *float64 `json:"arb_margin_percent,omitempty"`
	IsArbitrage      bool     `json:"is_arbitrage"`
}

// Parlay is a naive multi-leg combination of ranked plays, one leg per event.
type Parlay struct {
	Legs []ValuePlay `json:"legs"`

	// CombinedDecimalOdds is the product of the legs' adjusted target prices
	// in decimal form. CombinedProbability is the product of the legs'
	// comparison-book implied probabilities.
	CombinedDecimalOdds float64 `json:"combined_decimal_odds"`
	CombinedProbability float64 `json:"combined_probability"`
	EVPercent           float64 `json:"ev_percent"`
}

// Package odds provides pure American/decimal odds conversions, implied
// probability, expected value, and the vig-adjustment model used when
// treating one book's prices as the fair reference.
package odds

import "math"

// AmericanToDecimal converts American odds to decimal odds.
// +150 -> 2.50, -150 -> 1.6667. American odds of 0 are undefined; callers
// must filter missing prices before converting.
func AmericanToDecimal(american float64) float64 {
	if american > 0 {
		return 1 + american/100
	}
	return 1 + 100/math.Abs(american)
}

// DecimalToAmerican converts decimal odds back to American odds, truncating
// toward zero. Decimal odds <= 1.0 are undefined.
func DecimalToAmerican(decimal float64) float64 {
	if decimal >= 2.0 {
		return math.Trunc((decimal - 1) * 100)
	}
	return math.Trunc(-100 / (decimal - 1))
}

// ImpliedProbability returns the probability implied by American odds,
// including the book's margin. -150 -> 0.6, +150 -> 0.4.
func ImpliedProbability(american float64) float64 {
	if american > 0 {
		return 100 / (american + 100)
	}
	abs := math.Abs(american)
	return abs / (abs + 100)
}

// EVPercent estimates the edge, in percent, of betting at bookOdds when the
// reference book's implied probability is taken as the true win probability.
func EVPercent(bookOdds, referenceOdds float64) float64 {
	return (AmericanToDecimal(bookOdds)*ImpliedProbability(referenceOdds) - 1) * 100
}

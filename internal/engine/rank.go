package engine

import (
	"sort"

	"github.com/bsumme/hedgefinder/internal/domain"
	"github.com/bsumme/hedgefinder/internal/odds"
)

// noMarginSentinel ranks plays without a measurable hedge far below any play
// that has one, while keeping them ordered among themselves by EV.
const noMarginSentinel = -1_000_000

// parlayLegs is how many distinct-event legs the naive parlay combines.
const parlayLegs = 3

// rankKey is the single sort key: the arbitrage margin when present, else
// the sentinel offset by EV.
func rankKey(p *domain.ValuePlay) float64 {
	if p.ArbMarginPercent != nil {
		return *p.ArbMarginPercent
	}
	return noMarginSentinel + p.EVPercent
}

// Rank sorts plays in place, best hedge opportunity first. The sort is
// stable: ties keep input order.
func Rank(plays []domain.ValuePlay) {
	sort.SliceStable(plays, func(i, j int) bool {
		return rankKey(&plays[i]) > rankKey(&plays[j])
	})
}

// BuildParlay greedily combines the highest-EV plays into a parlay with one
// leg per distinct event. It returns nil unless plays from at least three
// distinct events are available.
func BuildParlay(plays []domain.ValuePlay) *domain.Parlay {
	byEV := make([]domain.ValuePlay, len(plays))
	copy(byEV, plays)
	sort.SliceStable(byEV, func(i, j int) bool {
		return byEV[i].EVPercent > byEV[j].EVPercent
	})

	seen := make(map[string]bool, parlayLegs)
	legs := make([]domain.ValuePlay, 0, parlayLegs)
	for _, p := range byEV {
		if seen[p.EventID] {
			continue
		}
		seen[p.EventID] = true
		legs = append(legs, p)
		if len(legs) == parlayLegs {
			break
		}
	}
	if len(legs) < parlayLegs {
		return nil
	}

	combinedDec, combinedProb := 1.0, 1.0
	for _, leg := range legs {
		combinedDec *= odds.AmericanToDecimal(leg.TargetPrice)
		combinedProb *= odds.ImpliedProbability(leg.ComparePrice)
	}

	return &domain.Parlay{
		Legs:                legs,
		CombinedDecimalOdds: combinedDec,
		CombinedProbability: combinedProb,
		EVPercent:           (combinedDec*combinedProb - 1) * 100,
	}
}

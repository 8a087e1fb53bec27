// Package engine holds the scan core: matching equivalent outcomes across
// bookmakers, scoring value plays, and ranking the results. Everything here
// is synchronous and side-effect-free; callers own fetching and fan-out.
package engine

import (
	"math"
	"strings"

	"github.com/bsumme/hedgefinder/internal/domain"
)

const (
	// pointEpsilon is the tolerance under which two published points are the
	// same line. halfPointFlex is how far apart two books may round a line
	// before it stops being the same bet.
	pointEpsilon  = 1e-9
	halfPointFlex = 0.5
)

// MatchSpec describes the outcome being searched for.
type MatchSpec struct {
	Name string
	// Point is the target line; nil when the market has none.
	Point *float64
	// Description is the player qualifier on prop markets, compared
	// case-insensitively. Empty for team markets.
	Description string
	// Flex accepts lines up to half a point apart (spreads, totals, props).
	// An exact line is always preferred when both exist.
	Flex bool
	// Opposite searches for the other side of the bet instead of the same one.
	Opposite bool
}

// FindMatch returns the best-matching outcome in outcomes, or nil. Same-side
// matches require the exact name; opposite-side matches require a different
// name, and on prop markets specifically the complementary Over/Under label
// for the same player.
func FindMatch(outcomes []domain.Outcome, spec MatchSpec) *domain.Outcome {
	var (
		best     *domain.Outcome
		bestDist = math.MaxFloat64
	)

	for i := range outcomes {
		o := &outcomes[i]

		if !nameMatches(o, spec) {
			continue
		}
		// Player qualifier gates everything else on prop markets.
		if spec.Description != "" && !strings.EqualFold(o.Description, spec.Description) {
			continue
		}

		dist, ok := pointDistance(o.Point, spec.Point, spec.Flex)
		if !ok {
			continue
		}
		if dist < pointEpsilon {
			return o // exact line, nothing can beat it
		}
		if dist < bestDist {
			best, bestDist = o, dist
		}
	}
	return best
}

func nameMatches(o *domain.Outcome, spec MatchSpec) bool {
	if !spec.Opposite {
		return o.Name == spec.Name
	}
	if comp, ok := complementaryLabel(spec.Name); ok {
		return o.Name == comp
	}
	// Two-way team markets: exactly one other side is expected.
	return o.Name != spec.Name
}

// complementaryLabel maps Over<->Under for totals and prop markets.
func complementaryLabel(name string) (string, bool) {
	switch strings.ToLower(name) {
	case "over":
		return "Under", true
	case "under":
		return "Over", true
	}
	return "", false
}

// pointDistance reports how far apart two published lines are, and whether
// that distance is acceptable. Both nil is a match at distance zero; a line
// on only one side is never a match.
func pointDistance(candidate, target *float64, flex bool) (float64, bool) {
	if candidate == nil && target == nil {
		return 0, true
	}
	if candidate == nil || target == nil {
		return 0, false
	}
	d := math.Abs(*candidate - *target)
	if d < pointEpsilon {
		return 0, true
	}
	if flex && d <= halfPointFlex+pointEpsilon {
		return d, true
	}
	return 0, false
}

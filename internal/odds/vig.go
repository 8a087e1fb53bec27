package odds

import (
	"math"
	"sort"
)

// DefaultVigBuffer is the fixed fraction added on top of a book's configured
// vig so that same-side arbitrage margins never come out razor-thin from
// rounding alone. Tunable via books.vig_buffer in config.
const DefaultVigBuffer = 0.01

// ladder is the canonical set of American-odds quotes that real books post,
// sorted ascending. American numeric order matches decimal order (the gap
// between -100 and +100 carries no quotes), so a single binary search finds
// the snap neighborhood. -100 is omitted; books quote even money as +100.
var ladder = buildLadder()

func buildLadder() []float64 {
	var pos []float64
	add := func(from, to, step float64) {
		for v := from; v < to; v += step {
			pos = append(pos, v)
		}
	}
	add(100, 200, 5)
	add(200, 300, 10)
	add(300, 500, 25)
	add(500, 1000, 50)
	add(1000, 2000, 100)
	add(2000, 10000, 500)
	pos = append(pos, 10000)

	out := make([]float64, 0, 2*len(pos)-1)
	for i := len(pos) - 1; i >= 1; i-- { // mirror, skipping -100
		out = append(out, -pos[i])
	}
	out = append(out, pos...)
	sort.Float64s(out)
	return out
}

// Vig models each bookmaker's built-in margin. Apply degrades a quote the
// way the book itself would: scale the decimal payout down by the book's vig
// fraction plus the fixed buffer, then snap to the canonical ladder without
// ever landing on a price better than (or equal to) the original.
type Vig struct {
	fractions map[string]float64
	buffer    float64
}

// NewVig builds a Vig from per-book fractions (0.0-0.30). Books absent from
// the map get no adjustment. A negative buffer falls back to the default.
func NewVig(fractions map[string]float64, buffer float64) *Vig {
	if buffer < 0 {
		buffer = DefaultVigBuffer
	}
	fr := make(map[string]float64, len(fractions))
	for k, v := range fractions {
		fr[k] = v
	}
	return &Vig{fractions: fr, buffer: buffer}
}

// Fraction returns the configured vig fraction for a book (0 if unknown).
func (v *Vig) Fraction(bookKey string) float64 {
	return v.fractions[bookKey]
}

// Apply returns the vig-adjusted American odds for the given book. Missing
// odds (0) and unconfigured books pass through unchanged.
func (v *Vig) Apply(american float64, bookKey string) float64 {
	if american == 0 {
		return american
	}
	frac := v.fractions[bookKey]
	if frac <= 0 {
		return american
	}

	adj := AmericanToDecimal(american) * (1 - frac - v.buffer)
	if adj <= 1.01 {
		adj = 1.01
	}
	raw := DecimalToAmerican(adj)

	// Degraded positive quotes stay on the positive side of the board; only
	// an even-money original may cross into negative territory.
	if american > 100 && raw < 100 {
		raw = 100
	}

	return snapWorse(raw, american)
}

// snapWorse snaps raw to the nearest ladder value that is strictly worse for
// the bettor than original. Nearest-neighbor distance is measured in decimal
// odds so the -100/+100 gap does not distort the choice.
func snapWorse(raw, original float64) float64 {
	hi := sort.SearchFloat64s(ladder, original)
	if hi == 0 {
		// Nothing on the ladder is worse than the original quote; return the
		// degraded price unsnapped rather than improving it.
		return raw
	}
	worse := ladder[:hi]

	j := sort.SearchFloat64s(worse, raw)
	if j >= len(worse) {
		return worse[len(worse)-1]
	}
	if j == 0 {
		return worse[0]
	}

	rawDec := AmericanToDecimal(raw)
	below, above := worse[j-1], worse[j]
	if math.Abs(AmericanToDecimal(below)-rawDec) <= math.Abs(AmericanToDecimal(above)-rawDec) {
		return below
	}
	return above
}

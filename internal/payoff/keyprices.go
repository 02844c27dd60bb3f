package payoff

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"options-lab/internal/models"
)

const bisectIterations = 100

// KeyPrices summarises a strategy: its distinct strikes, breakeven prices and
// max profit / max loss.
//
// The summary comes from a dense scan of [minStrike·(1-ScanRange),
// maxStrike·(1+ScanRange)] plus two probes outside it: spot 0, and the
// linear tail above the scan whose slope is the net call quantity. A sign
// change between adjacent samples ("prev<0 && curr>=0" or "prev>=0 &&
// curr<0") is a breakeven. With RefineBreakevens it is bisected to ~1e-9,
// otherwise the bracket midpoint is reported.
//
// Known limitation: a profit or loss zone narrower than one scan step can
// fall between two samples and go unreported. An extreme whose magnitude
// exceeds UnboundedThreshold is reported as unbounded even if it is finite.
func (c *Calculator) KeyPrices(legs []models.StrategyLeg) (models.KeyPriceSummary, error) {
	if err := ValidateLegs(legs); err != nil {
		return models.KeyPriceSummary{}, err
	}

	strikes := distinctStrikes(legs)
	lo := strikes[0] * (1 - c.params.ScanRange)
	hi := strikes[len(strikes)-1] * (1 + c.params.ScanRange)

	points := c.sample(legs, lo, hi, c.params.ScanSamples)
	if lo > 0 {
		floor := models.PayoffPoint{Spot: 0, Payoff: c.StrategyPayoff(0, legs)}
		points = append([]models.PayoffPoint{floor}, points...)
	}

	summary := models.KeyPriceSummary{
		Strikes:    strikes,
		Breakevens: []float64{},
	}

	maxPayoff, minPayoff := math.Inf(-1), math.Inf(1)
	for i, pt := range points {
		maxPayoff = math.Max(maxPayoff, pt.Payoff)
		minPayoff = math.Min(minPayoff, pt.Payoff)
		if i == 0 {
			continue
		}
		prev := points[i-1]
		if crosses(prev.Payoff, pt.Payoff) {
			summary.Breakevens = append(summary.Breakevens, c.breakeven(legs, prev.Spot, pt.Spot))
		}
	}

	// Past the highest strike the payoff is linear in spot.
	slope := NetCalls(legs) * c.params.ContractMultiplier
	last := points[len(points)-1]
	if slope != 0 {
		root := last.Spot - c.rawStrategyPayoff(last.Spot, legs)/slope
		if root > last.Spot && crosses(last.Payoff, slope) {
			summary.Breakevens = append(summary.Breakevens, roundPrice(root))
		}
	}

	summary.MaxProfit = models.Bounded(maxPayoff)
	if slope > 0 || maxPayoff > c.params.UnboundedThreshold {
		summary.MaxProfit = models.Unbounded()
	}
	summary.MaxLoss = models.Bounded(-minPayoff)
	if slope < 0 || -minPayoff > c.params.UnboundedThreshold {
		summary.MaxLoss = models.Unbounded()
	}

	return summary, nil
}

// crosses is the sign-change test between adjacent samples. Exact zeros count
// as non-negative.
func crosses(prev, curr float64) bool {
	return (prev < 0 && curr >= 0) || (prev >= 0 && curr < 0)
}

// breakeven locates the zero crossing inside [a, b]. The bracket comes from
// the cent-rounded scan; the root itself is bisected on the raw payoff.
func (c *Calculator) breakeven(legs []models.StrategyLeg, a, b float64) float64 {
	if !c.params.RefineBreakevens {
		return roundPrice((a + b) / 2)
	}

	fa, fb := c.rawStrategyPayoff(a, legs), c.rawStrategyPayoff(b, legs)
	// A raw payoff within half a cent of zero rounds across the sign, so the
	// raw root can sit just outside the scan bracket.
	width := b - a
	for i := 0; i < 4 && (fa < 0) == (fb < 0); i++ {
		if math.Abs(fb) < math.Abs(fa) {
			b += width
			fb = c.rawStrategyPayoff(b, legs)
		} else {
			a = math.Max(a-width, 0)
			fa = c.rawStrategyPayoff(a, legs)
		}
	}
	if (fa < 0) == (fb < 0) {
		return roundPrice(0.5 * (a + b))
	}

	negA := fa < 0
	for i := 0; i < bisectIterations && b-a > 1e-9; i++ {
		m := 0.5 * (a + b)
		fm := c.rawStrategyPayoff(m, legs)
		if fm == 0 {
			return roundPrice(m)
		}
		if (fm < 0) == negA {
			a = m
		} else {
			b = m
		}
	}
	return roundPrice(0.5 * (a + b))
}

func distinctStrikes(legs []models.StrategyLeg) []float64 {
	seen := make(map[float64]bool, len(legs))
	strikes := make([]float64, 0, len(legs))
	for _, leg := range legs {
		if !seen[leg.Strike] {
			seen[leg.Strike] = true
			strikes = append(strikes, leg.Strike)
		}
	}
	sort.Float64s(strikes)
	return strikes
}

func roundPrice(v float64) float64 {
	return decimal.NewFromFloat(v).Round(6).InexactFloat64()
}

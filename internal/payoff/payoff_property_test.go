package payoff

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"options-lab/internal/models"
)

const legCount = 4

func newProperties(t *testing.T) *gopter.Properties {
	t.Helper()
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	return gopter.NewProperties(parameters)
}

// buildLegs turns generated columns into legs. kind selects type and direction:
// bit 0 → put, bit 1 → short.
func buildLegs(strikes, premiums []float64, kinds, qtys []int) []models.StrategyLeg {
	legs := make([]models.StrategyLeg, len(strikes))
	for i := range strikes {
		leg := models.StrategyLeg{
			Type:      models.OptionTypeCall,
			Direction: models.DirectionLong,
			Strike:    strikes[i],
			Premium:   premiums[i],
			Quantity:  qtys[i],
		}
		if kinds[i]&1 == 1 {
			leg.Type = models.OptionTypePut
		}
		if kinds[i]&2 == 2 {
			leg.Direction = models.DirectionShort
		}
		legs[i] = leg
	}
	return legs
}

// Property 6: Payoff sign symmetry
//
// A long leg pays exactly the negation of the same leg held short.
func TestProperty_PayoffSignSymmetry(t *testing.T) {
	properties := newProperties(t)

	properties.Property("long payoff == -short payoff", prop.ForAll(
		func(spot, strike, premium float64, qty int, isPut bool) bool {
			leg := models.StrategyLeg{Type: models.OptionTypeCall, Direction: models.DirectionLong, Strike: strike, Premium: premium, Quantity: qty}
			if isPut {
				leg.Type = models.OptionTypePut
			}
			short := leg
			short.Direction = models.DirectionShort

			long := LegPayoff(spot, leg)
			if long != -LegPayoff(spot, short) {
				t.Logf("asymmetry for %+v at %f: long=%f short=%f", leg, spot, long, LegPayoff(spot, short))
				return false
			}
			return true
		},
		gen.Float64Range(0, 500),
		gen.Float64Range(1, 500),
		gen.Float64Range(0, 50),
		gen.IntRange(0, 10),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// Property 7: Strategy payoff additivity
//
// payoff(A ++ B) == payoff(A) + payoff(B), and leg order does not matter.
func TestProperty_StrategyAdditivity(t *testing.T) {
	properties := newProperties(t)

	properties.Property("strategy payoff is additive over leg lists", prop.ForAll(
		func(strikes, premiums []float64, kinds, qtys []int, split int, spot float64) bool {
			legs := buildLegs(strikes, premiums, kinds, qtys)
			a, b := legs[:split], legs[split:]
			whole := StrategyPayoff(spot, legs)
			parts := StrategyPayoff(spot, a) + StrategyPayoff(spot, b)
			if math.Abs(whole-parts) > 1e-6 {
				t.Logf("additivity violated at %f: whole=%f parts=%f", spot, whole, parts)
				return false
			}

			reversed := make([]models.StrategyLeg, len(legs))
			for i, leg := range legs {
				reversed[len(legs)-1-i] = leg
			}
			return StrategyPayoff(spot, reversed) == whole
		},
		gen.SliceOfN(legCount, gen.Float64Range(50, 150)),
		gen.SliceOfN(legCount, gen.Float64Range(0, 20)),
		gen.SliceOfN(legCount, gen.IntRange(0, 3)),
		gen.SliceOfN(legCount, gen.IntRange(1, 5)),
		gen.IntRange(0, legCount),
		gen.Float64Range(0, 250),
	))

	properties.TestingRun(t)
}

// Property 8: Curve domain
//
// Every curve point lies inside [c(1-r), c(1+r)], spots strictly increase,
// and both ends are hit exactly.
func TestProperty_CurveDomain(t *testing.T) {
	properties := newProperties(t)
	legs := []models.StrategyLeg{
		{Type: models.OptionTypeCall, Direction: models.DirectionLong, Strike: 100, Premium: 5},
	}

	properties.Property("curve spots are inside the domain and strictly increasing", prop.ForAll(
		func(center, rangeFraction float64, samples int) bool {
			points, err := GenerateCurve(legs, center, rangeFraction, samples)
			if err != nil {
				t.Logf("unexpected error: %v", err)
				return false
			}
			lo, hi := center*(1-rangeFraction), center*(1+rangeFraction)
			if len(points) != samples+1 || points[0].Spot != lo || points[samples].Spot != hi {
				return false
			}
			for i, pt := range points {
				if pt.Spot < lo || pt.Spot > hi {
					return false
				}
				if i > 0 && pt.Spot <= points[i-1].Spot {
					return false
				}
				if pt.Payoff != StrategyPayoff(pt.Spot, legs) {
					return false
				}
			}
			return true
		},
		gen.Float64Range(1, 1000),
		gen.Float64Range(0.01, 1),
		gen.IntRange(1, 2000),
	))

	properties.TestingRun(t)
}

// Property 9: Breakevens are roots
//
// Every refined breakeven of a random strategy is a zero of the payoff.
func TestProperty_BreakevensAreRoots(t *testing.T) {
	properties := newProperties(t)
	calc := defaultCalculator

	properties.Property("payoff is ~0 at each breakeven", prop.ForAll(
		func(strikes, premiums []float64, kinds, qtys []int) bool {
			legs := buildLegs(strikes, premiums, kinds, qtys)
			summary, err := calc.KeyPrices(legs)
			if err != nil {
				t.Logf("unexpected error: %v", err)
				return false
			}
			for _, be := range summary.Breakevens {
				// Slope is at most legCount·5·100 per unit of spot; breakevens are rounded to 1e-6.
				if math.Abs(calc.rawStrategyPayoff(be, legs)) > 0.002 {
					t.Logf("payoff at breakeven %f is %f for %v", be, calc.rawStrategyPayoff(be, legs), legs)
					return false
				}
			}
			return true
		},
		gen.SliceOfN(legCount, gen.Float64Range(50, 150)),
		gen.SliceOfN(legCount, gen.Float64Range(0, 20)),
		gen.SliceOfN(legCount, gen.IntRange(0, 3)),
		gen.SliceOfN(legCount, gen.IntRange(1, 5)),
	))

	properties.TestingRun(t)
}

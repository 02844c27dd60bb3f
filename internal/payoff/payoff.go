package payoff

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	apperrors "options-lab/internal/errors"
	"options-lab/internal/models"
)

// Calculator evaluates payoffs under fixed Params. It holds no other state.
type Calculator struct {
	params Params
}

// New creates a Calculator. Invalid params are rejected.
func New(p Params) (*Calculator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{params: p}, nil
}

// Params returns the calculator settings.
func (c *Calculator) Params() Params {
	return c.params
}

var defaultCalculator = &Calculator{params: DefaultParams()}

// LegPayoff returns the payoff of one leg under DefaultParams.
func LegPayoff(spot float64, leg models.StrategyLeg) float64 {
	return defaultCalculator.LegPayoff(spot, leg)
}

// StrategyPayoff returns the payoff of a strategy under DefaultParams.
func StrategyPayoff(spot float64, legs []models.StrategyLeg) float64 {
	return defaultCalculator.StrategyPayoff(spot, legs)
}

// GenerateCurve samples a payoff curve under DefaultParams.
func GenerateCurve(legs []models.StrategyLeg, center, rangeFraction float64, samples int) ([]models.PayoffPoint, error) {
	return defaultCalculator.GenerateCurve(legs, center, rangeFraction, samples)
}

// KeyPrices extracts key price levels under DefaultParams.
func KeyPrices(legs []models.StrategyLeg) (models.KeyPriceSummary, error) {
	return defaultCalculator.KeyPrices(legs)
}

// LegPayoff returns sign·(intrinsic - premium)·qty·multiplier at spot,
// rounded to cents.
func (c *Calculator) LegPayoff(spot float64, leg models.StrategyLeg) float64 {
	raw := c.rawLegPayoff(spot, leg)
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return raw
	}
	return toCents(raw).InexactFloat64()
}

// StrategyPayoff returns the sum of the leg payoffs at spot.
func (c *Calculator) StrategyPayoff(spot float64, legs []models.StrategyLeg) float64 {
	total := decimal.Zero
	for _, leg := range legs {
		raw := c.rawLegPayoff(spot, leg)
		if math.IsNaN(raw) || math.IsInf(raw, 0) {
			return c.rawStrategyPayoff(spot, legs)
		}
		total = total.Add(toCents(raw))
	}
	return total.InexactFloat64()
}

func (c *Calculator) rawLegPayoff(spot float64, leg models.StrategyLeg) float64 {
	var intrinsic float64
	if leg.Type == models.OptionTypePut {
		intrinsic = math.Max(leg.Strike-spot, 0)
	} else {
		intrinsic = math.Max(spot-leg.Strike, 0)
	}
	return leg.Direction.Sign() * (intrinsic - leg.Premium) * float64(leg.Qty()) * c.params.ContractMultiplier
}

// rawStrategyPayoff is the unrounded payoff, used where the rounding
// plateaus would stall a root search.
func (c *Calculator) rawStrategyPayoff(spot float64, legs []models.StrategyLeg) float64 {
	var total float64
	for _, leg := range legs {
		total += c.rawLegPayoff(spot, leg)
	}
	return total
}

// NetCalls is the signed call quantity; it sets the payoff slope (per
// multiplier) above the highest strike.
func NetCalls(legs []models.StrategyLeg) float64 {
	var n float64
	for _, leg := range legs {
		if leg.Type == models.OptionTypeCall {
			n += leg.Direction.Sign() * float64(leg.Qty())
		}
	}
	return n
}

func toCents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// ValidateLegs checks that every leg is fully specified.
func ValidateLegs(legs []models.StrategyLeg) error {
	if len(legs) == 0 {
		return apperrors.NewValidationError("legs", 0, "strategy needs at least one leg")
	}
	for i, leg := range legs {
		field := fmt.Sprintf("legs[%d]", i)
		if leg.Type != models.OptionTypeCall && leg.Type != models.OptionTypePut {
			return apperrors.NewValidationError(field+".type", leg.Type, "must be CALL or PUT")
		}
		if leg.Direction != models.DirectionLong && leg.Direction != models.DirectionShort {
			return apperrors.NewValidationError(field+".direction", leg.Direction, "must be LONG or SHORT")
		}
		if !(leg.Strike > 0) || math.IsInf(leg.Strike, 0) {
			return apperrors.NewValidationError(field+".strike", leg.Strike, "must be positive")
		}
		if !(leg.Premium >= 0) || math.IsInf(leg.Premium, 0) {
			return apperrors.NewValidationError(field+".premium", leg.Premium, "must not be negative")
		}
		if leg.Quantity < 0 {
			return apperrors.NewValidationError(field+".quantity", leg.Quantity, "must be positive")
		}
	}
	return nil
}

package payoff

import (
	"fmt"
	"math"

	apperrors "options-lab/internal/errors"
	"options-lab/internal/models"
)

// GenerateCurve samples samples+1 evenly spaced points on
// [center·(1-rangeFraction), center·(1+rangeFraction)], both ends included.
// Point i is placed at lo + i·step rather than by accumulating the step, and
// the last point is pinned to the upper bound, so the curve never overshoots.
func (c *Calculator) GenerateCurve(legs []models.StrategyLeg, center, rangeFraction float64, samples int) ([]models.PayoffPoint, error) {
	if !(center > 0) || math.IsInf(center, 0) {
		return nil, apperrors.NewValidationError("center", center, "must be positive")
	}
	if !(rangeFraction > 0 && rangeFraction <= 1) {
		return nil, apperrors.NewValidationError("range", rangeFraction, "must be in (0, 1]")
	}
	if samples < 1 {
		return nil, apperrors.NewValidationError("samples", samples, "must be at least 1")
	}
	if samples > c.params.MaxCurveSamples {
		return nil, apperrors.NewValidationError("samples", samples, fmt.Sprintf("must be at most %d", c.params.MaxCurveSamples))
	}

	lo := center * (1 - rangeFraction)
	hi := center * (1 + rangeFraction)
	return c.sample(legs, lo, hi, samples), nil
}

func (c *Calculator) sample(legs []models.StrategyLeg, lo, hi float64, samples int) []models.PayoffPoint {
	step := (hi - lo) / float64(samples)
	points := make([]models.PayoffPoint, samples+1)
	for i := range points {
		spot := lo + float64(i)*step
		if i == samples {
			spot = hi
		}
		points[i] = models.PayoffPoint{
			Spot:   spot,
			Payoff: c.StrategyPayoff(spot, legs),
		}
	}
	return points
}

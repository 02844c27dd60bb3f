package pricing

import (
	"fmt"
	"math"

	apperrors "options-lab/internal/errors"
	"options-lab/internal/models"
)

// Greeks returns delta, gamma, theta (per calendar day), vega (per vol
// point) and rho (per rate point) for one option.
func (e *Engine) Greeks(in models.PricingInput, t models.OptionType) (models.OptionGreeks, error) {
	if err := Validate(in); err != nil {
		return models.OptionGreeks{}, err
	}
	if t != models.OptionTypeCall && t != models.OptionTypePut {
		return models.OptionGreeks{}, apperrors.NewValidationError("type", t, "must be CALL or PUT")
	}

	if atExpiry(in) {
		return expiryGreeks(in, t), nil
	}

	S, K, T, r, sigma := in.Spot, in.Strike, in.TimeToExpiry, in.RiskFreeRate, in.Volatility
	sqrtT := math.Sqrt(T)
	d1, d2 := dParams(in)
	pdf := e.dist.Prob(d1)
	disc := K * math.Exp(-r*T)

	g := models.OptionGreeks{
		Gamma: pdf / (S * sigma * sqrtT),
		Vega:  S * sqrtT * pdf / 100,
	}

	decay := -S * pdf * sigma / (2 * sqrtT)
	if t == models.OptionTypeCall {
		nd2 := e.dist.CDF(d2)
		g.Delta = e.dist.CDF(d1)
		g.Theta = (decay - r*disc*nd2) / DaysPerYear
		g.Rho = T * disc * nd2 / 100
	} else {
		nmd2 := e.dist.CDF(-d2)
		g.Delta = e.dist.CDF(d1) - 1
		g.Theta = (decay + r*disc*nmd2) / DaysPerYear
		g.Rho = -T * disc * nmd2 / 100
	}

	return clampGreeks(g, t), nil
}

// expiryGreeks are the limits as T → 0: a step delta and nothing else.
func expiryGreeks(in models.PricingInput, t models.OptionType) models.OptionGreeks {
	var g models.OptionGreeks
	switch t {
	case models.OptionTypeCall:
		if in.Spot > in.Strike {
			g.Delta = 1
		}
	case models.OptionTypePut:
		if in.Spot < in.Strike {
			g.Delta = -1
		}
	}
	return g
}

// clampGreeks removes rounding noise that would push a Greek across its
// theoretical bound (e.g. Φ(d1)-1 evaluating to +1e-17).
func clampGreeks(g models.OptionGreeks, t models.OptionType) models.OptionGreeks {
	g.Gamma = math.Max(g.Gamma, 0)
	g.Vega = math.Max(g.Vega, 0)
	if t == models.OptionTypeCall {
		g.Delta = math.Min(math.Max(g.Delta, 0), 1)
		g.Rho = math.Max(g.Rho, 0)
	} else {
		g.Delta = math.Min(math.Max(g.Delta, -1), 0)
		g.Rho = math.Min(g.Rho, 0)
	}
	return g
}

// PositionGreeks aggregates Greeks of several options weighted by signed
// quantity (long positive, short negative) and a contract multiplier.
func (e *Engine) PositionGreeks(in models.PricingInput, legs []models.StrategyLeg, multiplier float64) (models.OptionGreeks, error) {
	var total models.OptionGreeks
	for i, leg := range legs {
		legIn := in
		legIn.Strike = leg.Strike
		g, err := e.Greeks(legIn, leg.Type)
		if err != nil {
			return models.OptionGreeks{}, fmt.Errorf("leg %d: %w", i+1, err)
		}
		w := leg.Direction.Sign() * float64(leg.Qty()) * multiplier
		total.Delta += g.Delta * w
		total.Gamma += g.Gamma * w
		total.Theta += g.Theta * w
		total.Vega += g.Vega * w
		total.Rho += g.Rho * w
	}
	return total, nil
}

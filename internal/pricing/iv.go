package pricing

import (
	"math"

	apperrors "options-lab/internal/errors"
	"options-lab/internal/models"
)

// Solver settings for ImpliedVolatility.
const (
	ivSeed          = 0.2
	ivLowerBound    = 1e-4
	ivUpperBound    = 5.0
	ivPriceTol      = 1e-8
	ivMaxIterations = 100
)

// ImpliedVolatility returns the volatility that reproduces marketPrice.
// in.Volatility is ignored. Newton steps on vega are used while they stay
// inside the current bracket; otherwise the bracket is bisected.
func (e *Engine) ImpliedVolatility(in models.PricingInput, t models.OptionType, marketPrice float64) (float64, error) {
	in.Volatility = ivSeed
	if err := Validate(in); err != nil {
		return 0, err
	}
	if t != models.OptionTypeCall && t != models.OptionTypePut {
		return 0, apperrors.NewValidationError("type", t, "must be CALL or PUT")
	}
	if in.TimeToExpiry <= 0 {
		return 0, apperrors.NewValidationError("years", in.TimeToExpiry, "implied volatility needs time to expiry")
	}
	if math.IsNaN(marketPrice) || math.IsInf(marketPrice, 0) {
		return 0, apperrors.NewValidationError("market_price", marketPrice, "must be a finite number")
	}

	lower, upper := arbitrageBounds(in, t)
	if marketPrice <= lower || marketPrice >= upper {
		return 0, apperrors.NewValidationError("market_price", marketPrice, "outside no-arbitrage bounds")
	}

	objective := func(sigma float64) float64 {
		v := in
		v.Volatility = sigma
		return e.price(v, t) - marketPrice
	}

	lo, hi := ivLowerBound, ivUpperBound
	if objective(lo) > 0 || objective(hi) < 0 {
		return 0, apperrors.NewValidationError("market_price", marketPrice, "implied volatility outside solver range")
	}

	sigma := ivSeed
	var diff float64
	for i := 0; i < ivMaxIterations; i++ {
		diff = objective(sigma)
		if math.Abs(diff) < ivPriceTol {
			return sigma, nil
		}
		if diff > 0 {
			hi = sigma
		} else {
			lo = sigma
		}
		if hi-lo < 1e-14 {
			return sigma, nil
		}

		next := sigma - diff/e.rawVega(in, sigma)
		if math.IsNaN(next) || next <= lo || next >= hi {
			next = 0.5 * (lo + hi)
		}
		sigma = next
	}

	return 0, apperrors.NewSolverError("implied-volatility", ivMaxIterations, diff, apperrors.ErrNoConvergence)
}

// rawVega is ∂price/∂σ per unit of volatility.
func (e *Engine) rawVega(in models.PricingInput, sigma float64) float64 {
	in.Volatility = sigma
	d1, _ := dParams(in)
	return in.Spot * math.Sqrt(in.TimeToExpiry) * e.dist.Prob(d1)
}

// arbitrageBounds returns the open interval a European option price must lie in.
func arbitrageBounds(in models.PricingInput, t models.OptionType) (lower, upper float64) {
	disc := in.Strike * math.Exp(-in.RiskFreeRate*in.TimeToExpiry)
	if t == models.OptionTypePut {
		return math.Max(disc-in.Spot, 0), disc
	}
	return math.Max(in.Spot-disc, 0), in.Spot
}

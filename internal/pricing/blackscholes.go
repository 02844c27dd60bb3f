// Package pricing implements Black-Scholes option pricing, Greeks and
// implied volatility for European options on a non-dividend underlying.
//
// Every function is pure: an Engine holds only its normal distribution and
// may be shared between goroutines.
package pricing

import (
	"math"

	apperrors "options-lab/internal/errors"
	"options-lab/internal/models"
)

// DaysPerYear converts annual theta into calendar-day decay.
const DaysPerYear = 365.0

// Engine prices options with a fixed normal distribution.
type Engine struct {
	dist Distribution
}

// NewEngine creates an engine. A nil distribution selects the default.
func NewEngine(dist Distribution) *Engine {
	if dist == nil {
		dist, _ = NewDistribution("")
	}
	return &Engine{dist: dist}
}

var defaultEngine = NewEngine(nil)

// Price returns call and put values using the default engine.
func Price(in models.PricingInput) (models.OptionPrices, error) {
	return defaultEngine.Price(in)
}

// Greeks returns the Greeks of one option using the default engine.
func Greeks(in models.PricingInput, t models.OptionType) (models.OptionGreeks, error) {
	return defaultEngine.Greeks(in, t)
}

// ImpliedVolatility solves for volatility using the default engine.
func ImpliedVolatility(in models.PricingInput, t models.OptionType, marketPrice float64) (float64, error) {
	return defaultEngine.ImpliedVolatility(in, t, marketPrice)
}

// Validate checks the model preconditions: finite inputs, positive spot and
// strike, non-negative time and volatility.
func Validate(in models.PricingInput) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"spot", in.Spot},
		{"strike", in.Strike},
		{"years", in.TimeToExpiry},
		{"rate", in.RiskFreeRate},
		{"vol", in.Volatility},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return apperrors.NewValidationError(f.name, f.value, "must be a finite number")
		}
	}
	if in.Spot <= 0 {
		return apperrors.NewValidationError("spot", in.Spot, "must be positive")
	}
	if in.Strike <= 0 {
		return apperrors.NewValidationError("strike", in.Strike, "must be positive")
	}
	if in.TimeToExpiry < 0 {
		return apperrors.NewValidationError("years", in.TimeToExpiry, "must not be negative")
	}
	if in.Volatility < 0 {
		return apperrors.NewValidationError("vol", in.Volatility, "must not be negative")
	}
	return nil
}

// Price returns the theoretical call and put values.
func (e *Engine) Price(in models.PricingInput) (models.OptionPrices, error) {
	if err := Validate(in); err != nil {
		return models.OptionPrices{}, err
	}
	if atExpiry(in) {
		return models.OptionPrices{
			Call: intrinsic(models.OptionTypeCall, in.Spot, in.Strike),
			Put:  intrinsic(models.OptionTypePut, in.Spot, in.Strike),
		}, nil
	}

	d1, d2 := dParams(in)
	disc := in.Strike * math.Exp(-in.RiskFreeRate*in.TimeToExpiry)
	call := in.Spot*e.dist.CDF(d1) - disc*e.dist.CDF(d2)
	put := disc*e.dist.CDF(-d2) - in.Spot*e.dist.CDF(-d1)

	return models.OptionPrices{
		Call: math.Max(call, 0),
		Put:  math.Max(put, 0),
	}, nil
}

// price returns the value of a single option.
func (e *Engine) price(in models.PricingInput, t models.OptionType) float64 {
	p, err := e.Price(in)
	if err != nil {
		return math.NaN()
	}
	if t == models.OptionTypePut {
		return p.Put
	}
	return p.Call
}

// atExpiry reports whether the model degenerates to intrinsic value.
// A zero σ√T with T > 0 is handled the same way to avoid 0/0 in d1.
func atExpiry(in models.PricingInput) bool {
	return in.TimeToExpiry <= 0 || in.Volatility*math.Sqrt(in.TimeToExpiry) == 0
}

func dParams(in models.PricingInput) (d1, d2 float64) {
	volSqrtT := in.Volatility * math.Sqrt(in.TimeToExpiry)
	d1 = (math.Log(in.Spot/in.Strike) + (in.RiskFreeRate+0.5*in.Volatility*in.Volatility)*in.TimeToExpiry) / volSqrtT
	d2 = d1 - volSqrtT
	return d1, d2
}

func intrinsic(t models.OptionType, spot, strike float64) float64 {
	if t == models.OptionTypePut {
		return math.Max(strike-spot, 0)
	}
	return math.Max(spot-strike, 0)
}

package pricing

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution is the standard normal distribution used by the engine.
type Distribution interface {
	// CDF returns P(X <= x).
	CDF(x float64) float64
	// Prob returns the density at x.
	Prob(x float64) float64
}

// Distribution names accepted by NewDistribution.
const (
	DistributionGonum            = "gonum"
	DistributionAbramowitzStegun = "abramowitz-stegun"
)

// NewDistribution returns the distribution registered under name.
// An empty name selects the gonum implementation.
func NewDistribution(name string) (Distribution, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", DistributionGonum, "erf":
		return distuv.UnitNormal, nil
	case DistributionAbramowitzStegun, "as":
		return AbramowitzStegun{}, nil
	}
	return nil, fmt.Errorf("unknown normal distribution %q", name)
}

// Coefficients of Abramowitz & Stegun 26.2.17.
const (
	asP  = 0.2316419
	asB1 = 0.319381530
	asB2 = -0.356563782
	asB3 = 1.781477937
	asB4 = -1.821255978
	asB5 = 1.330274429
)

var invSqrt2Pi = 1 / math.Sqrt(2*math.Pi)

// AbramowitzStegun is the closed-form rational approximation of the standard
// normal CDF (absolute error below 7.5e-8). Its density is exact.
type AbramowitzStegun struct{}

// CDF evaluates the approximation. Negative arguments use the reflection
// 1-Φ(-x), so CDF(x)+CDF(-x) == 1 holds exactly.
func (AbramowitzStegun) CDF(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if x < 0 {
		return 1 - AbramowitzStegun{}.CDF(-x)
	}
	t := 1 / (1 + asP*x)
	poly := t * (asB1 + t*(asB2+t*(asB3+t*(asB4+t*asB5))))
	return 1 - AbramowitzStegun{}.Prob(x)*poly
}

// Prob returns the standard normal density.
func (AbramowitzStegun) Prob(x float64) float64 {
	return invSqrt2Pi * math.Exp(-0.5*x*x)
}

// Package payoff computes expiry payoffs of option legs and multi-leg
// strategies, samples payoff curves and extracts key price levels.
//
// Payoffs are in currency units per position: intrinsic value minus premium,
// times quantity, times the contract multiplier. Each leg is rounded to cents
// inside the engine, so strategy totals are sums of cent amounts and do not
// depend on leg order.
package payoff

import (
	"math"

	apperrors "options-lab/internal/errors"
)

// Defaults for Params.
const (
	DefaultContractMultiplier = 100
	DefaultUnboundedThreshold = 1_000_000
	DefaultScanRange          = 0.5
	DefaultScanSamples        = 1000
	DefaultMaxCurveSamples    = 10_000
)

// Params are the market conventions and scan settings of a Calculator.
type Params struct {
	// ContractMultiplier is the number of underlying units per contract.
	ContractMultiplier float64 `mapstructure:"contract_multiplier" json:"contract_multiplier"`
	// UnboundedThreshold marks a sampled extreme beyond it as unbounded.
	UnboundedThreshold float64 `mapstructure:"unbounded_threshold" json:"unbounded_threshold"`
	// ScanRange widens the key-price scan below the lowest and above the
	// highest strike, as a fraction of the strike.
	ScanRange float64 `mapstructure:"scan_range" json:"scan_range"`
	// ScanSamples is the number of intervals of the key-price scan.
	ScanSamples int `mapstructure:"scan_samples" json:"scan_samples"`
	// MaxCurveSamples caps the intervals GenerateCurve accepts.
	MaxCurveSamples int `mapstructure:"max_curve_samples" json:"max_curve_samples"`
	// RefineBreakevens bisects each sign change instead of reporting the
	// midpoint of the bracketing samples.
	RefineBreakevens bool `mapstructure:"refine_breakevens" json:"refine_breakevens"`
}

// DefaultParams returns US equity option conventions.
func DefaultParams() Params {
	return Params{
		ContractMultiplier: DefaultContractMultiplier,
		UnboundedThreshold: DefaultUnboundedThreshold,
		ScanRange:          DefaultScanRange,
		ScanSamples:        DefaultScanSamples,
		MaxCurveSamples:    DefaultMaxCurveSamples,
		RefineBreakevens:   true,
	}
}

// Validate checks that the params can drive a scan.
func (p Params) Validate() error {
	if !(p.ContractMultiplier > 0) || math.IsInf(p.ContractMultiplier, 0) {
		return apperrors.NewValidationError("contract_multiplier", p.ContractMultiplier, "must be positive")
	}
	if !(p.UnboundedThreshold > 0) {
		return apperrors.NewValidationError("unbounded_threshold", p.UnboundedThreshold, "must be positive")
	}
	if !(p.ScanRange > 0 && p.ScanRange <= 1) {
		return apperrors.NewValidationError("scan_range", p.ScanRange, "must be in (0, 1]")
	}
	if p.ScanSamples < 2 {
		return apperrors.NewValidationError("scan_samples", p.ScanSamples, "must be at least 2")
	}
	if p.MaxCurveSamples < 1 {
		return apperrors.NewValidationError("max_curve_samples", p.MaxCurveSamples, "must be at least 1")
	}
	return nil
}

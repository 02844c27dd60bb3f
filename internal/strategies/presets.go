// Package strategies builds the common multi-leg option strategies from an
// at-the-money strike and a strike width.
package strategies

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "options-lab/internal/errors"
	"options-lab/internal/models"
	"options-lab/internal/payoff"
	"options-lab/internal/pricing"
)

// DefaultWidthFraction is the strike width used when BuildSpec.Width is zero.
const DefaultWidthFraction = 0.05

// PremiumFunc quotes the premium of one option at strike with the
// underlying at spot.
type PremiumFunc func(t models.OptionType, spot, strike float64) (float64, error)

// BuildSpec parameterises a preset.
type BuildSpec struct {
	ATM float64
	// Width is the distance from ATM to the first strike away from it.
	Width float64
	// Wing is the extra distance to the protective strikes of an iron
	// condor. Defaults to Width/2.
	Wing     float64
	Quantity int
	// Premiums, when set, are used verbatim in leg order.
	Premiums []float64
	// Premium quotes every leg when Premiums is empty.
	Premium PremiumFunc
}

// Preset describes one named strategy.
type Preset struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Legs        int    `json:"legs"`
}

type shape struct {
	typ    models.OptionType
	dir    models.Direction
	offset func(w, wing float64) float64
	qty    int
}

type preset struct {
	Preset
	shapes []shape
}

func at(mult float64) func(w, wing float64) float64 {
	return func(w, _ float64) float64 { return mult * w }
}

func beyond(mult float64) func(w, wing float64) float64 {
	return func(w, wing float64) float64 { return mult * (w + wing) }
}

func p(name, desc string, shapes ...shape) preset {
	return preset{Preset: Preset{Name: name, Description: desc, Legs: len(shapes)}, shapes: shapes}
}

var (
	call, put   = models.OptionTypeCall, models.OptionTypePut
	long, short = models.DirectionLong, models.DirectionShort
	registry    = []preset{
		p("long-call", "Buy ATM Call", shape{call, long, at(0), 1}),
		p("short-call", "Sell ATM Call", shape{call, short, at(0), 1}),
		p("long-put", "Buy ATM Put", shape{put, long, at(0), 1}),
		p("short-put", "Sell ATM Put", shape{put, short, at(0), 1}),
		p("bull-call-spread", "Buy ATM Call, Sell higher strike Call",
			shape{call, long, at(0), 1}, shape{call, short, at(1), 1}),
		p("bear-put-spread", "Buy ATM Put, Sell lower strike Put",
			shape{put, long, at(0), 1}, shape{put, short, at(-1), 1}),
		p("straddle", "Buy ATM Call + Put",
			shape{call, long, at(0), 1}, shape{put, long, at(0), 1}),
		p("strangle", "Buy OTM Call + Put",
			shape{put, long, at(-1), 1}, shape{call, long, at(1), 1}),
		p("iron-condor", "Sell OTM Call + Put, Buy further OTM Call + Put",
			shape{put, long, beyond(-1), 1}, shape{put, short, at(-1), 1},
			shape{call, short, at(1), 1}, shape{call, long, beyond(1), 1}),
		p("butterfly", "Buy 1 ITM, Sell 2 ATM, Buy 1 OTM Call",
			shape{call, long, at(-1), 1}, shape{call, short, at(0), 2}, shape{call, long, at(1), 1}),
		p("ratio-spread", "Buy 1 ATM Call, Sell 2 higher strike Calls",
			shape{call, long, at(0), 1}, shape{call, short, at(1), 2}),
	}
)

// List returns the available presets in display order.
func List() []Preset {
	out := make([]Preset, len(registry))
	for i, r := range registry {
		out[i] = r.Preset
	}
	return out
}

// Names returns the preset names, sorted.
func Names() []string {
	names := make([]string, len(registry))
	for i, r := range registry {
		names[i] = r.Name
	}
	sort.Strings(names)
	return names
}

func lookup(name string) (preset, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, r := range registry {
		if r.Name == name {
			return r, true
		}
	}
	return preset{}, false
}

// Build returns the legs of the named preset.
func Build(name string, spec BuildSpec) ([]models.StrategyLeg, error) {
	r, ok := lookup(name)
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrUnknownStrategy, "%q", name)
	}
	if !(spec.ATM > 0) {
		return nil, apperrors.NewValidationError("atm", spec.ATM, "must be positive")
	}
	if spec.Width < 0 || spec.Wing < 0 {
		return nil, apperrors.NewValidationError("width", spec.Width, "must not be negative")
	}
	if len(spec.Premiums) > 0 && len(spec.Premiums) != len(r.shapes) {
		return nil, apperrors.NewValidationError("premiums", len(spec.Premiums),
			"need one premium per leg")
	}
	if len(spec.Premiums) == 0 && spec.Premium == nil {
		return nil, apperrors.NewValidationError("premiums", nil, "give premiums or a pricing model")
	}

	width := spec.Width
	if width == 0 {
		width = spec.ATM * DefaultWidthFraction
	}
	wing := spec.Wing
	if wing == 0 {
		wing = width / 2
	}
	qty := spec.Quantity
	if qty <= 0 {
		qty = 1
	}

	legs := make([]models.StrategyLeg, len(r.shapes))
	for i, s := range r.shapes {
		leg := models.StrategyLeg{
			Type:      s.typ,
			Direction: s.dir,
			Strike:    spec.ATM + s.offset(width, wing),
			Quantity:  s.qty * qty,
		}
		if len(spec.Premiums) > 0 {
			leg.Premium = spec.Premiums[i]
		} else {
			premium, err := spec.Premium(leg.Type, spec.ATM, leg.Strike)
			if err != nil {
				return nil, apperrors.Wrapf(err, "pricing %s leg", leg)
			}
			leg.Premium = premium
		}
		legs[i] = leg
	}

	if err := payoff.ValidateLegs(legs); err != nil {
		return nil, err
	}
	return legs, nil
}

// ModelPremiums quotes premiums with engine using the expiry, rate and
// volatility of market. Premiums are rounded to cents.
func ModelPremiums(engine *pricing.Engine, market models.PricingInput) PremiumFunc {
	return func(t models.OptionType, spot, strike float64) (float64, error) {
		in := market
		in.Spot = spot
		in.Strike = strike
		prices, err := engine.Price(in)
		if err != nil {
			return 0, err
		}
		v := prices.Call
		if t == models.OptionTypePut {
			v = prices.Put
		}
		return decimal.NewFromFloat(v).Round(2).InexactFloat64(), nil
	}
}

package models

import (
	"fmt"
	"strings"
	"time"
)

// OptionType is the right conveyed by an option contract.
type OptionType string

const (
	OptionTypeCall OptionType = "CALL"
	OptionTypePut  OptionType = "PUT"
)

// ParseOptionType accepts call/put in the spellings used across the app
// (CALL, C, CE for calls; PUT, P, PE for puts), case-insensitively.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CALL", "C", "CE":
		return OptionTypeCall, nil
	case "PUT", "P", "PE":
		return OptionTypePut, nil
	}
	return "", fmt.Errorf("unknown option type %q", s)
}

// UnmarshalText lets JSON payloads use any accepted spelling.
func (t *OptionType) UnmarshalText(b []byte) error {
	v, err := ParseOptionType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Direction is the side of a strategy leg.
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// ParseDirection accepts long/short and buy/sell.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LONG", "BUY", "B":
		return DirectionLong, nil
	case "SHORT", "SELL", "S":
		return DirectionShort, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

// UnmarshalText lets JSON payloads use any accepted spelling.
func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Sign returns +1 for long and -1 for short.
func (d Direction) Sign() float64 {
	if d == DirectionShort {
		return -1
	}
	return 1
}

// Opposite returns the other side.
func (d Direction) Opposite() Direction {
	if d == DirectionShort {
		return DirectionLong
	}
	return DirectionShort
}

// PricingInput holds the five scalar inputs of the Black-Scholes model.
type PricingInput struct {
	Spot         float64 `json:"spot"`
	Strike       float64 `json:"strike"`
	TimeToExpiry float64 `json:"years"` // in years
	RiskFreeRate float64 `json:"rate"`
	Volatility   float64 `json:"vol"`
}

// OptionPrices holds theoretical call and put values for one PricingInput.
type OptionPrices struct {
	Call float64 `json:"call"`
	Put  float64 `json:"put"`
}

// OptionGreeks represents option Greeks.
// Theta is per calendar day, Vega and Rho per percentage point.
type OptionGreeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
}

// StrategyLeg is one option position within a strategy.
type StrategyLeg struct {
	Type      OptionType `json:"type"`
	Direction Direction  `json:"direction"`
	Strike    float64    `json:"strike"`
	Premium   float64    `json:"premium"`
	Quantity  int        `json:"quantity,omitempty"`
}

// Qty returns the leg quantity, defaulting to 1 when unset.
func (l StrategyLeg) Qty() int {
	if l.Quantity <= 0 {
		return 1
	}
	return l.Quantity
}

// String renders the leg in the CLI leg syntax, e.g. "long call 100@5x1".
func (l StrategyLeg) String() string {
	return fmt.Sprintf("%s %s %g@%gx%d",
		strings.ToLower(string(l.Direction)), strings.ToLower(string(l.Type)),
		l.Strike, l.Premium, l.Qty())
}

// PayoffPoint is one sample of a payoff curve.
type PayoffPoint struct {
	Spot   float64 `json:"spot" csv:"spot"`
	Payoff float64 `json:"payoff" csv:"payoff"`
}

// KeyPriceSummary holds the notable price levels of a strategy.
type KeyPriceSummary struct {
	Strikes    []float64 `json:"strikes"`
	Breakevens []float64 `json:"breakevens"`
	MaxProfit  Extreme   `json:"max_profit"`
	MaxLoss    Extreme   `json:"max_loss"`
}

// OptionStrategy is a named, persisted set of legs.
type OptionStrategy struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Underlying  string        `json:"underlying,omitempty"`
	Description string        `json:"description,omitempty"`
	Legs        []StrategyLeg `json:"legs"`
	CreatedAt   time.Time     `json:"created_at,omitempty"`
	UpdatedAt   time.Time     `json:"updated_at,omitempty"`
}

// NetPremium returns the premium paid (positive) or received (negative) to
// open the strategy, per unit of the underlying.
func (s OptionStrategy) NetPremium() float64 {
	var net float64
	for _, leg := range s.Legs {
		net += leg.Direction.Sign() * leg.Premium * float64(leg.Qty())
	}
	return net
}

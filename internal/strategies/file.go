package strategies

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "options-lab/internal/errors"
	"options-lab/internal/models"
	"options-lab/internal/payoff"
)

var legPattern = regexp.MustCompile(`^(\S+)\s+(\S+)\s+([0-9.]+)\s*@\s*([0-9.]+)(?:\s*x\s*([0-9]+))?$`)

// ParseLeg parses the leg syntax "<long|short> <call|put> <strike>@<premium>[x<qty>]",
// e.g. "short put 90@2.5x2". Buy/sell and CE/PE spellings are accepted.
func ParseLeg(s string) (models.StrategyLeg, error) {
	m := legPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return models.StrategyLeg{}, apperrors.NewValidationError("leg", s,
			"expected <long|short> <call|put> <strike>@<premium>[x<qty>]")
	}

	dir, err := models.ParseDirection(m[1])
	if err != nil {
		return models.StrategyLeg{}, apperrors.NewValidationError("leg", s, err.Error())
	}
	typ, err := models.ParseOptionType(m[2])
	if err != nil {
		return models.StrategyLeg{}, apperrors.NewValidationError("leg", s, err.Error())
	}
	strike, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return models.StrategyLeg{}, apperrors.NewValidationError("leg.strike", m[3], err.Error())
	}
	premium, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return models.StrategyLeg{}, apperrors.NewValidationError("leg.premium", m[4], err.Error())
	}
	qty := 1
	if m[5] != "" {
		qty, err = strconv.Atoi(m[5])
		if err != nil {
			return models.StrategyLeg{}, apperrors.NewValidationError("leg.quantity", m[5], err.Error())
		}
		if qty < 1 {
			return models.StrategyLeg{}, apperrors.NewValidationError("leg.quantity", m[5], "must be positive")
		}
	}

	return models.StrategyLeg{Type: typ, Direction: dir, Strike: strike, Premium: premium, Quantity: qty}, nil
}

// ParseLegs parses each leg and validates the result as a strategy.
func ParseLegs(specs []string) ([]models.StrategyLeg, error) {
	legs := make([]models.StrategyLeg, 0, len(specs))
	for _, s := range specs {
		leg, err := ParseLeg(s)
		if err != nil {
			return nil, err
		}
		legs = append(legs, leg)
	}
	if err := payoff.ValidateLegs(legs); err != nil {
		return nil, err
	}
	return legs, nil
}

// File is the YAML form of a strategy. It either lists legs or names a
// preset with its build parameters.
type File struct {
	Name        string    `yaml:"name"`
	Underlying  string    `yaml:"underlying,omitempty"`
	Description string    `yaml:"description,omitempty"`
	Preset      string    `yaml:"preset,omitempty"`
	ATM         float64   `yaml:"atm,omitempty"`
	Width       float64   `yaml:"width,omitempty"`
	Wing        float64   `yaml:"wing,omitempty"`
	Quantity    int       `yaml:"quantity,omitempty"`
	Premiums    []float64 `yaml:"premiums,omitempty"`
	Legs        []fileLeg `yaml:"legs,omitempty"`
}

type fileLeg struct {
	Type      string  `yaml:"type"`
	Direction string  `yaml:"direction"`
	Strike    float64 `yaml:"strike"`
	Premium   float64 `yaml:"premium"`
	Quantity  int     `yaml:"quantity,omitempty"`
}

// LoadFile reads a strategy from a YAML file. Presets without explicit
// premiums are quoted with quote, which may be nil when the file carries
// premiums.
func LoadFile(path string, quote PremiumFunc) (models.OptionStrategy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.OptionStrategy{}, apperrors.NewDataError("strategy", path, "failed to read file", err)
	}
	return Decode(data, quote)
}

// Decode parses the YAML form of a strategy.
func Decode(data []byte, quote PremiumFunc) (models.OptionStrategy, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return models.OptionStrategy{}, apperrors.NewDataError("strategy", "yaml", "failed to parse", err)
	}

	s := models.OptionStrategy{
		Name:        f.Name,
		Underlying:  strings.ToUpper(f.Underlying),
		Description: f.Description,
	}

	switch {
	case f.Preset != "" && len(f.Legs) > 0:
		return s, apperrors.NewValidationError("preset", f.Preset, "cannot be combined with legs")
	case f.Preset != "":
		legs, err := Build(f.Preset, BuildSpec{
			ATM:      f.ATM,
			Width:    f.Width,
			Wing:     f.Wing,
			Quantity: f.Quantity,
			Premiums: f.Premiums,
			Premium:  quote,
		})
		if err != nil {
			return s, err
		}
		s.Legs = legs
		if s.Name == "" {
			s.Name = f.Preset
		}
	default:
		for i, fl := range f.Legs {
			leg, err := fl.toLeg()
			if err != nil {
				return s, fmt.Errorf("legs[%d]: %w", i, err)
			}
			s.Legs = append(s.Legs, leg)
		}
		if err := payoff.ValidateLegs(s.Legs); err != nil {
			return s, err
		}
	}

	return s, nil
}

// Encode renders a strategy as YAML with explicit legs.
func Encode(s models.OptionStrategy) ([]byte, error) {
	f := File{
		Name:        s.Name,
		Underlying:  s.Underlying,
		Description: s.Description,
	}
	for _, leg := range s.Legs {
		f.Legs = append(f.Legs, fileLeg{
			Type:      strings.ToLower(string(leg.Type)),
			Direction: strings.ToLower(string(leg.Direction)),
			Strike:    leg.Strike,
			Premium:   leg.Premium,
			Quantity:  leg.Quantity,
		})
	}
	return yaml.Marshal(f)
}

func (fl fileLeg) toLeg() (models.StrategyLeg, error) {
	typ, err := models.ParseOptionType(fl.Type)
	if err != nil {
		return models.StrategyLeg{}, apperrors.NewValidationError("type", fl.Type, err.Error())
	}
	dir, err := models.ParseDirection(fl.Direction)
	if err != nil {
		return models.StrategyLeg{}, apperrors.NewValidationError("direction", fl.Direction, err.Error())
	}
	return models.StrategyLeg{
		Type:      typ,
		Direction: dir,
		Strike:    fl.Strike,
		Premium:   fl.Premium,
		Quantity:  fl.Quantity,
	}, nil
}

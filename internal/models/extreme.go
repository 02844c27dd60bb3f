package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

const unboundedLiteral = "unbounded"

// Extreme is a max-profit or max-loss figure: either a bounded value or
// unbounded (the payoff keeps growing past any sampled price).
type Extreme struct {
	value     float64
	unbounded bool
}

// Bounded returns a finite extreme.
func Bounded(v float64) Extreme {
	return Extreme{value: v}
}

// Unbounded returns an unlimited extreme.
func Unbounded() Extreme {
	return Extreme{unbounded: true}
}

// IsUnbounded reports whether the extreme is unlimited.
func (e Extreme) IsUnbounded() bool {
	return e.unbounded
}

// Value returns the finite value and true, or 0 and false when unbounded.
func (e Extreme) Value() (float64, bool) {
	if e.unbounded {
		return 0, false
	}
	return e.value, true
}

func (e Extreme) String() string {
	if e.unbounded {
		return unboundedLiteral
	}
	return strconv.FormatFloat(e.value, 'f', 2, 64)
}

// MarshalJSON encodes a bounded extreme as a number and an unbounded one as
// the string "unbounded".
func (e Extreme) MarshalJSON() ([]byte, error) {
	if e.unbounded {
		return json.Marshal(unboundedLiteral)
	}
	return json.Marshal(e.value)
}

// UnmarshalJSON accepts a number or the string "unbounded".
func (e *Extreme) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != unboundedLiteral {
			return fmt.Errorf("invalid extreme %q", s)
		}
		*e = Unbounded()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*e = Bounded(v)
	return nil
}

package cli

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"options-lab/internal/models"
)

// Number grouping styles accepted in ui.number_format.
const (
	NumberFormatWestern = "western"
	NumberFormatIndian  = "indian"
)

// UnlimitedLabel is shown for unbounded max profit or loss.
const UnlimitedLabel = "Unlimited"

var westernPrinter = message.NewPrinter(language.English)

// MoneyFormatter renders currency amounts with a symbol and digit grouping.
type MoneyFormatter struct {
	symbol string
	indian bool
}

// NewMoneyFormatter returns a formatter for the given grouping style.
// Unknown styles fall back to western grouping.
func NewMoneyFormatter(style, symbol string) MoneyFormatter {
	return MoneyFormatter{symbol: symbol, indian: style == NumberFormatIndian}
}

// Format renders amount with two decimals, e.g. -$1,234.56 or ₹1,00,000.00.
func (m MoneyFormatter) Format(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + m.symbol + m.number(amount)
}

// Signed is Format with an explicit + on positive amounts.
func (m MoneyFormatter) Signed(amount float64) string {
	if amount > 0 {
		return "+" + m.Format(amount)
	}
	return m.Format(amount)
}

// Extreme renders a max profit or loss, using UnlimitedLabel when unbounded.
func (m MoneyFormatter) Extreme(e models.Extreme) string {
	v, ok := e.Value()
	if !ok {
		return UnlimitedLabel
	}
	return m.Format(v)
}

// Price renders a strike or spot level without a currency symbol.
func (m MoneyFormatter) Price(v float64) string {
	if v < 0 {
		return "-" + m.number(-v)
	}
	return m.number(v)
}

func (m MoneyFormatter) number(v float64) string {
	if !m.indian {
		return westernPrinter.Sprintf("%.2f", v)
	}
	parts := strings.SplitN(fmt.Sprintf("%.2f", v), ".", 2)
	return formatIndianNumber(parts[0]) + "." + parts[1]
}

// formatIndianNumber formats an integer string in Indian numbering system.
// Indian system: 1,00,00,000 (1 crore) vs Western: 10,000,000
func formatIndianNumber(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	// First group of 3 from right (hundreds)
	result := s[n-3:]
	s = s[:n-3]

	// Then groups of 2 (thousands, lakhs, crores)
	for len(s) > 0 {
		if len(s) >= 2 {
			result = s[len(s)-2:] + "," + result
			s = s[:len(s)-2]
		} else {
			result = s + "," + result
			s = ""
		}
	}

	return result
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatGreeks formats option Greeks on one line.
func FormatGreeks(g models.OptionGreeks) string {
	return fmt.Sprintf("Δ: %.4f  Γ: %.4f  Θ: %.4f  ν: %.4f  ρ: %.4f", g.Delta, g.Gamma, g.Theta, g.Vega, g.Rho)
}

// FormatIV formats implied volatility.
func FormatIV(iv float64) string {
	return fmt.Sprintf("%.2f%%", iv*100)
}

// FormatBreakevens lists breakeven prices, or "none".
func (m MoneyFormatter) FormatBreakevens(bes []float64) string {
	if len(bes) == 0 {
		return "none"
	}
	out := make([]string, len(bes))
	for i, b := range bes {
		out[i] = m.Price(math.Round(b*100) / 100)
	}
	return strings.Join(out, ", ")
}

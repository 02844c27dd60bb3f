package cli

import (
	"fmt"
	"math"
	"strings"

	"options-lab/internal/models"
)

const (
	chartPoint = '*'
	chartZero  = '-'
)

// RenderChart draws points as a width x height ASCII plot with the zero P&L
// line marked. The y axis is labelled at the top, zero and bottom rows.
func RenderChart(points []models.PayoffPoint, width, height int) string {
	if len(points) < 2 || width < 2 || height < 2 {
		return ""
	}

	lo, hi := 0.0, 0.0
	for _, p := range points {
		lo = math.Min(lo, p.Payoff)
		hi = math.Max(hi, p.Payoff)
	}
	if hi == lo {
		hi = lo + 1
	}
	row := func(v float64) int {
		return int(math.Round((hi - v) / (hi - lo) * float64(height-1)))
	}

	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", width))
	}
	zero := row(0)
	for c := 0; c < width; c++ {
		grid[zero][c] = chartZero
	}
	for c := 0; c < width; c++ {
		i := c * (len(points) - 1) / (width - 1)
		grid[row(points[i].Payoff)][c] = chartPoint
	}

	labels := map[int]string{
		0:          fmt.Sprintf("%.2f", hi),
		zero:       "0",
		height - 1: fmt.Sprintf("%.2f", lo),
	}

	var b strings.Builder
	for r, cells := range grid {
		fmt.Fprintf(&b, "%12s |%s\n", labels[r], string(cells))
	}
	left := fmt.Sprintf("%.2f", points[0].Spot)
	right := fmt.Sprintf("%.2f", points[len(points)-1].Spot)
	gap := width - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	fmt.Fprintf(&b, "%12s  %s%s%s\n", "", left, strings.Repeat(" ", gap), right)
	return b.String()
}

package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-lab/internal/models"
	"options-lab/internal/payoff"
)

func TestRenderChart_LongCall(t *testing.T) {
	legs := []models.StrategyLeg{{Type: models.OptionTypeCall, Direction: models.DirectionLong, Strike: 100, Premium: 5, Quantity: 1}}
	points, err := payoff.GenerateCurve(legs, 100, 0.2, 40)
	require.NoError(t, err)

	chart := RenderChart(points, 41, 10)
	lines := strings.Split(strings.TrimSuffix(chart, "\n"), "\n")
	require.Len(t, lines, 11, "10 plot rows and the spot axis")

	top, bottom := lines[0], lines[9]
	assert.True(t, strings.HasPrefix(strings.TrimSpace(top), "1500.00 |"), top)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(bottom), "-500.00 |"), bottom)
	assert.Equal(t, byte(chartPoint), top[len(top)-1], "max payoff at the right edge")
	assert.Equal(t, byte(chartPoint), bottom[strings.Index(bottom, "|")+1], "max loss at the left edge")

	zeroRows := 0
	for _, l := range lines[:10] {
		if strings.Contains(l, " 0 |") {
			zeroRows++
			assert.Contains(t, l, string(chartZero))
		}
	}
	assert.Equal(t, 1, zeroRows)

	assert.Contains(t, lines[10], "80.00")
	assert.Contains(t, lines[10], "120.00")
}

func TestRenderChart_Degenerate(t *testing.T) {
	assert.Empty(t, RenderChart(nil, 40, 10))
	assert.Empty(t, RenderChart([]models.PayoffPoint{{Spot: 1}}, 40, 10))
	assert.Empty(t, RenderChart([]models.PayoffPoint{{Spot: 1}, {Spot: 2}}, 1, 10))

	flat := RenderChart([]models.PayoffPoint{{Spot: 1}, {Spot: 2}}, 10, 3)
	assert.NotEmpty(t, flat)
}

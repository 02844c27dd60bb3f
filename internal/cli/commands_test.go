package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-lab/internal/analysis"
	"options-lab/internal/config"
	apperrors "options-lab/internal/errors"
	"options-lab/internal/models"
	"options-lab/internal/strategies"
)

var condorLegs = []string{
	"--leg", "long put 85@1",
	"--leg", "short put 90@2.5",
	"--leg", "short call 110@2.5",
	"--leg", "long call 115@1",
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Dir = t.TempDir()
	app, err := NewApp(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

func execute(app *App, args ...string) (string, error) {
	root := NewRootCmd(app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func executeJSON(t *testing.T, app *App, v interface{}, args ...string) {
	t.Helper()
	out, err := execute(app, append(args, "--json")...)
	require.NoError(t, err, out)
	require.NoError(t, json.Unmarshal([]byte(out), v), out)
}

func TestPriceCommand(t *testing.T) {
	app := newTestApp(t)
	market := []string{"price", "--spot", "100", "--strike", "100", "--years", "1", "--rate", "0.05", "--vol", "0.2"}

	var got struct {
		Input  models.PricingInput `json:"input"`
		Prices models.OptionPrices `json:"prices"`
	}
	executeJSON(t, app, &got, market...)
	assert.Equal(t, 1.0, got.Input.TimeToExpiry)
	assert.InDelta(t, 10.4506, got.Prices.Call, 1e-4)
	assert.InDelta(t, 5.5735, got.Prices.Put, 1e-4)

	out, err := execute(app, market...)
	require.NoError(t, err)
	assert.Contains(t, out, "Call:    $10.45")
	assert.Contains(t, out, "Put:     $5.57")
}

func TestPriceCommand_DaysDefault(t *testing.T) {
	app := newTestApp(t)
	var got struct {
		Input models.PricingInput `json:"input"`
	}
	executeJSON(t, app, &got, "price", "--spot", "100", "--strike", "100", "--days", "73")
	assert.InDelta(t, 0.2, got.Input.TimeToExpiry, 1e-12)
	assert.Equal(t, app.Config.Pricing.DefaultVolatility, got.Input.Volatility)
}

func TestPriceCommand_Errors(t *testing.T) {
	app := newTestApp(t)

	_, err := execute(app, "price", "--spot", "100")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = execute(app, "price", "--spot", "-1", "--strike", "100")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestGreeksCommand(t *testing.T) {
	app := newTestApp(t)
	var got struct {
		Type   models.OptionType   `json:"type"`
		Greeks models.OptionGreeks `json:"greeks"`
	}
	executeJSON(t, app, &got, "greeks", "--spot", "100", "--strike", "100", "--years", "1",
		"--rate", "0.05", "--vol", "0.2", "--type", "put")
	assert.Equal(t, models.OptionTypePut, got.Type)
	assert.InDelta(t, -0.3632, got.Greeks.Delta, 1e-4)
	assert.Greater(t, got.Greeks.Gamma, 0.0)

	out, err := execute(app, "greeks", "--spot", "100", "--strike", "100", "--years", "1")
	require.NoError(t, err)
	for _, name := range []string{"Delta", "Gamma", "Theta", "Vega", "Rho"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "Δ: 0.6368")

	_, err = execute(app, "greeks", "--spot", "100", "--strike", "100", "--type", "straddle")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestIVCommand(t *testing.T) {
	app := newTestApp(t)
	var got map[string]float64
	executeJSON(t, app, &got, "iv", "--spot", "100", "--strike", "100", "--years", "1",
		"--rate", "0.05", "--market-price", "10.4506")
	assert.InDelta(t, 0.2, got["iv"], 1e-3)

	out, err := execute(app, "iv", "--spot", "100", "--strike", "100", "--years", "1",
		"--rate", "0.05", "--vol", "0.2", "--market-price", "12")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Implied volatility: ")
	assert.Contains(t, out, "vs input vol:       +")

	_, err = execute(app, "iv", "--spot", "100", "--strike", "100")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestKeysCommand_ThresholdWarning(t *testing.T) {
	cfg := config.Default()
	cfg.Dir = t.TempDir()
	cfg.Payoff.UnboundedThreshold = 1000
	app, err := NewApp(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })

	// Long put: 9500 at spot 0 is finite but above the lowered threshold.
	out, err := execute(app, "keys", "--leg", "long put 100@5")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Max profit exceeds the $1,000.00 threshold and may be finite")
	assert.NotContains(t, out, "Max loss exceeds")

	// Long call: unbounded because of the call, so no warning.
	out, err = execute(newTestApp(t), "keys", "--leg", "long call 100@5")
	require.NoError(t, err, out)
	assert.NotContains(t, out, "threshold")
}

func TestKeysCommand_Legs(t *testing.T) {
	app := newTestApp(t)
	var got models.KeyPriceSummary
	executeJSON(t, app, &got, append([]string{"keys"}, condorLegs...)...)

	assert.Equal(t, []float64{85, 90, 110, 115}, got.Strikes)
	require.Len(t, got.Breakevens, 2)
	assert.InDelta(t, 87, got.Breakevens[0], 1e-3)
	assert.InDelta(t, 113, got.Breakevens[1], 1e-3)
	profit, ok := got.MaxProfit.Value()
	require.True(t, ok)
	assert.Equal(t, 300.0, profit)

	out, err := execute(app, append([]string{"keys"}, condorLegs...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Breakevens:  87.00, 113.00")
	assert.Contains(t, out, "Max profit:  $300.00")
	assert.Contains(t, out, "Max loss:    $200.00")
	assert.Contains(t, out, "Net credit:  $3.00")
}

func TestKeysCommand_Unlimited(t *testing.T) {
	app := newTestApp(t)
	out, err := execute(app, "keys", "--leg", "short call 100@5")
	require.NoError(t, err)
	assert.Contains(t, out, "Max loss:    "+UnlimitedLabel)
}

func TestKeysCommand_OneSource(t *testing.T) {
	app := newTestApp(t)

	_, err := execute(app, "keys")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = execute(app, "keys", "--leg", "long call 100@5", "--strategy", "straddle", "--atm", "100")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = execute(app, "keys", "--strategy", "condor-of-doom", "--atm", "100")
	assert.ErrorIs(t, err, apperrors.ErrUnknownStrategy)
}

func TestPayoffCommand_Preset(t *testing.T) {
	app := newTestApp(t)
	var got struct {
		Strategy  models.OptionStrategy  `json:"strategy"`
		Points    []models.PayoffPoint   `json:"points"`
		KeyPrices models.KeyPriceSummary `json:"key_prices"`
	}
	executeJSON(t, app, &got, "payoff", "--strategy", "iron-condor", "--atm", "100",
		"--width", "10", "--wing", "5", "--premiums", "1,2.5,2.5,1")

	assert.Equal(t, "iron-condor", got.Strategy.Name)
	assert.Equal(t, []float64{85, 90, 110, 115}, got.KeyPrices.Strikes)
	require.Len(t, got.Points, 21)
	assert.Equal(t, 80.0, got.Points[0].Spot)
	assert.Equal(t, 120.0, got.Points[20].Spot)
	assert.Equal(t, -200.0, got.Points[0].Payoff)
	assert.Equal(t, 300.0, got.Points[10].Payoff)
}

func TestPayoffCommand_ModelPremiums(t *testing.T) {
	app := newTestApp(t)
	var got struct {
		Strategy models.OptionStrategy `json:"strategy"`
	}
	executeJSON(t, app, &got, "payoff", "--strategy", "straddle", "--atm", "100",
		"--years", "1", "--rate", "0.05", "--vol", "0.2")

	require.Len(t, got.Strategy.Legs, 2)
	assert.Equal(t, 10.45, got.Strategy.Legs[0].Premium)
	assert.Equal(t, 5.57, got.Strategy.Legs[1].Premium)
}

func TestPayoffCommand_ChartAndCSV(t *testing.T) {
	app := newTestApp(t)
	csvPath := filepath.Join(t.TempDir(), "curve.csv")

	args := append([]string{"payoff", "--chart", "--csv", csvPath, "--samples", "4"}, condorLegs...)
	out, err := execute(app, args...)
	require.NoError(t, err)
	assert.Contains(t, out, string(chartPoint))
	assert.Contains(t, out, "Curve written to "+csvPath)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "spot,payoff", lines[0])
	assert.Equal(t, "80,-200", lines[1])
	assert.Equal(t, "100,300", lines[3])
}

func TestStrategyList(t *testing.T) {
	app := newTestApp(t)
	var got []strategies.Preset
	executeJSON(t, app, &got, "strategy", "list")
	assert.Equal(t, strategies.List(), got)

	out, err := execute(app, "strategy", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "iron-condor")
}

func TestStrategyBuild_FileRoundTrip(t *testing.T) {
	app := newTestApp(t)
	path := filepath.Join(t.TempDir(), "fly.yaml")

	out, err := execute(app, "strategy", "build", "butterfly", "--atm", "100", "--width", "5",
		"--premiums", "7,4,2", "--out", path)
	require.NoError(t, err, out)

	var got models.KeyPriceSummary
	executeJSON(t, app, &got, "keys", "--file", path)
	require.Len(t, got.Breakevens, 2)
	assert.InDelta(t, 96, got.Breakevens[0], 1e-3)
	assert.InDelta(t, 104, got.Breakevens[1], 1e-3)
	profit, _ := got.MaxProfit.Value()
	loss, _ := got.MaxLoss.Value()
	assert.Equal(t, 400.0, profit)
	assert.Equal(t, 100.0, loss)
}

func TestStrategyLifecycle(t *testing.T) {
	app := newTestApp(t)

	var saved models.OptionStrategy
	executeJSON(t, app, &saved, append([]string{"strategy", "save", "ic", "--underlying", "spy",
		"--description", "monthly condor"}, condorLegs...)...)
	assert.Equal(t, "ic", saved.Name)
	assert.Equal(t, "SPY", saved.Underlying)
	assert.NotEmpty(t, saved.ID)

	var list []models.OptionStrategy
	executeJSON(t, app, &list, "strategy", "saved", "--underlying", "SPY")
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)

	var shown struct {
		Strategy  models.OptionStrategy  `json:"strategy"`
		KeyPrices models.KeyPriceSummary `json:"key_prices"`
	}
	executeJSON(t, app, &shown, "strategy", "show", saved.ID)
	assert.Equal(t, "monthly condor", shown.Strategy.Description)
	assert.Len(t, shown.KeyPrices.Breakevens, 2)

	out, err := execute(app, "strategy", "show", "ic", "--yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "direction: short")

	var keys models.KeyPriceSummary
	executeJSON(t, app, &keys, "keys", "--saved", "ic")
	assert.Equal(t, []float64{85, 90, 110, 115}, keys.Strikes)

	_, err = execute(app, "strategy", "delete", "ic")
	require.NoError(t, err)
	_, err = execute(app, "strategy", "show", "ic")
	assert.ErrorIs(t, err, apperrors.ErrStrategyNotFound)

	executeJSON(t, app, &list, "strategy", "saved")
	assert.Empty(t, list)
}

func TestHVCommand(t *testing.T) {
	app := newTestApp(t)
	closes := []float64{100, 101, 99.5, 102, 101, 103.5, 102.5, 104}

	var b strings.Builder
	b.WriteString("date,close\n")
	for i, c := range closes {
		fmt.Fprintf(&b, "2026-01-%02d,%g\n", i+1, c)
	}
	path := filepath.Join(t.TempDir(), "closes.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	want, err := analysis.HistoricalVolatility(closes, analysis.DefaultTradingDays)
	require.NoError(t, err)

	var got struct {
		Closes     int     `json:"closes"`
		Volatility float64 `json:"volatility"`
		Latest     float64 `json:"rolling_latest"`
	}
	executeJSON(t, app, &got, "hv", "--csv", path, "--window", "3")
	assert.Equal(t, len(closes), got.Closes)
	assert.InDelta(t, want, got.Volatility, 1e-12)

	last, err := analysis.HistoricalVolatility(closes[len(closes)-4:], analysis.DefaultTradingDays)
	require.NoError(t, err)
	assert.InDelta(t, last, got.Latest, 1e-12)

	_, err = execute(app, "hv")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestVersionAndConfigCommands(t *testing.T) {
	app := newTestApp(t)

	var version map[string]string
	executeJSON(t, app, &version, "version")
	assert.Equal(t, Version, version["version"])

	var valid map[string]bool
	executeJSON(t, app, &valid, "config", "validate")
	assert.True(t, valid["valid"])

	out, err := execute(app, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, app.Config.ConfigFile(), strings.TrimSpace(out))

	out, err = execute(app, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Scan Samples:    1000")
}

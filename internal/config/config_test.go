package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "options-lab/internal/errors"
	"options-lab/internal/payoff"
)

func TestLoad_CreatesTemplate(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "config.toml"))

	assert.Equal(t, "gonum", cfg.Pricing.CDF)
	assert.Equal(t, 0.05, cfg.Pricing.DefaultRate)
	assert.Equal(t, 30, cfg.Pricing.DefaultDays)
	assert.Equal(t, payoff.DefaultParams(), cfg.Payoff)
	assert.Equal(t, "western", cfg.UI.NumberFormat)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, filepath.Join(dir, "strategies.db"), cfg.StorePath())
	assert.Equal(t, filepath.Join(dir, "config.toml"), cfg.ConfigFile())
}

func TestLoad_TemplateMatchesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Pricing, cfg.Pricing)
	assert.Equal(t, def.Payoff, cfg.Payoff)
	assert.Equal(t, def.UI, cfg.UI)
	assert.Equal(t, def.Server, cfg.Server)
}

func TestLoad_FileValues(t *testing.T) {
	dir := t.TempDir()
	toml := `
[pricing]
cdf = "abramowitz-stegun"
default_volatility = 0.35

[payoff]
contract_multiplier = 1
refine_breakevens = false

[ui]
number_format = "indian"
currency_symbol = "₹"

[store]
path = "/tmp/elsewhere.db"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "abramowitz-stegun", cfg.Pricing.CDF)
	assert.Equal(t, 0.35, cfg.Pricing.DefaultVolatility)
	assert.Equal(t, 0.05, cfg.Pricing.DefaultRate, "unset keys keep defaults")
	assert.Equal(t, 1.0, cfg.Payoff.ContractMultiplier)
	assert.False(t, cfg.Payoff.RefineBreakevens)
	assert.Equal(t, payoff.DefaultScanSamples, cfg.Payoff.ScanSamples)
	assert.Equal(t, "indian", cfg.UI.NumberFormat)
	assert.Equal(t, "₹", cfg.UI.CurrencySymbol)
	assert.Equal(t, "/tmp/elsewhere.db", cfg.StorePath())
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OPTLAB_PRICING_DEFAULT_RATE", "0.07")
	t.Setenv("OPTLAB_PAYOFF_SCAN_SAMPLES", "250")
	t.Setenv("OPTLAB_SERVER_ADDR", ":9999")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 0.07, cfg.Pricing.DefaultRate)
	assert.Equal(t, 250, cfg.Payoff.ScanSamples)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("OPTLAB_UI_CURRENCY_SYMBOL=EUR\n"), 0600))
	t.Cleanup(func() { os.Unsetenv("OPTLAB_UI_CURRENCY_SYMBOL") })

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "EUR", cfg.UI.CurrencySymbol)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[ui\nbroken"), 0644))
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown cdf", func(c *Config) { c.Pricing.CDF = "student-t" }},
		{"negative vol", func(c *Config) { c.Pricing.DefaultVolatility = -0.1 }},
		{"zero multiplier", func(c *Config) { c.Payoff.ContractMultiplier = 0 }},
		{"scan range", func(c *Config) { c.Payoff.ScanRange = 2 }},
		{"number format", func(c *Config) { c.UI.NumberFormat = "roman" }},
		{"tiny chart", func(c *Config) { c.UI.ChartWidth = 2 }},
		{"no addr", func(c *Config) { c.Server.Addr = "" }},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), apperrors.ErrConfigInvalid)
		})
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Options Lab Configuration
# Every key can be overridden from the environment, e.g.
# OPTLAB_PRICING_DEFAULT_RATE=0.07 or OPTLAB_UI_NUMBER_FORMAT=indian.

[pricing]
# Normal CDF: "gonum" (exact) or "abramowitz-stegun" (|error| < 7.5e-8)
cdf = "gonum"
# Annual risk-free rate used when --rate is not given
default_rate = 0.05
# Annual volatility used when --vol is not given
default_volatility = 0.2
# Days to expiry used when neither --days nor --years is given
default_days = 30

[payoff]
# Underlying units per contract (100 for US equity options; set 1 for per-unit payoffs)
contract_multiplier = 100.0
# Sampled profits or losses beyond this are reported as unbounded
unbounded_threshold = 1000000.0
# Key-price scan covers [lowest strike * (1 - r), highest strike * (1 + r)]
scan_range = 0.5
# Number of scan intervals
scan_samples = 1000
# Largest number of intervals a payoff curve may request
max_curve_samples = 10000
# Bisect each breakeven instead of reporting the bracket midpoint
refine_breakevens = true

[ui]
# Enable colored output
color_enabled = true
# Digit grouping: "western" (1,234,567.00) or "indian" (12,34,567.00)
number_format = "western"
currency_symbol = "$"
# ASCII payoff chart size in characters
chart_width = 60
chart_height = 15

[server]
addr = "127.0.0.1:8080"
read_timeout = "10s"
write_timeout = "10s"

[store]
# Saved strategies database; empty means strategies.db next to this file
path = ""

[logging]
# debug, info, warn, error
level = "warn"
console = true
file = false
# Defaults to ~/.config/options-lab/logs/optlab.log
# file_path = "/var/log/optlab.log"
max_size = 20
max_backups = 3
max_age = 30
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}

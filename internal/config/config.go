// Package config provides configuration management for the options toolkit.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "options-lab/internal/errors"
	"options-lab/internal/logging"
	"options-lab/internal/payoff"
	"options-lab/internal/pricing"
)

// EnvPrefix prefixes environment overrides, e.g. OPTLAB_PRICING_DEFAULT_RATE.
const EnvPrefix = "OPTLAB"

// Config holds all application configuration.
type Config struct {
	Pricing PricingConfig     `mapstructure:"pricing"`
	Payoff  payoff.Params     `mapstructure:"payoff"`
	UI      UIConfig          `mapstructure:"ui"`
	Server  ServerConfig      `mapstructure:"server"`
	Store   StoreConfig       `mapstructure:"store"`
	Logging logging.LogConfig `mapstructure:"logging"`

	// Dir is the directory the config was loaded from.
	Dir string `mapstructure:"-"`
}

// PricingConfig holds model defaults used when a flag is not given.
type PricingConfig struct {
	CDF               string  `mapstructure:"cdf"` // "gonum" or "abramowitz-stegun"
	DefaultRate       float64 `mapstructure:"default_rate"`
	DefaultVolatility float64 `mapstructure:"default_volatility"`
	DefaultDays       int     `mapstructure:"default_days"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled   bool   `mapstructure:"color_enabled"`
	NumberFormat   string `mapstructure:"number_format"` // "western" or "indian"
	CurrencySymbol string `mapstructure:"currency_symbol"`
	ChartWidth     int    `mapstructure:"chart_width"`
	ChartHeight    int    `mapstructure:"chart_height"`
}

// ServerConfig holds HTTP API configuration.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// StoreConfig holds saved-strategy storage configuration.
type StoreConfig struct {
	Path string `mapstructure:"path"` // empty means <config dir>/strategies.db
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/options-lab"
	}
	return filepath.Join(home, ".config", "options-lab")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config.toml is replaced by the commented template and loading continues
// with its values. A .env file in the working directory or configDir is
// loaded into the environment first; variables already set win.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	loadDotEnv(".env", filepath.Join(configDir, ".env"))

	v := newViper(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, err
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Dir = configDir

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration without touching the disk or
// the environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	cfg.Dir = DefaultConfigDir()
	return cfg
}

func newViper(configDir string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	p := payoff.DefaultParams()
	v.SetDefault("pricing.cdf", "gonum")
	v.SetDefault("pricing.default_rate", 0.05)
	v.SetDefault("pricing.default_volatility", 0.2)
	v.SetDefault("pricing.default_days", 30)

	v.SetDefault("payoff.contract_multiplier", p.ContractMultiplier)
	v.SetDefault("payoff.unbounded_threshold", p.UnboundedThreshold)
	v.SetDefault("payoff.scan_range", p.ScanRange)
	v.SetDefault("payoff.scan_samples", p.ScanSamples)
	v.SetDefault("payoff.max_curve_samples", p.MaxCurveSamples)
	v.SetDefault("payoff.refine_breakevens", p.RefineBreakevens)

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.number_format", "western")
	v.SetDefault("ui.currency_symbol", "$")
	v.SetDefault("ui.chart_width", 60)
	v.SetDefault("ui.chart_height", 15)

	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")

	v.SetDefault("store.path", "")

	l := logging.DefaultLogConfig()
	v.SetDefault("logging.level", l.Level)
	v.SetDefault("logging.console", l.Console)
	v.SetDefault("logging.file", l.File)
	v.SetDefault("logging.file_path", l.FilePath)
	v.SetDefault("logging.max_size", l.MaxSize)
	v.SetDefault("logging.max_backups", l.MaxBackups)
	v.SetDefault("logging.max_age", l.MaxAge)
}

func loadDotEnv(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := pricing.NewDistribution(c.Pricing.CDF); err != nil {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, err.Error())
	}
	if c.Pricing.DefaultVolatility < 0 {
		return fmt.Errorf("%w: pricing.default_volatility must be non-negative", apperrors.ErrConfigInvalid)
	}
	if c.Pricing.DefaultDays < 0 {
		return fmt.Errorf("%w: pricing.default_days must be non-negative", apperrors.ErrConfigInvalid)
	}

	if err := c.Payoff.Validate(); err != nil {
		return fmt.Errorf("%w: payoff: %v", apperrors.ErrConfigInvalid, err)
	}

	switch c.UI.NumberFormat {
	case "western", "indian":
	default:
		return fmt.Errorf("%w: invalid ui.number_format: %s (must be 'western' or 'indian')",
			apperrors.ErrConfigInvalid, c.UI.NumberFormat)
	}
	if c.UI.ChartWidth < 10 || c.UI.ChartHeight < 5 {
		return fmt.Errorf("%w: ui.chart_width must be >= 10 and ui.chart_height >= 5", apperrors.ErrConfigInvalid)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr must be set", apperrors.ErrConfigInvalid)
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("%w: invalid logging.level: %s", apperrors.ErrConfigInvalid, c.Logging.Level)
	}

	return nil
}

// StorePath returns the saved-strategy database path.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return filepath.Join(c.Dir, "strategies.db")
}

// ConfigFile returns the path of config.toml.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.Dir, "config.toml")
}

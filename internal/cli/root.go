package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"options-lab/internal/config"
	"options-lab/internal/payoff"
	"options-lab/internal/pricing"
	"options-lab/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-10-01"
)

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Pricing *pricing.Engine
	Payoff  *payoff.Calculator

	store store.StrategyStore
}

// NewApp wires the engines described by cfg.
func NewApp(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	dist, err := pricing.NewDistribution(cfg.Pricing.CDF)
	if err != nil {
		return nil, err
	}
	calc, err := payoff.New(cfg.Payoff)
	if err != nil {
		return nil, err
	}
	return &App{
		Config:  cfg,
		Logger:  logger,
		Pricing: pricing.NewEngine(dist),
		Payoff:  calc,
	}, nil
}

// Store opens the saved-strategy database on first use.
func (a *App) Store() (store.StrategyStore, error) {
	if a.store != nil {
		return a.store, nil
	}
	path := a.Config.StorePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	s, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	a.Logger.Debug().Str("path", path).Msg("SQLite store initialized")
	a.store = s
	return s, nil
}

// Close releases the store if it was opened.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func (a *App) output(cmd *cobra.Command) *Output {
	return NewOutput(cmd, a.Config.UI)
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "optlab",
		Short: "Options Lab - option pricing and strategy payoff toolkit",
		Long: `Options Lab prices European options with Black-Scholes, computes Greeks
and implied volatility, and analyses multi-leg strategies at expiry.

Strategies can be given leg by leg, built from presets, loaded from YAML
files or saved to a local SQLite database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/options-lab)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd(app))
	rootCmd.AddCommand(newConfigCmd(app))
	addPricingCommands(rootCmd, app)
	addPayoffCommands(rootCmd, app)
	rootCmd.AddCommand(newStrategyCmd(app))
	rootCmd.AddCommand(newHVCmd(app))
	rootCmd.AddCommand(newServeCmd(app))

	return rootCmd
}

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("Options Lab v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{"path": app.Config.ConfigFile()})
			}
			output.Println(app.Config.ConfigFile())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if err := app.Config.Validate(); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Pricing")
	output.Printf("  CDF:             %s\n", cfg.Pricing.CDF)
	output.Printf("  Default Rate:    %s\n", FormatIV(cfg.Pricing.DefaultRate))
	output.Printf("  Default Vol:     %s\n", FormatIV(cfg.Pricing.DefaultVolatility))
	output.Printf("  Default Days:    %d\n", cfg.Pricing.DefaultDays)
	output.Println()

	output.Bold("Payoff")
	output.Printf("  Multiplier:      %g\n", cfg.Payoff.ContractMultiplier)
	output.Printf("  Unbounded Above: %s\n", output.Money().Format(cfg.Payoff.UnboundedThreshold))
	output.Printf("  Scan Range:      ±%.0f%%\n", cfg.Payoff.ScanRange*100)
	output.Printf("  Scan Samples:    %d\n", cfg.Payoff.ScanSamples)
	output.Printf("  Curve Samples:   ≤ %d\n", cfg.Payoff.MaxCurveSamples)
	output.Printf("  Refine:          %v\n", cfg.Payoff.RefineBreakevens)
	output.Println()

	output.Bold("Server")
	output.Printf("  Address:         %s\n", cfg.Server.Addr)
	output.Println()

	output.Bold("Storage")
	output.Printf("  Database:        %s\n", cfg.StorePath())
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:           %s\n", cfg.Logging.Level)
	output.Printf("  File:            %v\n", cfg.Logging.File)
}

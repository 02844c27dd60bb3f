package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	apperrors "options-lab/internal/errors"
	"options-lab/internal/logging"
	"options-lab/internal/models"
	"options-lab/internal/pricing"
)

// marketFlags are the model inputs shared by the pricing commands.
type marketFlags struct {
	spot   float64
	strike float64
	days   float64
	years  float64
	rate   float64
	vol    float64
}

func addMarketFlags(cmd *cobra.Command, app *App, withStrike bool) *marketFlags {
	f := &marketFlags{}
	cfg := app.Config.Pricing
	if withStrike {
		cmd.Flags().Float64Var(&f.spot, "spot", 0, "underlying price")
		cmd.Flags().Float64Var(&f.strike, "strike", 0, "strike price")
	}
	cmd.Flags().Float64Var(&f.days, "days", float64(cfg.DefaultDays), "calendar days to expiry")
	cmd.Flags().Float64Var(&f.years, "years", 0, "years to expiry (overrides --days)")
	cmd.Flags().Float64Var(&f.rate, "rate", cfg.DefaultRate, "annual risk-free rate as a fraction")
	cmd.Flags().Float64Var(&f.vol, "vol", cfg.DefaultVolatility, "annual volatility as a fraction")
	return f
}

func (f *marketFlags) timeToExpiry(cmd *cobra.Command) float64 {
	if cmd.Flags().Changed("years") {
		return f.years
	}
	return f.days / pricing.DaysPerYear
}

func (f *marketFlags) input(cmd *cobra.Command) models.PricingInput {
	return models.PricingInput{
		Spot:         f.spot,
		Strike:       f.strike,
		TimeToExpiry: f.timeToExpiry(cmd),
		RiskFreeRate: f.rate,
		Volatility:   f.vol,
	}
}

func requireFlags(cmd *cobra.Command, names ...string) error {
	for _, name := range names {
		if !cmd.Flags().Changed(name) {
			return apperrors.NewValidationError(name, nil, fmt.Sprintf("--%s is required", name))
		}
	}
	return nil
}

func typeFlag(cmd *cobra.Command) (models.OptionType, error) {
	s, _ := cmd.Flags().GetString("type")
	t, err := models.ParseOptionType(s)
	if err != nil {
		return "", apperrors.NewValidationError("type", s, err.Error())
	}
	return t, nil
}

func addPricingCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newPriceCmd(app))
	rootCmd.AddCommand(newGreeksCmd(app))
	rootCmd.AddCommand(newIVCmd(app))
}

func newPriceCmd(app *App) *cobra.Command {
	var f *marketFlags
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Black-Scholes call and put values",
		Example: `  optlab price --spot 100 --strike 100 --years 1 --rate 0.05 --vol 0.2
  optlab price --spot 19500 --strike 19600 --days 7 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(cmd, "spot", "strike"); err != nil {
				return err
			}
			output := app.output(cmd)
			in := f.input(cmd)

			start := time.Now()
			prices, err := app.Pricing.Price(in)
			logging.LogCalculation(app.Logger, "price", time.Since(start), err)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(struct {
					Input  models.PricingInput `json:"input"`
					Prices models.OptionPrices `json:"prices"`
				}{in, prices})
			}

			m := output.Money()
			output.Box("Black-Scholes", []string{
				fmt.Sprintf("Spot:    %s", m.Price(in.Spot)),
				fmt.Sprintf("Strike:  %s", m.Price(in.Strike)),
				fmt.Sprintf("Expiry:  %.4f years", in.TimeToExpiry),
				fmt.Sprintf("Rate:    %s", FormatIV(in.RiskFreeRate)),
				fmt.Sprintf("Vol:     %s", FormatIV(in.Volatility)),
				"",
				fmt.Sprintf("Call:    %s", m.Format(prices.Call)),
				fmt.Sprintf("Put:     %s", m.Format(prices.Put)),
			})
			return nil
		},
	}
	f = addMarketFlags(cmd, app, true)
	return cmd
}

func newGreeksCmd(app *App) *cobra.Command {
	var f *marketFlags
	cmd := &cobra.Command{
		Use:   "greeks",
		Short: "Option Greeks",
		Long: `Delta, gamma, theta, vega and rho of a single option.
Theta is per calendar day. Vega and rho are per percentage point.`,
		Example: `  optlab greeks --spot 100 --strike 100 --years 1 --type put`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(cmd, "spot", "strike"); err != nil {
				return err
			}
			t, err := typeFlag(cmd)
			if err != nil {
				return err
			}
			output := app.output(cmd)
			in := f.input(cmd)

			start := time.Now()
			g, err := app.Pricing.Greeks(in, t)
			logging.LogCalculation(app.Logger, "greeks", time.Since(start), err)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(struct {
					Type   models.OptionType   `json:"type"`
					Input  models.PricingInput `json:"input"`
					Greeks models.OptionGreeks `json:"greeks"`
				}{t, in, g})
			}

			output.Bold("%s %s", t, output.Money().Price(in.Strike))
			output.Table([]string{"Greek", "Value"}, [][]string{
				{"Delta", fmt.Sprintf("%.4f", g.Delta)},
				{"Gamma", fmt.Sprintf("%.4f", g.Gamma)},
				{"Theta", fmt.Sprintf("%.4f", g.Theta)},
				{"Vega", fmt.Sprintf("%.4f", g.Vega)},
				{"Rho", fmt.Sprintf("%.4f", g.Rho)},
			})
			output.Dim("%s", FormatGreeks(g))
			return nil
		},
	}
	f = addMarketFlags(cmd, app, true)
	cmd.Flags().String("type", "call", "option type (call/put)")
	return cmd
}

func newIVCmd(app *App) *cobra.Command {
	var f *marketFlags
	cmd := &cobra.Command{
		Use:     "iv",
		Short:   "Implied volatility from a market price",
		Example: `  optlab iv --spot 100 --strike 100 --years 1 --market-price 10.45`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(cmd, "spot", "strike", "market-price"); err != nil {
				return err
			}
			t, err := typeFlag(cmd)
			if err != nil {
				return err
			}
			marketPrice, _ := cmd.Flags().GetFloat64("market-price")
			output := app.output(cmd)
			in := f.input(cmd)

			start := time.Now()
			iv, err := app.Pricing.ImpliedVolatility(in, t, marketPrice)
			logging.LogCalculation(app.Logger, "iv", time.Since(start), err)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]float64{"iv": iv})
			}
			output.Printf("Implied volatility: %s\n", output.Cyan(FormatIV(iv)))
			output.Printf("vs input vol:       %s\n", FormatPercent((iv-in.Volatility)*100))
			return nil
		},
	}
	f = addMarketFlags(cmd, app, true)
	cmd.Flags().String("type", "call", "option type (call/put)")
	cmd.Flags().Float64("market-price", 0, "observed option price")
	return cmd
}

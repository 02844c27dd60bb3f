package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	apperrors "options-lab/internal/errors"
	"options-lab/internal/logging"
	"options-lab/internal/models"
	"options-lab/internal/payoff"
	"options-lab/internal/strategies"
)

// legFlags select the legs of a strategy from exactly one source.
type legFlags struct {
	legs     []string
	preset   string
	file     string
	saved    string
	atm      float64
	width    float64
	wing     float64
	qty      int
	premiums []float64
	market   *marketFlags
}

func addLegFlags(cmd *cobra.Command, app *App) *legFlags {
	f := &legFlags{}
	cmd.Flags().StringArrayVar(&f.legs, "leg", nil, `strategy leg, e.g. "short call 110@2.5x1" (repeatable)`)
	cmd.Flags().StringVar(&f.preset, "strategy", "", "preset name (see 'optlab strategy list')")
	cmd.Flags().StringVar(&f.file, "file", "", "YAML strategy file")
	cmd.Flags().StringVar(&f.saved, "saved", "", "name or ID of a saved strategy")
	cmd.Flags().Float64Var(&f.atm, "atm", 0, "at-the-money strike for --strategy")
	cmd.Flags().Float64Var(&f.width, "width", 0, "strike width for --strategy (default 5% of ATM)")
	cmd.Flags().Float64Var(&f.wing, "wing", 0, "extra wing width for iron condors (default width/2)")
	cmd.Flags().IntVar(&f.qty, "qty", 1, "quantity multiplier for --strategy")
	cmd.Flags().Float64SliceVar(&f.premiums, "premiums", nil, "leg premiums for --strategy, in leg order (default: model prices)")
	f.market = addMarketFlags(cmd, app, false)
	return f
}

// resolve returns the strategy described by the flags. Preset premiums
// not given explicitly are priced with the model inputs.
func (f *legFlags) resolve(ctx context.Context, cmd *cobra.Command, app *App) (models.OptionStrategy, error) {
	sources := 0
	for _, set := range []bool{len(f.legs) > 0, f.preset != "", f.file != "", f.saved != ""} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return models.OptionStrategy{}, apperrors.NewValidationError("legs", sources,
			"give exactly one of --leg, --strategy, --file or --saved")
	}

	quote := strategies.ModelPremiums(app.Pricing, models.PricingInput{
		TimeToExpiry: f.market.timeToExpiry(cmd),
		RiskFreeRate: f.market.rate,
		Volatility:   f.market.vol,
	})

	switch {
	case len(f.legs) > 0:
		legs, err := strategies.ParseLegs(f.legs)
		if err != nil {
			return models.OptionStrategy{}, err
		}
		return models.OptionStrategy{Name: "custom", Legs: legs}, nil
	case f.preset != "":
		legs, err := strategies.Build(f.preset, strategies.BuildSpec{
			ATM:      f.atm,
			Width:    f.width,
			Wing:     f.wing,
			Quantity: f.qty,
			Premiums: f.premiums,
			Premium:  quote,
		})
		if err != nil {
			return models.OptionStrategy{}, err
		}
		return models.OptionStrategy{Name: strings.ToLower(f.preset), Legs: legs}, nil
	case f.file != "":
		return strategies.LoadFile(f.file, quote)
	default:
		st, err := app.Store()
		if err != nil {
			return models.OptionStrategy{}, err
		}
		s, err := st.GetStrategy(ctx, f.saved)
		if err != nil {
			return models.OptionStrategy{}, err
		}
		return *s, nil
	}
}

func addPayoffCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newPayoffCmd(app))
	rootCmd.AddCommand(newKeysCmd(app))
}

func newPayoffCmd(app *App) *cobra.Command {
	var f *legFlags
	var (
		center  float64
		rng     float64
		samples int
		chart   bool
		csvPath string
	)

	cmd := &cobra.Command{
		Use:   "payoff",
		Short: "Strategy payoff curve at expiry",
		Example: `  optlab payoff --leg "long put 85@1" --leg "short put 90@2.5" --leg "short call 110@2.5" --leg "long call 115@1"
  optlab payoff --strategy iron-condor --atm 100 --chart
  optlab payoff --file condor.yaml --csv curve.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			output := app.output(cmd)
			logger := logging.WithOperation(app.Logger, "payoff")

			s, err := f.resolve(ctx, cmd, app)
			if err != nil {
				return err
			}
			logger = logging.WithStrategy(logger, s.Name)

			start := time.Now()
			summary, err := app.Payoff.KeyPrices(s.Legs)
			if err != nil {
				logging.LogCalculation(logger, "keyprices", time.Since(start), err)
				return err
			}
			c := center
			if !cmd.Flags().Changed("center") {
				c = (summary.Strikes[0] + summary.Strikes[len(summary.Strikes)-1]) / 2
			}
			points, err := app.Payoff.GenerateCurve(s.Legs, c, rng, samples)
			logging.LogCalculation(logger, "curve", time.Since(start), err)
			if err != nil {
				return err
			}

			if csvPath != "" {
				if err := writeCurveCSV(csvPath, points); err != nil {
					return err
				}
			}

			if output.IsJSON() {
				return output.JSON(struct {
					Strategy  models.OptionStrategy  `json:"strategy"`
					Points    []models.PayoffPoint   `json:"points"`
					KeyPrices models.KeyPriceSummary `json:"key_prices"`
				}{s, points, summary})
			}

			printLegs(output, s)
			if chart {
				output.Println()
				output.Printf("%s", RenderChart(points, app.Config.UI.ChartWidth, app.Config.UI.ChartHeight))
			} else {
				m := output.Money()
				rows := make([][]string, len(points))
				for i, p := range points {
					rows[i] = []string{m.Price(p.Spot), output.FormatPnL(p.Payoff)}
				}
				output.Println()
				output.Table([]string{"Spot", "P&L"}, rows)
			}
			output.Println()
			printKeyPrices(output, summary, s.Legs, app.Payoff.Params())
			if csvPath != "" {
				output.Dim("Curve written to %s", csvPath)
			}
			return nil
		},
	}

	f = addLegFlags(cmd, app)
	cmd.Flags().Float64Var(&center, "center", 0, "curve center price (default: midpoint of the strikes)")
	cmd.Flags().Float64Var(&rng, "range", 0.2, "curve half-width as a fraction of the center")
	cmd.Flags().IntVar(&samples, "samples", 20, "number of curve intervals (points = samples+1)")
	cmd.Flags().BoolVar(&chart, "chart", false, "draw an ASCII chart instead of a table")
	cmd.Flags().StringVar(&csvPath, "csv", "", "also write the curve to a CSV file")
	return cmd
}

func newKeysCmd(app *App) *cobra.Command {
	var f *legFlags
	cmd := &cobra.Command{
		Use:     "keys",
		Short:   "Strikes, breakevens, max profit and max loss of a strategy",
		Example: `  optlab keys --strategy straddle --atm 100 --vol 0.25 --days 45`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			output := app.output(cmd)

			s, err := f.resolve(ctx, cmd, app)
			if err != nil {
				return err
			}

			start := time.Now()
			summary, err := app.Payoff.KeyPrices(s.Legs)
			logging.LogCalculation(logging.WithStrategy(app.Logger, s.Name), "keyprices", time.Since(start), err)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(summary)
			}
			printLegs(output, s)
			output.Println()
			printKeyPrices(output, summary, s.Legs, app.Payoff.Params())
			return nil
		},
	}
	f = addLegFlags(cmd, app)
	return cmd
}

func writeCurveCSV(path string, points []models.PayoffPoint) error {
	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewDataError("curve", path, "failed to create file", err)
	}
	defer file.Close()
	if err := gocsv.MarshalFile(&points, file); err != nil {
		return apperrors.NewDataError("curve", path, "failed to write csv", err)
	}
	return nil
}

func printLegs(output *Output, s models.OptionStrategy) {
	output.Bold("Strategy: %s", s.Name)
	m := output.Money()
	rows := make([][]string, len(s.Legs))
	for i, leg := range s.Legs {
		rows[i] = []string{
			strings.ToLower(string(leg.Direction)),
			strings.ToLower(string(leg.Type)),
			m.Price(leg.Strike),
			m.Format(leg.Premium),
			fmt.Sprintf("%d", leg.Qty()),
		}
	}
	output.Table([]string{"Side", "Type", "Strike", "Premium", "Qty"}, rows)
	if np := s.NetPremium(); np >= 0 {
		output.Printf("Net debit:   %s\n", m.Format(np))
	} else {
		output.Printf("Net credit:  %s\n", m.Format(-np))
	}
}

func printKeyPrices(output *Output, k models.KeyPriceSummary, legs []models.StrategyLeg, p payoff.Params) {
	m := output.Money()
	strikes := make([]string, len(k.Strikes))
	for i, s := range k.Strikes {
		strikes[i] = m.Price(s)
	}
	output.Printf("Strikes:     %s\n", strings.Join(strikes, ", "))
	output.Printf("Breakevens:  %s\n", m.FormatBreakevens(k.Breakevens))
	output.Printf("Max profit:  %s\n", m.Extreme(k.MaxProfit))
	output.Printf("Max loss:    %s\n", m.Extreme(k.MaxLoss))

	// Without net long (short) calls the payoff flattens out above the
	// strikes, so an unbounded profit (loss) only means the threshold was hit.
	calls := payoff.NetCalls(legs)
	if k.MaxProfit.IsUnbounded() && calls <= 0 {
		output.Warning("Max profit exceeds the %s threshold and may be finite", m.Format(p.UnboundedThreshold))
	}
	if k.MaxLoss.IsUnbounded() && calls >= 0 {
		output.Warning("Max loss exceeds the %s threshold and may be finite", m.Format(p.UnboundedThreshold))
	}
}

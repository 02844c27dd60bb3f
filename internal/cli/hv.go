package cli

import (
	"github.com/montanaflynn/stats"
	"github.com/spf13/cobra"

	"options-lab/internal/analysis"
)

func newHVCmd(app *App) *cobra.Command {
	var (
		csvPath     string
		tradingDays int
		window      int
	)

	cmd := &cobra.Command{
		Use:   "hv",
		Short: "Historical volatility from daily closes",
		Long: `Annualised close-to-close volatility from a CSV file with "date" and
"close" columns. The result can be passed to --vol.`,
		Example: `  optlab hv --csv spy.csv
  optlab hv --csv nifty.csv --window 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(cmd, "csv"); err != nil {
				return err
			}
			output := app.output(cmd)

			closes, err := analysis.LoadClosesFile(csvPath)
			if err != nil {
				return err
			}
			hv, err := analysis.HistoricalVolatility(closes, tradingDays)
			if err != nil {
				return err
			}

			result := struct {
				Closes     int      `json:"closes"`
				Volatility float64  `json:"volatility"`
				Window     int      `json:"window,omitempty"`
				Latest     *float64 `json:"rolling_latest,omitempty"`
				Min        *float64 `json:"rolling_min,omitempty"`
				Max        *float64 `json:"rolling_max,omitempty"`
			}{Closes: len(closes), Volatility: hv}

			if window > 0 {
				rolling, err := analysis.RollingVolatility(closes, window, tradingDays)
				if err != nil {
					return err
				}
				series := rolling[window:]
				lo, _ := stats.Min(series)
				hi, _ := stats.Max(series)
				latest := series[len(series)-1]
				result.Window, result.Latest, result.Min, result.Max = window, &latest, &lo, &hi
			}

			if output.IsJSON() {
				return output.JSON(result)
			}
			output.Printf("Closes:              %d\n", result.Closes)
			output.Printf("Historical vol:      %s\n", output.Cyan(FormatIV(hv)))
			if result.Window > 0 {
				output.Printf("Rolling %-3d latest:  %s\n", window, FormatIV(*result.Latest))
				output.Printf("Rolling %-3d range:   %s - %s\n", window, FormatIV(*result.Min), FormatIV(*result.Max))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV file with date and close columns")
	cmd.Flags().IntVar(&tradingDays, "days", analysis.DefaultTradingDays, "trading days per year")
	cmd.Flags().IntVar(&window, "window", 0, "also report a rolling volatility over this many returns")
	return cmd
}

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	apperrors "options-lab/internal/errors"
	"options-lab/internal/models"
	"options-lab/internal/store"
	"options-lab/internal/strategies"
)

func newStrategyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strategy",
		Short: "Strategy presets and saved strategies",
		Long: `Build strategies from presets, export them as YAML and keep them in the
local strategy database for later analysis with --saved.`,
	}

	cmd.AddCommand(newStrategyListCmd(app))
	cmd.AddCommand(newStrategyBuildCmd(app))
	cmd.AddCommand(newStrategySaveCmd(app))
	cmd.AddCommand(newStrategySavedCmd(app))
	cmd.AddCommand(newStrategyShowCmd(app))
	cmd.AddCommand(newStrategyDeleteCmd(app))

	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newStrategyListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List strategy presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			presets := strategies.List()
			if output.IsJSON() {
				return output.JSON(presets)
			}
			rows := make([][]string, len(presets))
			for i, p := range presets {
				rows[i] = []string{p.Name, fmt.Sprintf("%d", p.Legs), p.Description}
			}
			output.Table([]string{"Name", "Legs", "Description"}, rows)
			return nil
		},
	}
}

func newStrategyBuildCmd(app *App) *cobra.Command {
	var f *legFlags
	var outPath string

	cmd := &cobra.Command{
		Use:   "build <preset>",
		Short: "Build a preset and print it as YAML",
		Example: `  optlab strategy build iron-condor --atm 100 --width 10 --wing 5
  optlab strategy build butterfly --atm 19500 --days 7 --vol 0.14 --out fly.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			f.preset = args[0]
			s, err := f.resolve(commandContext(cmd), cmd, app)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(s)
			}
			data, err := strategies.Encode(s)
			if err != nil {
				return err
			}
			if outPath == "" {
				output.Printf("%s", data)
				return nil
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return apperrors.NewDataError("strategy", outPath, "failed to write file", err)
			}
			output.Success("Wrote %s", outPath)
			return nil
		},
	}
	f = addLegFlags(cmd, app)
	cmd.Flags().StringVar(&outPath, "out", "", "write YAML to this file")
	return cmd
}

func newStrategySaveCmd(app *App) *cobra.Command {
	var f *legFlags
	var underlying, description string

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save a strategy to the local database",
		Example: `  optlab strategy save weekly-condor --strategy iron-condor --atm 19500 --underlying NIFTY
  optlab strategy save hedge --leg "long put 95@2" --leg "short call 110@1.5"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			output := app.output(cmd)

			s, err := f.resolve(ctx, cmd, app)
			if err != nil {
				return err
			}
			s.ID = ""
			s.Name = args[0]
			if underlying != "" {
				s.Underlying = underlying
			}
			if description != "" {
				s.Description = description
			}

			st, err := app.Store()
			if err != nil {
				return err
			}
			if err := st.SaveStrategy(ctx, &s); err != nil {
				return err
			}
			app.Logger.Info().Str("strategy", s.Name).Str("id", s.ID).Msg("strategy saved")

			if output.IsJSON() {
				return output.JSON(s)
			}
			output.Success("Saved %s (%s)", s.Name, s.ID)
			return nil
		},
	}
	f = addLegFlags(cmd, app)
	cmd.Flags().StringVar(&underlying, "underlying", "", "underlying symbol")
	cmd.Flags().StringVar(&description, "description", "", "free-form note")
	return cmd
}

func newStrategySavedCmd(app *App) *cobra.Command {
	var filter store.StrategyFilter

	cmd := &cobra.Command{
		Use:   "saved",
		Short: "List saved strategies",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			st, err := app.Store()
			if err != nil {
				return err
			}
			list, err := st.ListStrategies(commandContext(cmd), filter)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				if list == nil {
					list = []models.OptionStrategy{}
				}
				return output.JSON(list)
			}
			if len(list) == 0 {
				output.Dim("No saved strategies")
				return nil
			}
			rows := make([][]string, len(list))
			for i, s := range list {
				rows[i] = []string{s.Name, s.Underlying, fmt.Sprintf("%d", len(s.Legs)),
					s.UpdatedAt.Local().Format(time.DateTime), s.ID}
			}
			output.Table([]string{"Name", "Underlying", "Legs", "Updated", "ID"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Underlying, "underlying", "", "only strategies on this underlying")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "maximum number of strategies")
	return cmd
}

func newStrategyShowCmd(app *App) *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "show <name|id>",
		Short: "Show a saved strategy with its key prices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			st, err := app.Store()
			if err != nil {
				return err
			}
			s, err := st.GetStrategy(commandContext(cmd), args[0])
			if err != nil {
				return err
			}

			if asYAML {
				data, err := strategies.Encode(*s)
				if err != nil {
					return err
				}
				output.Printf("%s", data)
				return nil
			}

			summary, err := app.Payoff.KeyPrices(s.Legs)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(struct {
					Strategy  *models.OptionStrategy `json:"strategy"`
					KeyPrices models.KeyPriceSummary `json:"key_prices"`
				}{s, summary})
			}

			printLegs(output, *s)
			if s.Description != "" {
				output.Dim("%s", s.Description)
			}
			output.Println()
			printKeyPrices(output, summary, s.Legs, app.Payoff.Params())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the strategy as YAML")
	return cmd
}

func newStrategyDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name|id>",
		Short: "Delete a saved strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			st, err := app.Store()
			if err != nil {
				return err
			}
			if err := st.DeleteStrategy(commandContext(cmd), args[0]); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": args[0]})
			}
			output.Success("Deleted %s", args[0])
			return nil
		},
	}
}

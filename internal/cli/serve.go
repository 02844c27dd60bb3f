package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"options-lab/internal/server"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pricing and payoff HTTP API",
		Long: `Starts a JSON HTTP API:

  GET  /healthz
  GET  /v1/price?spot=&strike=&years=&rate=&vol=
  GET  /v1/greeks?...&type=call
  GET  /v1/iv?...&type=call&price=
  POST /v1/payoff       {"legs": [...], "center": 0, "range": 0.5, "samples": 100}
  POST /v1/keyprices    {"legs": [...]}
  GET  /v1/strategies
  POST /v1/strategies/{name}/build
  GET  /v1/ws/payoff    WebSocket; each payoff request message gets a payoff response

Stops gracefully on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.New(app.Pricing, app.Payoff, app.Logger)
			return srv.Run(ctx, server.Options{
				Addr:         addr,
				ReadTimeout:  app.Config.Server.ReadTimeout,
				WriteTimeout: app.Config.Server.WriteTimeout,
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", app.Config.Server.Addr, "listen address")
	return cmd
}

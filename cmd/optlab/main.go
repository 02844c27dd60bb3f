package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"options-lab/internal/cli"
	"options-lab/internal/config"
	"options-lab/internal/logging"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// configDir pulls --config out of args before cobra parses them, since the
// command tree is built from the loaded configuration.
func configDir(args []string) string {
	fs := pflag.NewFlagSet("optlab", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	dir := fs.String("config", "", "")
	_ = fs.Parse(args)
	return *dir
}

func run(args []string) error {
	cfg, err := config.Load(configDir(args))
	if err != nil {
		return err
	}

	logger := logging.NewLoggerWithConfig(cfg.Logging)
	logger.Debug().Str("config", cfg.ConfigFile()).Msg("configuration loaded")

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	root := cli.NewRootCmd(app)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

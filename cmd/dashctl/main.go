package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bizdash/internal/backend"
	"bizdash/internal/cli"
	"bizdash/internal/config"
	applog "bizdash/internal/log"
)

var (
	cfg      *config.Config
	logger   *applog.Logger
	logLevel string

	rootCmd = &cobra.Command{
		Use:               "dashctl",
		Short:             "Inspect and aggregate expense summaries from the configured backend",
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(aggregateCmd())
	rootCmd.AddCommand(sourcesCmd())
	rootCmd.AddCommand(recordCmd())
}

func main() {
	ctx, stop := cli.SignalContext()
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig loads .env and the environment. Logs go to stderr so command
// output stays machine readable.
func initConfig(_ *cobra.Command, _ []string) error {
	lvl, err := applog.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logger = applog.New(applog.Config{Level: lvl, Component: applog.ComponentApp, Output: os.Stderr})
	applog.SetDefault(logger)

	cfg, err = cli.LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// openBackend builds the backend selected by DATA_BACKEND. The returned
// cleanup is never nil.
func openBackend(ctx context.Context) (backend.Backend, func(), error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	result, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if result.Cleanup == nil {
			return
		}
		if err := result.Cleanup(); err != nil {
			logger.Warn("Backend cleanup failed", applog.FieldError, err)
		}
	}
	return result.Backend, cleanup, nil
}

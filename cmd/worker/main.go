package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/insurance-graph/fraud-ring-backend/config"
	"github.com/insurance-graph/fraud-ring-backend/internal/bootstrap"
	"github.com/insurance-graph/fraud-ring-backend/internal/logging"
	"github.com/spf13/cobra"
)

var (
	logLevel string

	// set by PersistentPreRunE for every subcommand
	app *bootstrap.App
)

var rootCmd = &cobra.Command{
	Use:   "worker",
	Short: "Offline tasks for the fraud ring backend",
	Long: `worker runs the batch side of the fraud ring backend against the configured
graph store: synthetic data generation, detection passes, cleanup and statistics.

Connection settings come from the same environment (and .env file) as the API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		level := cfg.App.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		logging.Setup(level, cfg.App.Environment)

		app, err = bootstrap.NewApp(cmd.Context(), cfg, bootstrap.Requirements{})
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL")
	rootCmd.AddCommand(generateCmd, detectCmd, clearCmd, statsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	if app != nil {
		app.Close(context.Background())
	}
	stop()
	if err != nil {
		os.Exit(1)
	}
}

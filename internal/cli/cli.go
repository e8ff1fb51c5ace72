package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/bref-boxscores/internal/config"
	"github.com/pfrederiksen/bref-boxscores/internal/logger"
)

// ExitError is the process status when a command fails.
const ExitError = 1

var (
	flagConfig   string
	flagLogLevel string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boxscores",
		Short: "Scrape basketball-reference box scores into per-month tables",
		Long: `A CLI tool to scrape NBA box scores from basketball-reference.com.
Each month of each season becomes one CSV or XLSX file with a row per player
and team-totals row, tagged with team, venue, date, game id, and whether the
player points of every team add up to its reported total.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config file (env: BOXSCORES_*)")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newParseCmd())
	cmd.AddCommand(newLinksCmd())

	return cmd
}

// loadConfig resolves the configuration and installs the default logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))

	return cfg, nil
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}

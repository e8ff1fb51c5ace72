package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/bref-boxscores/internal/config"
	"github.com/pfrederiksen/bref-boxscores/internal/pipeline"
	"github.com/pfrederiksen/bref-boxscores/internal/scraper"
	"github.com/pfrederiksen/bref-boxscores/internal/storage"
)

var (
	flagFrom         int
	flagTo           int
	flagOut          string
	flagOutputFormat string
	flagVenue        string
	flagSummary      string
)

func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape seasons into one file per month",
		Long: `Fetch every season page in the configured range, follow its month
links and box-score links, and write {out}/{year}/{period}.csv (or .xlsx).
Documents that fail are reported and skipped; the command exits non-zero
after the whole range has been processed if anything failed.`,
		Args: cobra.NoArgs,
		RunE: runScrape,
	}

	cmd.Flags().IntVar(&flagFrom, "from", 0, "First season (default from config)")
	cmd.Flags().IntVar(&flagTo, "to", 0, "Last season (default from config)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output directory (default from config)")
	cmd.Flags().StringVar(&flagOutputFormat, "format", "", "File format: csv or xlsx (default from config)")
	cmd.Flags().StringVar(&flagVenue, "venue", "", "Section order: away-first or home-first")
	cmd.Flags().StringVar(&flagSummary, "summary", "text", "Summary format on stdout: text or json")

	return cmd
}

// applyScrapeFlags overrides cfg with the flags the user set.
func applyScrapeFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("from") {
		cfg.Source.FirstSeason = flagFrom
	}
	if flags.Changed("to") {
		cfg.Source.LastSeason = flagTo
	}
	if flags.Changed("out") {
		cfg.Output.Dir = flagOut
	}
	if flags.Changed("format") {
		cfg.Output.Format = flagOutputFormat
	}
	if flags.Changed("venue") {
		cfg.Layout.Venue = flagVenue
	}
	return cfg.Validate()
}

func runScrape(cmd *cobra.Command, args []string) error {
	summaryFormat := OutputFormat(flagSummary)
	if summaryFormat != FormatText && summaryFormat != FormatJSON {
		return fmt.Errorf("invalid summary format: %s (must be 'text' or 'json')", flagSummary)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyScrapeFlags(cmd, cfg); err != nil {
		return err
	}

	format, err := storage.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	store, err := storage.New(cfg.Output.Dir, format)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	opts, err := pipeline.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}

	fetcher := scraper.New(scraper.Options{
		UserAgent: cfg.Source.UserAgent,
		Timeout:   cfg.Source.Timeout,
		Uncomment: cfg.Source.Uncomment,
	})

	summary, runErr := pipeline.New(opts, fetcher, store).Run(cmd.Context())

	if err := WriteSummary(cmd.OutOrStdout(), summary, summaryFormat); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if runErr != nil {
		return fmt.Errorf("scrape interrupted: %w", runErr)
	}
	if summary.HasFailures() {
		return fmt.Errorf("scrape finished with %d failures", len(summary.Failures))
	}
	return nil
}

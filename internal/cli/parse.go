package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/bref-boxscores/internal/boxscore"
	"github.com/pfrederiksen/bref-boxscores/internal/config"
	"github.com/pfrederiksen/bref-boxscores/internal/consistency"
	"github.com/pfrederiksen/bref-boxscores/internal/links"
	"github.com/pfrederiksen/bref-boxscores/internal/pipeline"
	"github.com/pfrederiksen/bref-boxscores/internal/scraper"
)

var (
	flagDate        string
	flagLink        string
	flagParseFormat string
	flagLinkKind    string
	flagLinksFormat string
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Assemble and check one saved box-score page",
		Long: `Assemble a box-score page saved to disk into its game table and run
the points check over it. The game date comes from --date, from the date
prefix of --link, or from the file name, in that order.`,
		Args: cobra.ExactArgs(1),
		RunE: runParse,
	}

	cmd.Flags().StringVar(&flagDate, "date", "", "Game date as YYYY-MM-DD")
	cmd.Flags().StringVar(&flagLink, "link", "", "Box-score link the page was saved from")
	cmd.Flags().StringVar(&flagParseFormat, "format", "text", "Output format: text, json, or csv")

	return cmd
}

func newLinksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links FILE",
		Short: "List the month or box-score links of a saved page",
		Args:  cobra.ExactArgs(1),
		RunE:  runLinks,
	}

	cmd.Flags().StringVar(&flagLinkKind, "kind", "boxscores", "Link kind: months or boxscores")
	cmd.Flags().StringVar(&flagLinksFormat, "format", "text", "Output format: text or json")

	return cmd
}

// gameDate picks the date for a saved page.
func gameDate(file string) (time.Time, error) {
	switch {
	case flagDate != "":
		d, err := time.Parse("2006-01-02", flagDate)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --date: %w", err)
		}
		return d, nil
	case flagLink != "":
		return links.ParseDate(flagLink)
	default:
		d, err := links.ParseDate(filepath.Base(file))
		if err != nil {
			return time.Time{}, fmt.Errorf("cannot date page, pass --date or --link: %w", err)
		}
		return d, nil
	}
}

func readDocument(cfg *config.Config, file string) (*goquery.Document, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	defer f.Close()

	return scraper.New(scraper.Options{Uncomment: cfg.Source.Uncomment}).Parse(f)
}

func runParse(cmd *cobra.Command, args []string) error {
	format := OutputFormat(flagParseFormat)
	if format != FormatText && format != FormatJSON && format != FormatCSV {
		return fmt.Errorf("invalid format: %s (must be 'text', 'json', or 'csv')", flagParseFormat)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := pipeline.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}

	date, err := gameDate(args[0])
	if err != nil {
		return err
	}

	doc, err := readDocument(cfg, args[0])
	if err != nil {
		return err
	}

	game, err := boxscore.NewAssembler(opts.Layout).Assemble(doc, date)
	if err != nil {
		return fmt.Errorf("assembling %s: %w", args[0], err)
	}

	month := consistency.NewMonthTable([]*boxscore.GameTable{game})
	report, err := opts.Checker.Check(month.Rows)
	if err != nil {
		return fmt.Errorf("checking points: %w", err)
	}
	month.MarkPoints(report.OK)

	return WriteGame(cmd.OutOrStdout(), game, month, report, format)
}

func runLinks(cmd *cobra.Command, args []string) error {
	format := OutputFormat(flagLinksFormat)
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagLinksFormat)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var match links.Predicate
	switch flagLinkKind {
	case "months":
		match = links.HrefContains(cfg.Source.MonthMarker)
	case "boxscores":
		match = links.TextContains(cfg.Source.BoxScoreLabel)
	default:
		return fmt.Errorf("invalid kind: %s (must be 'months' or 'boxscores')", flagLinkKind)
	}

	doc, err := readDocument(cfg, args[0])
	if err != nil {
		return err
	}

	return WriteLinks(cmd.OutOrStdout(), links.Extract(doc, match), format)
}

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/pfrederiksen/bref-boxscores/internal/boxscore"
	"github.com/pfrederiksen/bref-boxscores/internal/config"
	"github.com/pfrederiksen/bref-boxscores/internal/consistency"
	"github.com/pfrederiksen/bref-boxscores/internal/links"
	"github.com/pfrederiksen/bref-boxscores/internal/logger"
	"github.com/pfrederiksen/bref-boxscores/internal/storage"
)

// Metric names recorded by a Pipeline.
const (
	MetricDocumentsFetched = "documents.fetched"
	MetricDocumentsParsed  = "documents.parsed"
	MetricDocumentsFailed  = "documents.failed"
	MetricMonthsWritten    = "months.written"
	MetricMonthsEmpty      = "months.empty"
	MetricMonthsFailed     = "months.failed"
	MetricSeasonsFailed    = "seasons.failed"
	MetricFetchTiming      = "fetch"
)

// Fetcher retrieves a parsed HTML document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// Sink persists one month.
type Sink interface {
	Write(year int, period string, t storage.Table) (string, error)
}

// Options holds everything a Pipeline needs besides its collaborators.
type Options struct {
	BaseURL       string
	Seasons       []int
	MonthLinks    links.Predicate
	BoxScoreLinks links.Predicate
	Layout        boxscore.Layout
	Checker       consistency.Checker
	// Logger defaults to logger.Default().
	Logger *logger.Logger
	// Metrics defaults to logger.DefaultMetrics().
	Metrics *logger.Metrics
}

// OptionsFromConfig translates a validated Config.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	venue, err := boxscore.ParseVenueOrder(cfg.Layout.Venue)
	if err != nil {
		return Options{}, err
	}

	return Options{
		BaseURL:       cfg.Source.BaseURL,
		Seasons:       cfg.Seasons(),
		MonthLinks:    links.HrefContains(cfg.Source.MonthMarker),
		BoxScoreLinks: links.TextContains(cfg.Source.BoxScoreLabel),
		Layout: boxscore.Layout{
			IsBoundary:    boxscore.NamedBoundary(cfg.Layout.Sentinel),
			HeaderRepeat:  cfg.Layout.HeaderRepeat,
			Venue:         venue,
			CaptionTokens: cfg.Layout.CaptionTokens,
		},
		Checker: consistency.Checker{
			Stat:     cfg.Check.Stat,
			IsTotals: boxscore.NamedBoundary(cfg.Layout.Sentinel),
			RelTol:   cfg.Check.RelTol,
			AbsTol:   cfg.Check.AbsTol,
		},
	}, nil
}

// MonthResult is the outcome of one month page.
type MonthResult struct {
	Year   int
	Period string
	URL    string
	// Table is nil when the month page could not be fetched.
	Table *consistency.MonthTable
	// Report is nil when the points check did not complete.
	Report   *consistency.Report
	Failures []*DocumentError
	// Path is where the month was written, empty when it was not.
	Path string
	// Err is set when the month was not persisted for a reason other than
	// being empty.
	Err *MonthError
}

// Empty reports whether no game table was assembled.
func (r *MonthResult) Empty() bool {
	return r.Table == nil || len(r.Table.Rows) == 0
}

// Summary is the outcome of a Run.
type Summary struct {
	RunID        string
	Seasons      int
	Months       []*MonthResult
	Files        []string
	Games        int
	Inconsistent int
	Failures     []error
	Duration     time.Duration
}

// HasFailures reports whether anything was skipped.
func (s *Summary) HasFailures() bool {
	return len(s.Failures) > 0
}

// Pipeline scrapes seasons into a Sink.
type Pipeline struct {
	opts      Options
	fetcher   Fetcher
	sink      Sink
	assembler *boxscore.Assembler
	log       *logger.Logger
	metrics   *logger.Metrics
	runID     string
}

// New creates a Pipeline. Nil predicates fall back to the default link rules.
func New(opts Options, fetcher Fetcher, sink Sink) *Pipeline {
	if opts.MonthLinks == nil {
		opts.MonthLinks = links.HrefContains(links.SeasonMonthMarker)
	}
	if opts.BoxScoreLinks == nil {
		opts.BoxScoreLinks = links.TextContains(links.BoxScoreLabel)
	}
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = logger.DefaultMetrics()
	}

	runID := uuid.NewString()
	return &Pipeline{
		opts:      opts,
		fetcher:   fetcher,
		sink:      sink,
		assembler: boxscore.NewAssembler(opts.Layout),
		log:       opts.Logger.With(logger.Fields{"run_id": runID}),
		metrics:   opts.Metrics,
		runID:     runID,
	}
}

// RunID identifies this pipeline's log lines.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Run scrapes every configured season. The returned error is non-nil only
// when ctx is cancelled; the Summary is valid either way.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{RunID: p.runID}

	p.log.Info("Starting scrape", logger.Fields{
		"seasons":  len(p.opts.Seasons),
		"base_url": p.opts.BaseURL,
	})

	var runErr error
	for _, year := range p.opts.Seasons {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		months, err := p.ParseSeason(ctx, year)
		summary.Seasons++
		for _, m := range months {
			summary.add(m)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				runErr = ctxErr
				break
			}
			summary.Failures = append(summary.Failures, err)
		}
	}

	summary.Duration = time.Since(start)

	fields := p.metrics.GetSnapshot().Fields()
	fields["seasons"] = summary.Seasons
	fields["files"] = len(summary.Files)
	fields["failures"] = len(summary.Failures)
	fields["duration"] = summary.Duration.String()
	p.log.Info("Scrape finished", fields)

	return summary, runErr
}

func (s *Summary) add(m *MonthResult) {
	s.Months = append(s.Months, m)
	if m.Table != nil {
		s.Games += m.Table.Games
	}
	if m.Path != "" {
		s.Files = append(s.Files, m.Path)
	}
	if m.Report != nil && !m.Report.OK {
		s.Inconsistent++
	}
	for _, f := range m.Failures {
		s.Failures = append(s.Failures, f)
	}
	if m.Err != nil {
		s.Failures = append(s.Failures, m.Err)
	}
}

// ParseSeason fetches the season page for year and parses each of its
// months in document order. A season page failure is returned as a
// *SeasonError; month failures are carried in the results.
func (p *Pipeline) ParseSeason(ctx context.Context, year int) ([]*MonthResult, error) {
	url, err := links.Resolve(p.opts.BaseURL, links.SeasonPath(year))
	if err != nil {
		p.metrics.IncrCounter(MetricSeasonsFailed)
		return nil, &SeasonError{Year: year, URL: links.SeasonPath(year), Err: err}
	}

	doc, err := p.fetch(ctx, url)
	if err != nil {
		p.metrics.IncrCounter(MetricSeasonsFailed)
		p.log.Error("Season page failed", logger.Fields{"season": year, "url": url}, err)
		return nil, &SeasonError{Year: year, URL: url, Err: err}
	}

	monthLinks := links.Extract(doc, p.opts.MonthLinks)
	p.log.Info("Season page parsed", logger.Fields{"season": year, "months": len(monthLinks)})

	results := make([]*MonthResult, 0, len(monthLinks))
	for _, href := range monthLinks {
		res, err := p.ParseMonth(ctx, year, href)
		results = append(results, res)
		if err != nil && ctx.Err() != nil {
			return results, ctx.Err()
		}
	}
	return results, nil
}

// ParseMonth fetches one month page, assembles each of its box scores, runs
// the points check, and writes the month to the sink. The returned result is
// never nil. The returned error is res.Err, or the context error when
// cancelled mid-month.
func (p *Pipeline) ParseMonth(ctx context.Context, year int, monthLink string) (*MonthResult, error) {
	res := &MonthResult{
		Year:     year,
		Period:   links.PeriodName(monthLink),
		Failures: make([]*DocumentError, 0),
	}
	log := p.log.With(logger.Fields{"season": year, "period": res.Period})

	fail := func(err error) (*MonthResult, error) {
		p.metrics.IncrCounter(MetricMonthsFailed)
		res.Err = &MonthError{Year: year, Period: res.Period, URL: res.URL, Err: err}
		log.Error("Month not written", logger.Fields{"url": res.URL}, err)
		return res, res.Err
	}

	url, err := links.Resolve(p.opts.BaseURL, monthLink)
	if err != nil {
		res.URL = monthLink
		return fail(err)
	}
	res.URL = url

	doc, err := p.fetch(ctx, url)
	if err != nil {
		return fail(err)
	}

	boxLinks := links.Extract(doc, p.opts.BoxScoreLinks)
	log.Info("Month page parsed", logger.Fields{"box_scores": len(boxLinks)})

	res.Table = consistency.NewMonthTable(nil)
	for i, href := range boxLinks {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		table, docErr := p.parseBoxScore(ctx, res.Period, href)
		if docErr != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			p.metrics.IncrCounter(MetricDocumentsFailed)
			res.Failures = append(res.Failures, docErr)
			log.Warn("Box score skipped", logger.Fields{"url": docErr.URL, "error": docErr.Err.Error()})
			continue
		}

		p.metrics.IncrCounter(MetricDocumentsParsed)
		res.Table.Add(table)
		log.Debug("Box score parsed", logger.Fields{
			"game_id":  table.GameID,
			"progress": fmt.Sprintf("%d/%d", i+1, len(boxLinks)),
		})
	}

	if res.Empty() {
		p.metrics.IncrCounter(MetricMonthsEmpty)
		log.Warn("Month has no games, not written", logger.Fields{"failures": len(res.Failures)})
		return res, nil
	}

	report, err := p.opts.Checker.Check(res.Table.Rows)
	if err != nil {
		return fail(fmt.Errorf("checking points: %w", err))
	}
	res.Report = report
	res.Table.MarkPoints(report.OK)

	if !report.OK {
		for _, g := range report.Failed() {
			log.Warn("Points do not add up", logger.Fields{
				"game_id":  g.Key.GameID,
				"team":     g.Key.Team,
				"summed":   g.Summed,
				"reported": g.Reported,
			})
		}
	}

	path, err := p.sink.Write(year, res.Period, res.Table)
	if err != nil {
		return fail(fmt.Errorf("writing month: %w", err))
	}
	res.Path = path
	p.metrics.IncrCounter(MetricMonthsWritten)

	log.Info("Month written", logger.Fields{
		"path":      path,
		"games":     res.Table.Games,
		"rows":      len(res.Table.Rows),
		"points_ok": report.OK,
		"failures":  len(res.Failures),
	})
	return res, nil
}

func (p *Pipeline) parseBoxScore(ctx context.Context, period, href string) (*boxscore.GameTable, *DocumentError) {
	docErr := &DocumentError{Period: period, URL: href}

	date, err := links.ParseDate(href)
	if err != nil {
		docErr.Err = err
		return nil, docErr
	}
	docErr.Date = date

	url, err := links.Resolve(p.opts.BaseURL, href)
	if err != nil {
		docErr.Err = err
		return nil, docErr
	}
	docErr.URL = url

	doc, err := p.fetch(ctx, url)
	if err != nil {
		docErr.Err = err
		return nil, docErr
	}

	table, err := p.assembler.Assemble(doc, date)
	if err != nil {
		docErr.Err = err
		return nil, docErr
	}
	return table, nil
}

func (p *Pipeline) fetch(ctx context.Context, url string) (*goquery.Document, error) {
	start := time.Now()
	doc, err := p.fetcher.Fetch(ctx, url)
	p.metrics.RecordTiming(MetricFetchTiming, time.Since(start))
	if err == nil {
		p.metrics.IncrCounter(MetricDocumentsFetched)
	}
	return doc, err
}

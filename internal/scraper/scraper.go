package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultUserAgent is sent when Options.UserAgent is empty.
	DefaultUserAgent = "bref-boxscores/1.0 (github.com/pfrederiksen/bref-boxscores)"
	// DefaultTimeout bounds each request when Options.Timeout is not set.
	DefaultTimeout = 30 * time.Second
)

// StatusError reports a response other than 200 OK.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d for %s", e.Code, e.URL)
}

// Options configures a Fetcher. Zero fields fall back to the defaults.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// Uncomment removes "<!--" and "-->" before parsing.
	Uncomment bool
	// Client overrides the HTTP client; Timeout is ignored when set.
	Client *http.Client
}

// Fetcher retrieves and parses HTML documents.
type Fetcher struct {
	client    *http.Client
	userAgent string
	uncomment bool
}

// New creates a Fetcher from opts.
func New(opts Options) *Fetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Fetcher{
		client:    client,
		userAgent: opts.UserAgent,
		uncomment: opts.Uncomment,
	}
}

// Fetch GETs url and parses the body.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	return f.parse(resp.Body)
}

// Parse builds a document from r, honouring the Uncomment option.
func (f *Fetcher) Parse(r io.Reader) (*goquery.Document, error) {
	return f.parse(r)
}

func (f *Fetcher) parse(r io.Reader) (*goquery.Document, error) {
	if f.uncomment {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading body: %w", err)
		}
		r = strings.NewReader(StripComments(string(data)))
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// StripComments drops comment markers but keeps what they enclosed.
func StripComments(html string) string {
	clean := strings.ReplaceAll(html, "<!--", "")
	return strings.ReplaceAll(clean, "-->", "")
}

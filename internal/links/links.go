package links

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// SeasonMonthMarker appears in the href of every month page linked from a season page.
	SeasonMonthMarker = "games-"
	// BoxScoreLabel is the anchor text of every box-score link on a month page.
	BoxScoreLabel = "Box Score"

	dateLayout    = "20060102"
	dateTokenSize = len(dateLayout)
)

// Predicate decides whether an anchor with the given href and text is wanted.
type Predicate func(href, text string) bool

// HrefContains matches anchors whose href contains marker.
func HrefContains(marker string) Predicate {
	return func(href, _ string) bool {
		return strings.Contains(href, marker)
	}
}

// TextContains matches anchors whose text contains label.
func TextContains(label string) Predicate {
	return func(_, text string) bool {
		return strings.Contains(text, label)
	}
}

// Extract returns the href of every anchor in doc accepted by match, in
// document order. Anchors without an href are ignored. Duplicates are kept.
func Extract(doc *goquery.Document, match Predicate) []string {
	hrefs := make([]string, 0)

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if match(href, a.Text()) {
			hrefs = append(hrefs, href)
		}
	})

	return hrefs
}

// SeasonMonthLinks returns the month page links of a season page.
func SeasonMonthLinks(doc *goquery.Document) []string {
	return Extract(doc, HrefContains(SeasonMonthMarker))
}

// BoxScoreLinks returns the box-score links of a month page.
func BoxScoreLinks(doc *goquery.Document) []string {
	return Extract(doc, TextContains(BoxScoreLabel))
}

// MalformedLinkError reports a box-score link without a valid date token.
type MalformedLinkError struct {
	Link   string
	Token  string
	Reason string
}

func (e *MalformedLinkError) Error() string {
	return fmt.Sprintf("malformed box score link %q: date token %q %s", e.Link, e.Token, e.Reason)
}

// ParseDate reads the YYYYMMDD date that prefixes the final path segment of
// a box-score link. The returned time is midnight UTC.
func ParseDate(link string) (time.Time, error) {
	segment := link
	if i := strings.LastIndex(segment, "/"); i >= 0 {
		segment = segment[i+1:]
	}

	token := segment
	if len(token) > dateTokenSize {
		token = token[:dateTokenSize]
	}

	if len(token) < dateTokenSize {
		return time.Time{}, &MalformedLinkError{Link: link, Token: token, Reason: "is shorter than 8 characters"}
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return time.Time{}, &MalformedLinkError{Link: link, Token: token, Reason: "is not all digits"}
		}
	}

	t, err := time.Parse(dateLayout, token)
	if err != nil {
		return time.Time{}, &MalformedLinkError{Link: link, Token: token, Reason: "is not a calendar date"}
	}
	return t, nil
}

// PeriodName returns the file stem of a month page link, e.g.
// "/leagues/NBA_2020_games-january.html" becomes "NBA_2020_games-january".
func PeriodName(monthLink string) string {
	p := monthLink
	if u, err := url.Parse(monthLink); err == nil {
		p = u.Path
	}
	base := path.Base(p)
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return base
}

// SeasonPath returns the site-relative path of the schedule page for the
// season ending in year.
func SeasonPath(year int) string {
	return fmt.Sprintf("/leagues/NBA_%d_games.html", year)
}

// Resolve joins href onto baseURL. Absolute hrefs are returned unchanged.
// Site-relative hrefs ("/boxscores/...") replace any path on baseURL, so
// baseURL should be a bare origin.
func Resolve(baseURL, href string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parsing link %q: %w", href, err)
	}
	return base.ResolveReference(ref).String(), nil
}

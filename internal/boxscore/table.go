package boxscore

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// SentinelName is the header text of the row closing each team section.
	SentinelName = "Team Totals"
	// HeaderRepeatName is the header text of the column-header row repeated mid-table.
	HeaderRepeatName = "Player"

	dateFormat = "2006-01-02"
)

// VenueOrder says which caption/section order corresponds to the home team.
type VenueOrder int

const (
	// AwayFirst treats the first section as the away team and the second as
	// the home team. This has not been checked against the source pages.
	AwayFirst VenueOrder = iota
	// HomeFirst is the flipped assumption.
	HomeFirst
)

func (v VenueOrder) String() string {
	if v == HomeFirst {
		return "home-first"
	}
	return "away-first"
}

// ParseVenueOrder accepts "away-first" or "home-first".
func ParseVenueOrder(s string) (VenueOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "away-first", "":
		return AwayFirst, nil
	case "home-first":
		return HomeFirst, nil
	default:
		return AwayFirst, fmt.Errorf("invalid venue order: %s (must be 'away-first' or 'home-first')", s)
	}
}

// Layout describes how a box-score page is split into team sections.
type Layout struct {
	// IsBoundary reports whether a record closes a team section.
	IsBoundary func(StatRecord) bool
	// HeaderRepeat is the name of repeated column-header rows to discard.
	HeaderRepeat string
	// Venue maps section order to home/away.
	Venue VenueOrder
	// CaptionTokens is how many leading caption words form the team name.
	CaptionTokens int
}

// NamedBoundary returns a boundary predicate matching records named name.
func NamedBoundary(name string) func(StatRecord) bool {
	return func(r StatRecord) bool {
		return r.Name == name
	}
}

// DefaultLayout splits at "Team Totals", drops "Player" rows, treats the
// first team as away, and names teams from two caption words.
var DefaultLayout = Layout{
	IsBoundary:    NamedBoundary(SentinelName),
	HeaderRepeat:  HeaderRepeatName,
	Venue:         AwayFirst,
	CaptionTokens: 2,
}

// TeamSection is one team's records, closed by its totals record.
type TeamSection struct {
	Team    string
	IsHome  bool
	Records []StatRecord
}

// Row is a StatRecord with its game attribution.
type Row struct {
	StatRecord
	Team   string
	IsHome bool
	Date   time.Time
	GameID string
}

// GameTable holds both sections of one game, in page order.
type GameTable struct {
	GameID   string
	Date     time.Time
	Sections [2]TeamSection
}

// Rows flattens the table, section by section, in page order.
func (g *GameTable) Rows() []Row {
	rows := make([]Row, 0, len(g.Sections[0].Records)+len(g.Sections[1].Records))
	for _, sec := range g.Sections {
		for _, rec := range sec.Records {
			rows = append(rows, Row{
				StatRecord: rec,
				Team:       sec.Team,
				IsHome:     sec.IsHome,
				Date:       g.Date,
				GameID:     g.GameID,
			})
		}
	}
	return rows
}

// Home returns the section tagged as the home team.
func (g *GameTable) Home() TeamSection {
	if g.Sections[0].IsHome {
		return g.Sections[0]
	}
	return g.Sections[1]
}

// Away returns the section tagged as the away team.
func (g *GameTable) Away() TeamSection {
	if g.Sections[0].IsHome {
		return g.Sections[1]
	}
	return g.Sections[0]
}

// UnexpectedSectionCountError reports a page that does not have the
// two-team layout: Count boundary rows or captions instead of two.
type UnexpectedSectionCountError struct {
	What  string
	Count int
	Date  time.Time
}

func (e *UnexpectedSectionCountError) Error() string {
	return fmt.Sprintf("box score for %s has %d %s, want 2", e.Date.Format(dateFormat), e.Count, e.What)
}

// GameID derives the game key from both team names, in table order, and the date.
func GameID(team1, team2 string, date time.Time) string {
	return team1 + "_" + team2 + "_" + date.Format(dateFormat)
}

// Assembler builds GameTables from box-score documents.
type Assembler struct {
	layout Layout
}

// NewAssembler creates an Assembler. Zero fields of layout fall back to DefaultLayout.
func NewAssembler(layout Layout) *Assembler {
	if layout.IsBoundary == nil {
		layout.IsBoundary = DefaultLayout.IsBoundary
	}
	if layout.HeaderRepeat == "" {
		layout.HeaderRepeat = DefaultLayout.HeaderRepeat
	}
	if layout.CaptionTokens <= 0 {
		layout.CaptionTokens = DefaultLayout.CaptionTokens
	}
	return &Assembler{layout: layout}
}

// AssembleGameTable assembles doc with DefaultLayout.
func AssembleGameTable(doc *goquery.Document, date time.Time) (*GameTable, error) {
	return NewAssembler(DefaultLayout).Assemble(doc, date)
}

// Assemble parses every row of doc, splits the data rows at the two boundary
// records, and tags both sections with team, venue, date, and game id.
func (a *Assembler) Assemble(doc *goquery.Document, date time.Time) (*GameTable, error) {
	records := a.dataRecords(doc)

	bounds := make([]int, 0, 2)
	for i, rec := range records {
		if a.layout.IsBoundary(rec) {
			bounds = append(bounds, i)
		}
	}
	if len(bounds) != 2 {
		return nil, &UnexpectedSectionCountError{What: "team totals rows", Count: len(bounds), Date: date}
	}

	teams, err := a.teamNames(doc, date)
	if err != nil {
		return nil, err
	}

	split := bounds[0] + 1
	firstIsHome := a.layout.Venue == HomeFirst

	table := &GameTable{
		GameID: GameID(teams[0], teams[1], date),
		Date:   date,
		Sections: [2]TeamSection{
			{Team: teams[0], IsHome: firstIsHome, Records: records[:split:split]},
			{Team: teams[1], IsHome: !firstIsHome, Records: records[split:]},
		},
	}

	return table, nil
}

// dataRecords returns the parsed rows of doc that carry player or totals data.
func (a *Assembler) dataRecords(doc *goquery.Document) []StatRecord {
	records := make([]StatRecord, 0)

	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		rec := SafeParseRow(tr)
		if rec.IsEmpty() || rec.Name == "" || rec.Name == a.layout.HeaderRepeat {
			return
		}
		records = append(records, rec)
	})

	return records
}

// teamNames reads one team name from each of the page's two captions.
func (a *Assembler) teamNames(doc *goquery.Document, date time.Time) ([2]string, error) {
	var names [2]string

	captions := doc.Find("caption")
	if captions.Length() != 2 {
		return names, &UnexpectedSectionCountError{What: "table captions", Count: captions.Length(), Date: date}
	}

	captions.Each(func(i int, c *goquery.Selection) {
		words := strings.Fields(c.Text())
		if len(words) > a.layout.CaptionTokens {
			words = words[:a.layout.CaptionTokens]
		}
		names[i] = strings.Join(words, " ")
	})

	return names, nil
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/bref-boxscores/internal/boxscore"
	"github.com/pfrederiksen/bref-boxscores/internal/consistency"
	"github.com/pfrederiksen/bref-boxscores/internal/pipeline"
	"github.com/pfrederiksen/bref-boxscores/internal/storage"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatCSV  OutputFormat = "csv"
)

// SummaryOutput is the JSON shape of a scrape summary.
type SummaryOutput struct {
	RunID        string        `json:"run_id"`
	Seasons      int           `json:"seasons"`
	Games        int           `json:"games"`
	Files        []string      `json:"files"`
	Inconsistent int           `json:"inconsistent_months"`
	Failures     []string      `json:"failures"`
	Duration     string        `json:"duration"`
	Months       []MonthOutput `json:"months"`
}

// MonthOutput is one month of a scrape summary.
type MonthOutput struct {
	Year     int    `json:"year"`
	Period   string `json:"period"`
	Games    int    `json:"games"`
	PointsOK *bool  `json:"points_ok,omitempty"`
	Path     string `json:"path,omitempty"`
	Failures int    `json:"failures"`
	Error    string `json:"error,omitempty"`
}

// GameOutput is the JSON shape of one parsed game.
type GameOutput struct {
	GameID   string        `json:"game_id"`
	Date     string        `json:"date"`
	PointsOK bool          `json:"points_ok"`
	Teams    []TeamOutput  `json:"teams"`
	Groups   []GroupOutput `json:"groups"`
}

// TeamOutput is one team section of a parsed game.
type TeamOutput struct {
	Team    string              `json:"team"`
	IsHome  bool                `json:"is_home"`
	Records []map[string]string `json:"records"`
}

// GroupOutput is one points comparison.
type GroupOutput struct {
	Team     string  `json:"team"`
	Summed   float64 `json:"summed"`
	Reported float64 `json:"reported"`
	OK       bool    `json:"ok"`
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// WriteSummary writes a scrape summary as text or JSON.
func WriteSummary(w io.Writer, s *pipeline.Summary, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, summaryOutput(s))
	case FormatText:
		return writeSummaryText(w, s)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func summaryOutput(s *pipeline.Summary) *SummaryOutput {
	out := &SummaryOutput{
		RunID:        s.RunID,
		Seasons:      s.Seasons,
		Games:        s.Games,
		Files:        append([]string{}, s.Files...),
		Inconsistent: s.Inconsistent,
		Failures:     make([]string, 0, len(s.Failures)),
		Duration:     s.Duration.Round(time.Millisecond).String(),
		Months:       make([]MonthOutput, 0, len(s.Months)),
	}
	for _, f := range s.Failures {
		out.Failures = append(out.Failures, f.Error())
	}
	for _, m := range s.Months {
		mo := MonthOutput{
			Year:     m.Year,
			Period:   m.Period,
			Path:     m.Path,
			Failures: len(m.Failures),
		}
		if m.Table != nil {
			mo.Games = m.Table.Games
			if m.Table.Checked() {
				ok := m.Table.PointsOK
				mo.PointsOK = &ok
			}
		}
		if m.Err != nil {
			mo.Error = m.Err.Error()
		}
		out.Months = append(out.Months, mo)
	}
	return out
}

func writeSummaryText(w io.Writer, s *pipeline.Summary) error {
	for _, m := range s.Months {
		switch {
		case m.Err != nil:
			fmt.Fprintf(w, "FAILED  %d %s: %v\n", m.Year, m.Period, m.Err.Err)
		case m.Empty():
			fmt.Fprintf(w, "EMPTY   %d %s\n", m.Year, m.Period)
		case m.Path == "":
			fmt.Fprintf(w, "SKIPPED %d %s\n", m.Year, m.Period)
		case !m.Table.PointsOK:
			fmt.Fprintf(w, "WROTE   %d %s (%d games, points mismatch) -> %s\n", m.Year, m.Period, m.Table.Games, m.Path)
		default:
			fmt.Fprintf(w, "WROTE   %d %s (%d games) -> %s\n", m.Year, m.Period, m.Table.Games, m.Path)
		}
	}

	if len(s.Failures) > 0 {
		fmt.Fprintf(w, "\nFailures (%d):\n", len(s.Failures))
		for _, f := range s.Failures {
			fmt.Fprintf(w, "  %v\n", f)
		}
	}

	fmt.Fprintf(w, "\nTotal: %d games in %d files across %d seasons (run %s)\n",
		s.Games, len(s.Files), s.Seasons, s.RunID)
	return nil
}

// WriteGame writes one parsed game as text, JSON, or CSV.
func WriteGame(w io.Writer, g *boxscore.GameTable, m *consistency.MonthTable, r *consistency.Report, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, gameOutput(g, r))
	case FormatCSV:
		return storage.WriteCSV(w, m.Columns(), m.Records())
	case FormatText:
		return writeGameText(w, g, r)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func gameOutput(g *boxscore.GameTable, r *consistency.Report) *GameOutput {
	out := &GameOutput{
		GameID:   g.GameID,
		Date:     g.Date.Format("2006-01-02"),
		PointsOK: r.OK,
		Teams:    make([]TeamOutput, 0, len(g.Sections)),
		Groups:   make([]GroupOutput, 0, len(r.Groups)),
	}
	for _, sec := range g.Sections {
		t := TeamOutput{Team: sec.Team, IsHome: sec.IsHome, Records: make([]map[string]string, 0, len(sec.Records))}
		for _, rec := range sec.Records {
			row := make(map[string]string, len(rec.Values)+1)
			for k, v := range rec.Values {
				row[k] = v
			}
			row[consistency.ColName] = rec.Name
			t.Records = append(t.Records, row)
		}
		out.Teams = append(out.Teams, t)
	}
	for _, grp := range r.Groups {
		out.Groups = append(out.Groups, GroupOutput{
			Team:     grp.Key.Team,
			Summed:   grp.Summed,
			Reported: grp.Reported,
			OK:       grp.OK,
		})
	}
	return out
}

func writeGameText(w io.Writer, g *boxscore.GameTable, r *consistency.Report) error {
	fmt.Fprintf(w, "%s (%s)\n", g.GameID, g.Date.Format("2006-01-02"))

	for _, sec := range g.Sections {
		venue := "away"
		if sec.IsHome {
			venue = "home"
		}
		fmt.Fprintf(w, "\n%s (%s, %d rows):\n", sec.Team, venue, len(sec.Records))
		for _, rec := range sec.Records {
			pts, ok := rec.Get(consistency.PointsStat)
			if !ok {
				pts = "-"
			}
			fmt.Fprintf(w, "  %-28s %s\n", rec.Name, pts)
		}
	}

	fmt.Fprintln(w)
	for _, grp := range r.Groups {
		mark := "OK"
		if !grp.OK {
			mark = "MISMATCH"
		}
		fmt.Fprintf(w, "%-8s %s: players %g, totals %g\n", mark, grp.Key.Team, grp.Summed, grp.Reported)
	}
	fmt.Fprintf(w, "\npoints_ok: %t\n", r.OK)
	return nil
}

// WriteLinks writes one link per line, or a JSON array.
func WriteLinks(w io.Writer, hrefs []string, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, hrefs)
	case FormatText:
		for _, h := range hrefs {
			fmt.Fprintln(w, h)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

package consistency

import (
	"strconv"

	"github.com/pfrederiksen/bref-boxscores/internal/boxscore"
)

// Derived column names, appended after the stat labels.
const (
	ColName     = "name"
	ColTeam     = "team"
	ColIsHome   = "is_home"
	ColDate     = "date"
	ColGameID   = "game_id"
	ColPointsOK = "points_ok"
)

var derivedColumns = []string{ColName, ColTeam, ColIsHome, ColDate, ColGameID, ColPointsOK}

// MonthTable is every game row of one period plus the period-wide points verdict.
type MonthTable struct {
	Rows     []boxscore.Row
	Games    int
	PointsOK bool
	checked  bool
}

// NewMonthTable concatenates games in order.
func NewMonthTable(games []*boxscore.GameTable) *MonthTable {
	m := &MonthTable{Rows: make([]boxscore.Row, 0)}
	for _, g := range games {
		m.Add(g)
	}
	return m
}

// Add appends one game's rows.
func (m *MonthTable) Add(g *boxscore.GameTable) {
	m.Rows = append(m.Rows, g.Rows()...)
	m.Games++
}

// MarkPoints stamps the points verdict on every row.
func (m *MonthTable) MarkPoints(ok bool) {
	m.PointsOK = ok
	m.checked = true
}

// Checked reports whether MarkPoints has been called.
func (m *MonthTable) Checked() bool {
	return m.checked
}

// Columns returns every stat label seen in the period, in first-seen order,
// followed by the derived columns. Stat labels that collide with a derived
// column name are dropped.
func (m *MonthTable) Columns() []string {
	reserved := make(map[string]bool, len(derivedColumns))
	for _, c := range derivedColumns {
		reserved[c] = true
	}

	seen := make(map[string]bool)
	cols := make([]string, 0)
	for _, r := range m.Rows {
		for _, label := range r.Labels {
			if seen[label] || reserved[label] {
				continue
			}
			seen[label] = true
			cols = append(cols, label)
		}
	}

	return append(cols, derivedColumns...)
}

// Records renders each row as strings in Columns order. Stats a row did not
// report are empty strings.
func (m *MonthTable) Records() [][]string {
	cols := m.Columns()
	statCols := cols[:len(cols)-len(derivedColumns)]
	pointsOK := ""
	if m.checked {
		pointsOK = strconv.FormatBool(m.PointsOK)
	}

	records := make([][]string, 0, len(m.Rows))
	for _, r := range m.Rows {
		rec := make([]string, 0, len(cols))
		for _, label := range statCols {
			rec = append(rec, r.Values[label])
		}
		rec = append(rec,
			r.Name,
			r.Team,
			strconv.FormatBool(r.IsHome),
			r.Date.Format("2006-01-02"),
			r.GameID,
			pointsOK,
		)
		records = append(records, rec)
	}

	return records
}

package boxscore

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LabelAttr is the cell attribute holding a column's stable stat label.
const LabelAttr = "data-stat"

// StatRecord is one parsed table row. Values is keyed by stat label; Labels
// keeps the labels in cell order.
type StatRecord struct {
	Name   string
	Labels []string
	Values map[string]string
}

// IsEmpty reports whether r is the "not a data row" record.
func (r StatRecord) IsEmpty() bool {
	return r.Name == "" && len(r.Values) == 0
}

// Get returns the raw value of label and whether the row reported it.
func (r StatRecord) Get(label string) (string, bool) {
	v, ok := r.Values[label]
	return v, ok
}

// RowShapeError reports a row without a header cell, such as a separator row.
type RowShapeError struct {
	Cells int
}

func (e *RowShapeError) Error() string {
	return fmt.Sprintf("row has no header cell (%d data cells)", e.Cells)
}

// ParseRow builds a StatRecord from a table row. The name comes from the
// row's first th; every td carrying a data-stat label contributes one value.
// Cells without a label are not statistics and are skipped.
func ParseRow(row *goquery.Selection) (StatRecord, error) {
	cells := row.Find("td")

	header := row.Find("th").First()
	if header.Length() == 0 {
		return StatRecord{}, &RowShapeError{Cells: cells.Length()}
	}

	rec := StatRecord{
		Name:   strings.TrimSpace(header.Text()),
		Labels: make([]string, 0, cells.Length()),
		Values: make(map[string]string, cells.Length()),
	}

	cells.Each(func(_ int, td *goquery.Selection) {
		label, ok := td.Attr(LabelAttr)
		if !ok || label == "" {
			return
		}
		if _, seen := rec.Values[label]; !seen {
			rec.Labels = append(rec.Labels, label)
		}
		rec.Values[label] = strings.TrimSpace(td.Text())
	})

	return rec, nil
}

// SafeParseRow is ParseRow with the RowShapeError turned into an empty
// record. Callers must skip empty records.
func SafeParseRow(row *goquery.Selection) StatRecord {
	rec, err := ParseRow(row)
	if err != nil {
		return StatRecord{}
	}
	return rec
}

package pipeline

import (
	"fmt"
	"time"
)

// DocumentError records one box score that was skipped.
type DocumentError struct {
	Period string
	URL    string
	// Date is zero when the link itself could not be dated.
	Date time.Time
	Err  error
}

func (e *DocumentError) Error() string {
	if e.Date.IsZero() {
		return fmt.Sprintf("%s: box score %s: %v", e.Period, e.URL, e.Err)
	}
	return fmt.Sprintf("%s: box score %s (%s): %v", e.Period, e.URL, e.Date.Format("2006-01-02"), e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// MonthError records a month that was not persisted.
type MonthError struct {
	Year   int
	Period string
	URL    string
	Err    error
}

func (e *MonthError) Error() string {
	return fmt.Sprintf("season %d month %s: %v", e.Year, e.Period, e.Err)
}

func (e *MonthError) Unwrap() error {
	return e.Err
}

// SeasonError records a season whose page could not be read.
type SeasonError struct {
	Year int
	URL  string
	Err  error
}

func (e *SeasonError) Error() string {
	return fmt.Sprintf("season %d (%s): %v", e.Year, e.URL, e.Err)
}

func (e *SeasonError) Unwrap() error {
	return e.Err
}

package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format selects the file type written by Storage.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"

	// SheetName is the worksheet holding the rows in XLSX output.
	SheetName = "boxscores"
)

// ParseFormat accepts "csv" or "xlsx"; an empty string means csv.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unknown output format: %q", s)
	}
}

// Table is anything with a header and string records.
type Table interface {
	Columns() []string
	Records() [][]string
}

// Storage handles persistence of month tables
type Storage struct {
	dataDir string
	format  Format
}

// New creates a new Storage instance rooted at dataDir
func New(dataDir string, format Format) (*Storage, error) {
	if format != FormatCSV && format != FormatXLSX {
		return nil, fmt.Errorf("unknown output format: %q", format)
	}

	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
		format:  format,
	}, nil
}

// Dir returns the expanded output root.
func (s *Storage) Dir() string {
	return s.dataDir
}

// Path returns the file a period of year is written to.
func (s *Storage) Path(year int, period string) string {
	return filepath.Join(s.dataDir, strconv.Itoa(year), period+"."+string(s.format))
}

// Write persists t for (year, period) and returns the file path.
func (s *Storage) Write(year int, period string, t Table) (string, error) {
	if period == "" || strings.ContainsAny(period, `/\`) {
		return "", fmt.Errorf("invalid period name: %q", period)
	}

	path := s.Path(year, period)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating season directory: %w", err)
	}

	var err error
	switch s.format {
	case FormatXLSX:
		err = writeXLSX(path, t.Columns(), t.Records())
	default:
		err = writeCSVFile(path, t.Columns(), t.Records())
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

func writeCSVFile(path string, header []string, records [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	if err := WriteCSV(file, header, records); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing file: %w", err)
	}
	return nil
}

// WriteCSV writes header followed by records.
func WriteCSV(w io.Writer, header []string, records [][]string) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

func writeXLSX(path string, header []string, records [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	if err := setRow(f, 1, stringsToCells(header)); err != nil {
		return err
	}
	for i, record := range records {
		cells := make([]interface{}, len(record))
		for j, v := range record {
			cells[j] = cellValue(v)
		}
		if err := setRow(f, i+2, cells); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("addressing row %d: %w", row, err)
	}
	if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
		return fmt.Errorf("writing row %d: %w", row, err)
	}
	return nil
}

func stringsToCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

// cellValue stores numeric stats as numbers so spreadsheets can sum them.
func cellValue(s string) interface{} {
	if s == "" {
		return s
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return s
}

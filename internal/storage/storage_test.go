package storage

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeTable struct {
	cols []string
	recs [][]string
}

func (f fakeTable) Columns() []string   { return f.cols }
func (f fakeTable) Records() [][]string { return f.recs }

var sample = fakeTable{
	cols: []string{"mp", "pts", "name", "team", "points_ok"},
	recs: [][]string{
		{"36:12", "10", "Jayson Tatum", "Boston Celtics", "true"},
		{"", "", "Team Totals", "Boston Celtics", "true"},
		{"12:00", "3", "O'Neal, Shaquille", "LA Lakers", "true"},
	},
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"csv", FormatCSV, false},
		{" XLSX ", FormatXLSX, false},
		{"parquet", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("creates missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "results")
		s, err := New(dir, FormatCSV)
		require.NoError(t, err)
		assert.Equal(t, dir, s.Dir())
		assert.DirExists(t, dir)
	})

	t.Run("expands home directory", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		s, err := New("~/boxscores", FormatCSV)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "boxscores"), s.Dir())
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		_, err := New(t.TempDir(), Format("json"))
		assert.Error(t, err)
	})
}

func TestPath(t *testing.T) {
	csvStore, err := New("/tmp", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp", "2020", "NBA_2020_games-january.csv"), csvStore.Path(2020, "NBA_2020_games-january"))

	xlsxStore, err := New("/tmp", FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp", "1999", "NBA_1999_games-may.xlsx"), xlsxStore.Path(1999, "NBA_1999_games-may"))
}

func TestWrite_CSV(t *testing.T) {
	s, err := New(t.TempDir(), FormatCSV)
	require.NoError(t, err)

	path, err := s.Write(2020, "NBA_2020_games-january", sample)
	require.NoError(t, err)
	assert.Equal(t, s.Path(2020, "NBA_2020_games-january"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, sample.cols, rows[0])
	assert.Equal(t, sample.recs[2], rows[3])
}

func TestWrite_OverwritesExisting(t *testing.T) {
	s, err := New(t.TempDir(), FormatCSV)
	require.NoError(t, err)

	_, err = s.Write(2020, "p", sample)
	require.NoError(t, err)
	path, err := s.Write(2020, "p", fakeTable{cols: []string{"name"}, recs: [][]string{{"x"}}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name\nx\n", string(data))
}

func TestWrite_RejectsBadPeriod(t *testing.T) {
	s, err := New(t.TempDir(), FormatCSV)
	require.NoError(t, err)

	for _, period := range []string{"", "../escape", `a\b`} {
		_, err := s.Write(2020, period, sample)
		assert.Error(t, err, "period %q", period)
	}
}

func TestWrite_XLSX(t *testing.T) {
	s, err := New(t.TempDir(), FormatXLSX)
	require.NoError(t, err)

	path, err := s.Write(2020, "NBA_2020_games-january", sample)
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", filepath.Ext(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, sample.cols, rows[0])
	assert.Equal(t, "Jayson Tatum", rows[1][2])
	assert.Equal(t, "10", rows[1][1])

	// numeric stats are stored as numbers, text stays a string
	cellType, err := f.GetCellType(SheetName, "B2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType)
	assert.NotEqual(t, excelize.CellTypeInlineString, cellType)
	raw, err := f.GetCellValue(SheetName, "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "10", raw)

	nameType, err := f.GetCellType(SheetName, "C2")
	require.NoError(t, err)
	assert.Contains(t, []excelize.CellType{excelize.CellTypeSharedString, excelize.CellTypeInlineString}, nameType)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []string{"name", "pts"}, [][]string{{"A, B", "1"}})
	require.NoError(t, err)
	assert.Equal(t, "name,pts\n\"A, B\",1\n", buf.String())
}

func TestCellValue(t *testing.T) {
	assert.Equal(t, 12.0, cellValue("12"))
	assert.Equal(t, 0.456, cellValue(".456"))
	assert.Equal(t, "36:12", cellValue("36:12"))
	assert.Equal(t, "", cellValue(""))
	assert.Equal(t, "true", cellValue("true"))
}

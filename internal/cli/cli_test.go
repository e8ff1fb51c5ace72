package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/bref-boxscores/internal/logger"
)

const fixturePath = "../../testdata/fixtures/boxscore_202001150LAL.html"

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	prev := logger.Default()
	t.Cleanup(func() { logger.SetDefault(prev) })

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		contains []string
	}{
		{
			name:   "text",
			format: "text",
			contains: []string{
				"Boston Celtics_LA Lakers_2020-01-15 (2020-01-15)",
				"Boston Celtics (away, 4 rows):",
				"LA Lakers (home, 4 rows):",
				"points_ok: true",
			},
		},
		{
			name:   "csv",
			format: "csv",
			contains: []string{
				"mp,fg,ast,pts,reason,name,team,is_home,date,game_id,points_ok",
				"36:12,4,3,10,,Jayson Tatum,Boston Celtics,false,2020-01-15,Boston Celtics_LA Lakers_2020-01-15,true",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, "parse", fixturePath, "--link", "/boxscores/202001150LAL.html", "--format", tt.format)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestParseCommand_JSON(t *testing.T) {
	out, err := runCLI(t, "parse", fixturePath, "--date", "2020-01-15", "--format", "json")
	require.NoError(t, err)

	var game GameOutput
	require.NoError(t, json.Unmarshal([]byte(out), &game))
	assert.Equal(t, "Boston Celtics_LA Lakers_2020-01-15", game.GameID)
	assert.True(t, game.PointsOK)
	require.Len(t, game.Teams, 2)
	assert.Equal(t, "Jayson Tatum", game.Teams[0].Records[0]["name"])
	require.Len(t, game.Groups, 2)
	assert.Equal(t, 35.0, game.Groups[1].Reported)
}

func TestParseCommand_HomeFirst(t *testing.T) {
	t.Setenv("BOXSCORES_LAYOUT_VENUE", "home-first")
	out, err := runCLI(t, "parse", fixturePath, "--date", "2020-01-15")
	require.NoError(t, err)
	assert.Contains(t, out, "Boston Celtics (home, 4 rows):")
}

func TestParseCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no date source", []string{"parse", fixturePath}},
		{"bad date", []string{"parse", fixturePath, "--date", "15/01/2020"}},
		{"bad link", []string{"parse", fixturePath, "--link", "/boxscores/index.html"}},
		{"bad format", []string{"parse", fixturePath, "--date", "2020-01-15", "--format", "xml"}},
		{"missing file", []string{"parse", "nope.html", "--date", "2020-01-15"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestLinksCommand(t *testing.T) {
	page := filepath.Join(t.TempDir(), "month.html")
	require.NoError(t, os.WriteFile(page, []byte(`<html><body>
<a href="/leagues/NBA_2020_games-january.html">January</a>
<a href="/boxscores/202001150LAL.html">Box Score</a>
<a href="/boxscores/202001160BOS.html">Box Score</a>
<a href="/players/j/jamesle01.html">LeBron James</a>
</body></html>`), 0644))

	out, err := runCLI(t, "links", page, "--kind", "boxscores")
	require.NoError(t, err)
	assert.Equal(t, "/boxscores/202001150LAL.html\n/boxscores/202001160BOS.html\n", out)

	out, err = runCLI(t, "links", page, "--kind", "months", "--format", "json")
	require.NoError(t, err)
	var hrefs []string
	require.NoError(t, json.Unmarshal([]byte(out), &hrefs))
	assert.Equal(t, []string{"/leagues/NBA_2020_games-january.html"}, hrefs)

	_, err = runCLI(t, "links", page, "--kind", "players")
	assert.Error(t, err)
}

func newSite(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestScrapeCommand(t *testing.T) {
	fixture, err := os.ReadFile(fixturePath)
	require.NoError(t, err)

	pages := map[string]string{
		"/leagues/NBA_2020_games.html":         `<a href="/leagues/NBA_2020_games-january.html">January</a>`,
		"/leagues/NBA_2020_games-january.html": `<a href="/boxscores/202001150LAL.html">Box Score</a>`,
		"/boxscores/202001150LAL.html":         string(fixture),
	}

	t.Run("writes one file per month", func(t *testing.T) {
		server := newSite(t, pages)
		t.Setenv("BOXSCORES_SOURCE_BASE_URL", server.URL)
		out := t.TempDir()

		stdout, err := runCLI(t, "scrape", "--from", "2020", "--to", "2020", "--out", out, "--log-level", "error")
		require.NoError(t, err)

		path := filepath.Join(out, "2020", "NBA_2020_games-january.csv")
		assert.FileExists(t, path)
		assert.Contains(t, stdout, "WROTE   2020 NBA_2020_games-january (1 games) -> "+path)
		assert.Contains(t, stdout, "Total: 1 games in 1 files across 1 seasons")
	})

	t.Run("xlsx from config file", func(t *testing.T) {
		server := newSite(t, pages)
		out := t.TempDir()
		cfgPath := filepath.Join(t.TempDir(), "boxscores.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte(strings.Join([]string{
			"source:",
			"  base_url: " + server.URL,
			"  first_season: 2020",
			"  last_season: 2020",
			"output:",
			"  dir: " + out,
			"  format: xlsx",
		}, "\n")), 0644))

		_, err := runCLI(t, "scrape", "--config", cfgPath, "--log-level", "error")
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(out, "2020", "NBA_2020_games-january.xlsx"))
	})

	t.Run("failures exit non-zero after finishing", func(t *testing.T) {
		server := newSite(t, pages)
		t.Setenv("BOXSCORES_SOURCE_BASE_URL", server.URL)
		out := t.TempDir()

		stdout, err := runCLI(t, "scrape", "--from", "2019", "--to", "2020", "--out", out, "--summary", "json", "--log-level", "error")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 failures")

		var summary SummaryOutput
		require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
		assert.Equal(t, 2, summary.Seasons)
		require.Len(t, summary.Failures, 1)
		assert.Contains(t, summary.Failures[0], "season 2019")
		assert.Len(t, summary.Files, 1)
	})

	t.Run("invalid flags", func(t *testing.T) {
		_, err := runCLI(t, "scrape", "--from", "2020", "--to", "2019", "--out", t.TempDir())
		assert.Error(t, err)

		_, err = runCLI(t, "scrape", "--format", "parquet", "--out", t.TempDir())
		assert.Error(t, err)
	})
}

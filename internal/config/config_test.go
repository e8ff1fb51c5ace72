package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "boxscores.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://www.basketball-reference.com", cfg.Source.BaseURL)
	assert.Equal(t, 1977, cfg.Source.FirstSeason)
	assert.Equal(t, 2019, cfg.Source.LastSeason)
	assert.Equal(t, 30*time.Second, cfg.Source.Timeout)
	assert.Equal(t, "games-", cfg.Source.MonthMarker)
	assert.Equal(t, "Box Score", cfg.Source.BoxScoreLabel)
	assert.False(t, cfg.Source.Uncomment)
	assert.Equal(t, "./results", cfg.Output.Dir)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, "Team Totals", cfg.Layout.Sentinel)
	assert.Equal(t, "Player", cfg.Layout.HeaderRepeat)
	assert.Equal(t, "away-first", cfg.Layout.Venue)
	assert.Equal(t, 2, cfg.Layout.CaptionTokens)
	assert.Equal(t, "pts", cfg.Check.Stat)
	assert.InDelta(t, 1e-5, cfg.Check.RelTol, 1e-12)
	assert.InDelta(t, 1e-8, cfg.Check.AbsTol, 1e-15)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Len(t, cfg.Seasons(), 43)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("BOXSCORES_SOURCE_FIRST_SEASON", "2000")
	t.Setenv("BOXSCORES_SOURCE_LAST_SEASON", "2001")
	t.Setenv("BOXSCORES_SOURCE_TIMEOUT", "5s")
	t.Setenv("BOXSCORES_OUTPUT_FORMAT", "xlsx")
	t.Setenv("BOXSCORES_LAYOUT_VENUE", "home-first")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []int{2000, 2001}, cfg.Seasons())
	assert.Equal(t, 5*time.Second, cfg.Source.Timeout)
	assert.Equal(t, "xlsx", cfg.Output.Format)
	assert.Equal(t, "home-first", cfg.Layout.Venue)
}

func TestLoad_FileOverridesEnvironment(t *testing.T) {
	t.Setenv("BOXSCORES_OUTPUT_DIR", "/from/env")
	t.Setenv("BOXSCORES_LOGGING_LEVEL", "warn")

	path := writeConfigFile(t, `
source:
  first_season: 2010
  last_season: 2012
  timeout: 10s
output:
  dir: /from/file
check:
  rel_tol: 0.001
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/from/file", cfg.Output.Dir)
	assert.Equal(t, "warn", cfg.Logging.Level, "env value kept when file is silent")
	assert.Equal(t, 10*time.Second, cfg.Source.Timeout)
	assert.Equal(t, []int{2010, 2011, 2012}, cfg.Seasons())
	assert.InDelta(t, 0.001, cfg.Check.RelTol, 1e-12)
	assert.Equal(t, "csv", cfg.Output.Format, "default kept when nothing overrides it")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		file    string
		wantMsg string
	}{
		{
			name:    "season range reversed",
			env:     map[string]string{"BOXSCORES_SOURCE_FIRST_SEASON": "2010", "BOXSCORES_SOURCE_LAST_SEASON": "2009"},
			wantMsg: "LastSeason",
		},
		{
			name:    "unknown format",
			env:     map[string]string{"BOXSCORES_OUTPUT_FORMAT": "parquet"},
			wantMsg: "Format",
		},
		{
			name:    "unknown venue",
			file:    "layout:\n  venue: neutral\n",
			wantMsg: "Venue",
		},
		{
			name:    "bad base url",
			file:    "source:\n  base_url: not a url\n",
			wantMsg: "BaseURL",
		},
		{
			name:    "negative tolerance",
			file:    "check:\n  abs_tol: -1\n",
			wantMsg: "AbsTol",
		},
		{
			name:    "zero relative tolerance",
			file:    "check:\n  rel_tol: 0\n",
			wantMsg: "RelTol",
		},
		{
			name:    "zero absolute tolerance",
			env:     map[string]string{"BOXSCORES_CHECK_ABS_TOL": "0"},
			wantMsg: "AbsTol",
		},
		{
			name:    "base url with path",
			file:    "source:\n  base_url: http://mirror.example.com/bref\n",
			wantMsg: "must be an origin",
		},
		{
			name:    "malformed yaml",
			file:    "source: [unclosed\n",
			wantMsg: "parsing config file",
		},
		{
			name:    "env not parseable",
			env:     map[string]string{"BOXSCORES_SOURCE_TIMEOUT": "soon"},
			wantMsg: "loading config from env",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoad_UncommentFromFile(t *testing.T) {
	path := writeConfigFile(t, "source:\n  uncomment: true\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Source.Uncomment)
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "BOXSCORES"

// Config is the complete scraper configuration.
type Config struct {
	Source  SourceConfig  `yaml:"source" envconfig:"SOURCE"`
	Output  OutputConfig  `yaml:"output" envconfig:"OUTPUT"`
	Layout  LayoutConfig  `yaml:"layout" envconfig:"LAYOUT"`
	Check   CheckConfig   `yaml:"check" envconfig:"CHECK"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// SourceConfig describes where pages come from and how links are recognised.
type SourceConfig struct {
	// BaseURL must be a bare origin; site-relative links replace any path on it.
	BaseURL       string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://www.basketball-reference.com" validate:"required,url"`
	FirstSeason   int           `yaml:"first_season" envconfig:"FIRST_SEASON" default:"1977" validate:"gte=1947"`
	LastSeason    int           `yaml:"last_season" envconfig:"LAST_SEASON" default:"2019" validate:"gtefield=FirstSeason"`
	UserAgent     string        `yaml:"user_agent" envconfig:"USER_AGENT" default:"bref-boxscores/1.0 (github.com/pfrederiksen/bref-boxscores)" validate:"required"`
	Timeout       time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s" validate:"gt=0"`
	MonthMarker   string        `yaml:"month_marker" envconfig:"MONTH_MARKER" default:"games-" validate:"required"`
	BoxScoreLabel string        `yaml:"box_score_label" envconfig:"BOX_SCORE_LABEL" default:"Box Score" validate:"required"`
	Uncomment     bool          `yaml:"uncomment" envconfig:"UNCOMMENT" default:"false"`
}

// OutputConfig describes where and how periods are written.
type OutputConfig struct {
	Dir    string `yaml:"dir" envconfig:"DIR" default:"./results" validate:"required"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"csv" validate:"oneof=csv xlsx"`
}

// LayoutConfig describes the two-team box-score layout.
type LayoutConfig struct {
	Sentinel      string `yaml:"sentinel" envconfig:"SENTINEL" default:"Team Totals" validate:"required"`
	HeaderRepeat  string `yaml:"header_repeat" envconfig:"HEADER_REPEAT" default:"Player" validate:"required"`
	Venue         string `yaml:"venue" envconfig:"VENUE" default:"away-first" validate:"oneof=away-first home-first"`
	CaptionTokens int    `yaml:"caption_tokens" envconfig:"CAPTION_TOKENS" default:"2" validate:"gte=1"`
}

// CheckConfig tunes the points consistency check.
type CheckConfig struct {
	Stat   string  `yaml:"stat" envconfig:"STAT" default:"pts" validate:"required"`
	RelTol float64 `yaml:"rel_tol" envconfig:"REL_TOL" default:"1e-5" validate:"gt=0"`
	AbsTol float64 `yaml:"abs_tol" envconfig:"ABS_TOL" default:"1e-8" validate:"gt=0"`
}

// LoggingConfig sets the minimum log level.
type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
}

// Load resolves defaults and environment, then overlays the YAML file at
// path when path is not empty, and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("loading config from env: %w", err)
	}

	if path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// Validate checks every field against its validate tag.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("config validation failed: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config validation failed: %w", err)
	}

	u, err := url.Parse(c.Source.BaseURL)
	if err != nil {
		return fmt.Errorf("config validation failed: Config.Source.BaseURL: %w", err)
	}
	if (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("config validation failed: Config.Source.BaseURL must be an origin without path, got %q", c.Source.BaseURL)
	}
	return nil
}

// Seasons lists every season year from FirstSeason to LastSeason inclusive.
func (c *Config) Seasons() []int {
	if c.Source.LastSeason < c.Source.FirstSeason {
		return []int{}
	}
	years := make([]int, 0, c.Source.LastSeason-c.Source.FirstSeason+1)
	for y := c.Source.FirstSeason; y <= c.Source.LastSeason; y++ {
		years = append(years, y)
	}
	return years
}

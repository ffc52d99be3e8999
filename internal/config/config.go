package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abelbrown/bookscout/internal/logging"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BOOKSCOUT_"

// Config is the persistent application configuration
type Config struct {
	API     APIConfig    `yaml:"api"`
	Search  SearchConfig `yaml:"search"`
	UI      UIConfig     `yaml:"ui"`
	DataDir string       `yaml:"data_dir"`
}

// APIConfig holds the Open Library endpoints and client limits
type APIConfig struct {
	SearchURL   string        `yaml:"search_url"`
	WorksURL    string        `yaml:"works_url"`
	AuthorsURL  string        `yaml:"authors_url"`
	CoversURL   string        `yaml:"covers_url"`
	UserAgent   string        `yaml:"user_agent"`
	RPS         float64       `yaml:"requests_per_second"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

// SearchConfig tunes the search pipeline
type SearchConfig struct {
	QuietPeriod  time.Duration `yaml:"quiet_period"`
	ScrollMargin int           `yaml:"scroll_margin"` // rows past the viewport that still count as visible
}

// UIConfig holds UI preferences
type UIConfig struct {
	Theme string `yaml:"theme"` // "dark" or "light"; used until the user toggles
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			SearchURL:   "https://openlibrary.org/search.json",
			WorksURL:    "https://openlibrary.org/works",
			AuthorsURL:  "https://openlibrary.org/authors",
			CoversURL:   "https://covers.openlibrary.org/b/id",
			UserAgent:   "bookscout/0.1 (+https://github.com/abelbrown/bookscout)",
			RPS:         3,
			HTTPTimeout: 15 * time.Second,
		},
		Search: SearchConfig{
			QuietPeriod:  300 * time.Millisecond,
			ScrollMargin: 5,
		},
		UI: UIConfig{
			Theme: "dark",
		},
		DataDir: DefaultDataDir(),
	}
}

// DefaultDataDir is ~/.bookscout.
func DefaultDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".bookscout")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultDataDir(), "config.yaml")
}

// DBPath is the SQLite file holding preferences.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "bookscout.db")
}

// EventsPath is the JSONL event log.
func (c *Config) EventsPath() string {
	return filepath.Join(c.DataDir, "bookscout.events.jsonl")
}

// Dark reports whether the configured initial theme is dark.
func (c *Config) Dark() bool {
	return !strings.EqualFold(c.UI.Theme, "light")
}

// Load builds the config: defaults, then the YAML file at path (ConfigPath()
// when empty; a missing file is fine), then .env, then BOOKSCOUT_* env vars.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	cfg := DefaultConfig()

	f, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("open config: %w", err)
	default:
		defer f.Close()
		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads the .env file named by BOOKSCOUT_ENV_PATH, or ./.env.
// A missing file is not an error; existing variables are not overwritten.
func LoadDotEnv() error {
	envPath := os.Getenv(EnvPrefix + "ENV_PATH")
	explicit := envPath != ""
	if !explicit {
		envPath = ".env"
	}
	if err := godotenv.Load(envPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if explicit {
				logging.Warn(".env not found", "path", envPath)
			}
			return nil
		}
		return fmt.Errorf("load %s: %w", envPath, err)
	}
	return nil
}

// ApplyEnv overrides fields from BOOKSCOUT_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := strings.TrimSpace(getenv(EnvPrefix + name)); v != "" {
			*dst = v
		}
	}
	var errs []error
	integer := func(name string, dst *int) {
		if v := strings.TrimSpace(getenv(EnvPrefix + name)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	duration := func(name string, dst *time.Duration) {
		if v := strings.TrimSpace(getenv(EnvPrefix + name)); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = d
		}
	}

	str("SEARCH_URL", &c.API.SearchURL)
	str("WORKS_URL", &c.API.WorksURL)
	str("AUTHORS_URL", &c.API.AuthorsURL)
	str("COVERS_URL", &c.API.CoversURL)
	str("USER_AGENT", &c.API.UserAgent)
	str("DATA_DIR", &c.DataDir)
	str("THEME", &c.UI.Theme)
	integer("SCROLL_MARGIN", &c.Search.ScrollMargin)
	duration("QUIET_PERIOD", &c.Search.QuietPeriod)
	duration("HTTP_TIMEOUT", &c.API.HTTPTimeout)
	if v := strings.TrimSpace(getenv(EnvPrefix + "RPS")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sRPS: %w", EnvPrefix, err))
		} else {
			c.API.RPS = f
		}
	}
	return errors.Join(errs...)
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Search.QuietPeriod <= 0 {
		errs = append(errs, fmt.Errorf("quiet_period must be positive, got %s", c.Search.QuietPeriod))
	}
	if c.Search.ScrollMargin < 0 {
		errs = append(errs, fmt.Errorf("scroll_margin must not be negative, got %d", c.Search.ScrollMargin))
	}
	if c.API.RPS <= 0 {
		errs = append(errs, fmt.Errorf("requests_per_second must be positive, got %g", c.API.RPS))
	}
	if c.API.HTTPTimeout < 0 {
		errs = append(errs, fmt.Errorf("http_timeout must not be negative, got %s", c.API.HTTPTimeout))
	}
	switch strings.ToLower(c.UI.Theme) {
	case "dark", "light", "":
	default:
		errs = append(errs, fmt.Errorf("theme must be dark or light, got %q", c.UI.Theme))
	}
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("data_dir must be set"))
	}
	return errors.Join(errs...)
}

// Save writes config to path (ConfigPath() when empty).
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

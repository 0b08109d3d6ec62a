// Package config loads eventscrape settings from an optional YAML file and
// EVENTSCRAPE_* environment variables. The command line only carries the page
// count; everything else about a run is configured here.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/eventscrape/internal/export"
	"github.com/pfrederiksen/eventscrape/internal/logger"
	"github.com/pfrederiksen/eventscrape/internal/scraper"
	"github.com/pfrederiksen/eventscrape/internal/storage"
	"gopkg.in/yaml.v3"
)

// Drivers
const (
	DriverChrome = "chrome"
	DriverHTTP   = "http"
)

const (
	EnvConfig       = "EVENTSCRAPE_CONFIG"
	DefaultFile     = "eventscrape.yaml"
	DefaultWait     = 3 * time.Second
	envPrefix       = "EVENTSCRAPE_"
	pagePlaceholder = "{page}"
)

// Config holds every run setting except the page count
type Config struct {
	BaseURL                string            `yaml:"base_url"`
	WaitTime               time.Duration     `yaml:"wait_time"`
	Driver                 string            `yaml:"driver"`
	Headless               bool              `yaml:"headless"`
	UserAgent              string            `yaml:"user_agent"`
	OutputDir              string            `yaml:"output_dir"`
	CSVFile                string            `yaml:"csv_file"`
	JSONFile               string            `yaml:"json_file"`
	ExportPartialOnFailure bool              `yaml:"export_partial_on_failure"`
	LogLevel               string            `yaml:"log_level"`
	MetricsFile            string            `yaml:"metrics_file"`
	RunTimeout             time.Duration     `yaml:"run_timeout"`
	Selectors              scraper.Selectors `yaml:"selectors"`
}

// Default returns the settings used when nothing is configured
func Default() *Config {
	return &Config{
		BaseURL:   scraper.DefaultBaseURL,
		WaitTime:  DefaultWait,
		Driver:    DriverChrome,
		Headless:  true,
		OutputDir: storage.DefaultDir,
		CSVFile:   export.CSVFile,
		JSONFile:  export.JSONFile,
		LogLevel:  string(logger.LevelInfo),
		Selectors: scraper.DefaultSelectors(),
	}
}

// Load reads the YAML file at path over the defaults. Keys missing from the
// file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.Selectors = cfg.Selectors.WithDefaults()
	return cfg, nil
}

// Resolve finds the config file, applies environment overrides and
// validates the result. The file is $EVENTSCRAPE_CONFIG if set, else
// ./eventscrape.yaml if it exists, else none.
func Resolve(getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg := Default()

	path := getenv(EnvConfig)
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}

	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides fields from EVENTSCRAPE_* variables
func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := strings.TrimSpace(getenv(envPrefix + name)); v != "" {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) error {
		v := strings.TrimSpace(getenv(envPrefix + name))
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = b
		return nil
	}
	duration := func(name string, dst *time.Duration) error {
		v := strings.TrimSpace(getenv(envPrefix + name))
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = d
		return nil
	}

	str("BASE_URL", &c.BaseURL)
	str("DRIVER", &c.Driver)
	str("OUTPUT_DIR", &c.OutputDir)
	str("LOG_LEVEL", &c.LogLevel)
	str("METRICS_FILE", &c.MetricsFile)
	str("USER_AGENT", &c.UserAgent)

	return errors.Join(
		boolean("HEADLESS", &c.Headless),
		boolean("EXPORT_PARTIAL", &c.ExportPartialOnFailure),
		duration("WAIT_TIME", &c.WaitTime),
		duration("RUN_TIMEOUT", &c.RunTimeout),
	)
}

// Validate checks values the run depends on
func (c *Config) Validate() error {
	var errs []error

	if !strings.Contains(c.BaseURL, pagePlaceholder) {
		errs = append(errs, fmt.Errorf("base_url must contain %s: %q", pagePlaceholder, c.BaseURL))
	}

	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	if c.Driver != DriverChrome && c.Driver != DriverHTTP {
		errs = append(errs, fmt.Errorf("invalid driver: %s (must be '%s' or '%s')", c.Driver, DriverChrome, DriverHTTP))
	}

	if c.WaitTime < 0 {
		errs = append(errs, fmt.Errorf("wait_time must not be negative: %s", c.WaitTime))
	}
	if c.RunTimeout < 0 {
		errs = append(errs, fmt.Errorf("run_timeout must not be negative: %s", c.RunTimeout))
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	if c.CSVFile == "" || c.JSONFile == "" {
		errs = append(errs, errors.New("csv_file and json_file must be set"))
	}

	return errors.Join(errs...)
}

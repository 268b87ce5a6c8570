package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// DateLayout is the format of data_source.start_date.
const DateLayout = "2006-01-02"

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		BaseURL           string        `yaml:"base_url"`
		Symbol            string        `yaml:"symbol"`
		Interval          string        `yaml:"interval"`
		Limit             int           `yaml:"limit"`
		StartDate         string        `yaml:"start_date"`
		Timeout           time.Duration `yaml:"timeout"`
		MaxRetries        int           `yaml:"max_retries"`
		RequestsPerSecond float64       `yaml:"requests_per_second"`
	} `yaml:"data_source"`
	Report struct {
		OutputPath string `yaml:"output_path"`
	} `yaml:"report"`
	Schedule struct {
		Cron       string `yaml:"cron"`
		RunOnStart *bool  `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Metrics struct {
		TextfilePath string `yaml:"textfile_path"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides and defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("EHR_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("EHR_SYMBOL"); v != "" {
		cfg.DataSource.Symbol = v
	}
	if v := os.Getenv("EHR_OUTPUT_PATH"); v != "" {
		cfg.Report.OutputPath = v
	}
	if v := os.Getenv("EHR_CRON"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("EHR_METRICS_PATH"); v != "" {
		cfg.Metrics.TextfilePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		on := v == "true"
		cfg.Schedule.RunOnStart = &on
	}

	// Defaults
	if cfg.DataSource.BaseURL == "" {
		cfg.DataSource.BaseURL = "https://api.binance.com"
	}
	if cfg.DataSource.Symbol == "" {
		cfg.DataSource.Symbol = "ETHUSDT"
	}
	if cfg.DataSource.Interval == "" {
		cfg.DataSource.Interval = "1d"
	}
	if cfg.DataSource.Limit == 0 {
		cfg.DataSource.Limit = 1000
	}
	if cfg.DataSource.StartDate == "" {
		cfg.DataSource.StartDate = "2017-08-17"
	}
	if cfg.DataSource.Timeout == 0 {
		cfg.DataSource.Timeout = 30 * time.Second
	}
	if cfg.DataSource.RequestsPerSecond == 0 {
		cfg.DataSource.RequestsPerSecond = 5
	}
	if cfg.Report.OutputPath == "" {
		cfg.Report.OutputPath = "index.html"
	}
	if cfg.Schedule.RunOnStart == nil {
		on := true
		cfg.Schedule.RunOnStart = &on
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}

	return cfg, nil
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.DataSource.BaseURL == "" {
		return fmt.Errorf("data_source.base_url is required")
	}
	if c.DataSource.Symbol == "" {
		return fmt.Errorf("data_source.symbol is required")
	}
	if c.DataSource.Interval == "" {
		return fmt.Errorf("data_source.interval is required")
	}
	if c.DataSource.Limit < 1 || c.DataSource.Limit > 1000 {
		return fmt.Errorf("data_source.limit must be within 1..1000, got %d", c.DataSource.Limit)
	}
	start, err := c.StartTime()
	if err != nil {
		return fmt.Errorf("data_source.start_date: %w", err)
	}
	if start.After(time.Now()) {
		return fmt.Errorf("data_source.start_date %s is in the future", c.DataSource.StartDate)
	}
	if c.DataSource.Timeout <= 0 {
		return fmt.Errorf("data_source.timeout must be positive")
	}
	if c.DataSource.MaxRetries < 0 {
		return fmt.Errorf("data_source.max_retries must not be negative")
	}
	if c.DataSource.RequestsPerSecond <= 0 {
		return fmt.Errorf("data_source.requests_per_second must be positive")
	}
	if c.Report.OutputPath == "" {
		return fmt.Errorf("report.output_path is required")
	}
	if c.Schedule.Cron != "" {
		if _, err := cron.NewParser(CronSpec).Parse(c.Schedule.Cron); err != nil {
			return fmt.Errorf("schedule.cron: %w", err)
		}
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// CronSpec is the cron field layout used by the scheduler (seconds enabled).
const CronSpec = cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor

// StartTime returns the inception instant for acquisition as UTC midnight.
func (c *Config) StartTime() (time.Time, error) {
	return time.ParseInLocation(DateLayout, c.DataSource.StartDate, time.UTC)
}

// Scheduled reports whether the process should keep running on a cron schedule.
func (c *Config) Scheduled() bool {
	return c.Schedule.Cron != ""
}

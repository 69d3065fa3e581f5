package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"riotapi-schema/retry"
	"riotapi-schema/snapshot"
	"riotapi-schema/workspace"
)

const (
	DefaultBaseURL  = "https://developer.riotgames.com/"
	DefaultInterval = 24 * time.Hour

	BackendColly = "colly"
	BackendRod   = "rod"

	SourceGit      = "git"
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
	SourceNone     = "none"
)

// Config represents the generator configuration
type Config struct {
	BaseURL     string         `yaml:"base_url"`
	Output      string         `yaml:"output"`
	ViewerDir   string         `yaml:"viewer_dir"`
	Fetcher     FetcherConfig  `yaml:"fetcher"`
	Snapshot    SnapshotConfig `yaml:"snapshot"`
	DatabaseURL string         `yaml:"database_url"`
	Telegram    TelegramConfig `yaml:"telegram"`
	Sheets      SheetsConfig   `yaml:"sheets"`
	Schedule    ScheduleConfig `yaml:"schedule"`
}

// FetcherConfig selects the page fetching backend and its retry policy
type FetcherConfig struct {
	Backend        string        `yaml:"backend"` // colly|rod
	MaxRetries     int           `yaml:"max_retries"`
	Backoff        string        `yaml:"backoff"` // fixed|linear|exponential
	InitialDelay   time.Duration `yaml:"initial_delay"`
	MaxDelay       time.Duration `yaml:"max_delay"`
	UserAgent      string        `yaml:"user_agent"`
	Parallelism    int           `yaml:"parallelism"`
	Timeout        time.Duration `yaml:"timeout"`
	BrowserDataDir string        `yaml:"browser_data_dir"`
}

// SnapshotConfig selects where the previously published build is read from
type SnapshotConfig struct {
	Source   string `yaml:"source"` // git|http|postgres|none
	RepoPath string `yaml:"repo_path"`
	Ref      string `yaml:"ref"`
	File     string `yaml:"file"`
	URL      string `yaml:"url"`
}

// TelegramConfig enables run notifications when both fields are set
type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

// SheetsConfig enables the Google Sheets run log when a spreadsheet is set.
// Credentials fall back to GOOGLE_SHEETS_CREDENTIALS.
type SheetsConfig struct {
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	CredentialsPath string `yaml:"credentials_path"`
}

// ScheduleConfig controls the watch loop
type ScheduleConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// LoadConfig loads configuration from a YAML file on top of the defaults,
// then applies environment overrides
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := GetDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadConfigOrDefault loads path, or the defaults with environment overrides
// when the file does not exist
func LoadConfigOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		cfg := GetDefaultConfig()
		if err := cfg.ApplyEnv(os.Getenv); err != nil {
			return nil, err
		}
		return cfg, cfg.Validate()
	}
	return LoadConfig(path)
}

// GetDefaultConfig returns a default configuration
func GetDefaultConfig() *Config {
	cfg := &Config{
		BaseURL:   DefaultBaseURL,
		Output:    workspace.DefaultOutput,
		ViewerDir: workspace.DefaultViewerDir,
	}
	cfg.Fetcher.Backend = BackendColly
	cfg.Fetcher.MaxRetries = 1
	cfg.Fetcher.Backoff = string(retry.BackoffFixed)
	cfg.Fetcher.Parallelism = 8
	cfg.Fetcher.Timeout = 60 * time.Second
	cfg.Snapshot.Source = SourceGit
	cfg.Snapshot.RepoPath = "."
	cfg.Snapshot.Ref = snapshot.DefaultRef
	cfg.Snapshot.File = snapshot.DefaultFile
	cfg.Schedule.Interval = DefaultInterval
	return cfg
}

// ApplyEnv overrides secrets from the environment
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := getenv("SHEETS_SPREADSHEET_ID"); v != "" {
		c.Sheets.SpreadsheetID = v
	}
	if v := getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", v, err)
		}
		c.Telegram.ChatID = id
	}
	return nil
}

// RetryPolicy returns the fetch retry policy described by the config
func (c *Config) RetryPolicy() retry.Policy {
	return retry.NewPolicy(retry.BackoffMode(c.Fetcher.Backoff), c.Fetcher.InitialDelay, c.Fetcher.MaxDelay, c.Fetcher.MaxRetries)
}

// TelegramEnabled reports whether notifications are configured
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.Token != "" && c.Telegram.ChatID != 0
}

// SheetsEnabled reports whether the run log is configured
func (c *Config) SheetsEnabled() bool {
	return c.Sheets.SpreadsheetID != ""
}

// Validate checks option combinations
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}

	switch c.Fetcher.Backend {
	case BackendColly, BackendRod:
	default:
		return fmt.Errorf("unknown fetcher backend %q", c.Fetcher.Backend)
	}
	switch retry.BackoffMode(c.Fetcher.Backoff) {
	case retry.BackoffFixed, retry.BackoffLinear, retry.BackoffExponential:
	default:
		return fmt.Errorf("unknown backoff %q", c.Fetcher.Backoff)
	}
	if c.Fetcher.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative")
	}
	if c.Fetcher.InitialDelay < 0 || c.Fetcher.MaxDelay < 0 {
		return fmt.Errorf("retry delays cannot be negative")
	}

	switch c.Snapshot.Source {
	case SourceGit, SourceNone:
	case SourceHTTP:
		if c.Snapshot.URL == "" {
			return fmt.Errorf("snapshot.url is required for the http source")
		}
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required for the postgres source")
		}
	default:
		return fmt.Errorf("unknown snapshot source %q", c.Snapshot.Source)
	}

	if c.Schedule.Interval <= 0 {
		return fmt.Errorf("schedule.interval must be positive")
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"riotapi-schema/retry"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	require.NoError(t, cfg.Validate())
	require.Equal(t, "https://developer.riotgames.com/", cfg.BaseURL)
	require.Equal(t, "out", cfg.Output)
	require.Equal(t, "swagger-ui-dist", cfg.ViewerDir)
	require.Equal(t, "origin/gh-pages", cfg.Snapshot.Ref)
	require.Equal(t, "openapi-3.0.0.min.json", cfg.Snapshot.File)
	require.Equal(t, retry.DefaultPolicy(), cfg.RetryPolicy())
	require.False(t, cfg.TelegramEnabled())
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	path := writeConfig(t, `
base_url: https://portal.test/
fetcher:
  backend: rod
  max_retries: 3
  backoff: exponential
  initial_delay: 500ms
  max_delay: 4s
snapshot:
  source: http
  url: https://example.github.io/riotapi-schema/openapi-3.0.0.min.json
schedule:
  interval: 6h
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "https://portal.test/", cfg.BaseURL)
	require.Equal(t, BackendRod, cfg.Fetcher.Backend)
	require.Equal(t, 6*time.Hour, cfg.Schedule.Interval)
	require.Equal(t, "out", cfg.Output, "unset keys keep defaults")
	require.Equal(t, 8, cfg.Fetcher.Parallelism)

	policy := cfg.RetryPolicy()
	require.Equal(t, retry.BackoffExponential, policy.Mode)
	require.Equal(t, 500*time.Millisecond, policy.Initial)
	require.Equal(t, 4*time.Second, policy.Max)
	require.Equal(t, 3, policy.MaxRetries)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/riot")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-100200")
	t.Setenv("SHEETS_SPREADSHEET_ID", "1AbC")

	cfg, err := LoadConfig(writeConfig(t, "snapshot:\n  source: postgres\n"))
	require.NoError(t, err)
	require.True(t, cfg.SheetsEnabled())
	require.Equal(t, "1AbC", cfg.Sheets.SpreadsheetID)
	require.Equal(t, "postgres://localhost/riot", cfg.DatabaseURL)
	require.True(t, cfg.TelegramEnabled())
	require.Equal(t, int64(-100200), cfg.Telegram.ChatID)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "base_url: [", "failed to parse config file"},
		{"backend", "fetcher:\n  backend: curl\n", "unknown fetcher backend"},
		{"backoff", "fetcher:\n  backoff: random\n", "unknown backoff"},
		{"http source", "snapshot:\n  source: http\n", "snapshot.url is required"},
		{"postgres source", "snapshot:\n  source: postgres\n", "database_url is required"},
		{"source", "snapshot:\n  source: s3\n", "unknown snapshot source"},
		{"interval", "schedule:\n  interval: 0s\n", "schedule.interval must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "failed to read config file")
}

func TestApplyEnv_InvalidChatID(t *testing.T) {
	cfg := GetDefaultConfig()
	err := cfg.ApplyEnv(func(key string) string {
		if key == "TELEGRAM_CHAT_ID" {
			return "general"
		}
		return ""
	})
	require.ErrorContains(t, err, "invalid TELEGRAM_CHAT_ID")
}

func TestLoadConfigOrDefault(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/riot")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	cfg, err := LoadConfigOrDefault(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultBaseURL, cfg.BaseURL)
	require.Equal(t, "postgres://localhost/riot", cfg.DatabaseURL)

	cfg, err = LoadConfigOrDefault(writeConfig(t, "base_url: https://portal.test/\n"))
	require.NoError(t, err)
	require.Equal(t, "https://portal.test/", cfg.BaseURL)
}

func TestLoadConfig_Sample(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "SHEETS_SPREADSHEET_ID"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig(filepath.Join("..", "config.yaml"))
	require.NoError(t, err)
	require.Equal(t, GetDefaultConfig(), cfg)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://reminders-pa.clients6.google.com/v1internalOP/reminders", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout())
	assert.Equal(t, 10, cfg.List.DefaultCount)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Auth.OpenBrowser)

	offset, err := cfg.CursorOffset()
	require.NoError(t, err)
	assert.Equal(t, 54_000_000*time.Millisecond, offset)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".google-reminders-cli-oauth"), cfg.Auth.TokenFile)
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
api:
  timeout: 5
list:
  default_count: 25
  cursor_offset: 1h
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("REMINDERS_LIST__DEFAULT_COUNT", "40")
	t.Setenv("REMINDERS_AUTH__TOKEN_FILE", "/tmp/token.json")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout())
	assert.Equal(t, 40, cfg.List.DefaultCount, "env overrides file")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/token.json", cfg.Auth.TokenFile)

	offset, err := cfg.CursorOffset()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, offset)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("REMINDERS_UI__TIMEZONE=Europe/Berlin\nREMINDERS_LOG__LEVEL=info\n"), 0o600))
	// Already-set variables win over .env.
	t.Setenv("REMINDERS_LOG__LEVEL", "error")
	// godotenv sets variables t.Setenv does not know about.
	t.Cleanup(func() { os.Unsetenv("REMINDERS_UI__TIMEZONE") })

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Europe/Berlin", cfg.UI.Timezone)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "auth.token_file", envKey("REMINDERS_AUTH__TOKEN_FILE"))
	assert.Equal(t, "api.base_url", envKey("REMINDERS_API__BASE_URL"))
}

func TestValidate(t *testing.T) {
	tests := map[string]struct {
		mutate  func(*Config)
		wantErr string
	}{
		"defaults are valid": {
			mutate: func(*Config) {},
		},
		"empty base url": {
			mutate:  func(c *Config) { c.API.BaseURL = "" },
			wantErr: "api.base_url",
		},
		"zero timeout": {
			mutate:  func(c *Config) { c.API.Timeout = 0 },
			wantErr: "api.timeout",
		},
		"negative count": {
			mutate:  func(c *Config) { c.List.DefaultCount = -1 },
			wantErr: "list.default_count",
		},
		"unparsable offset": {
			mutate:  func(c *Config) { c.List.CursorOffset = "soon" },
			wantErr: "list.cursor_offset",
		},
		"negative offset": {
			mutate:  func(c *Config) { c.List.CursorOffset = "-1h" },
			wantErr: "list.cursor_offset",
		},
		"unknown timezone": {
			mutate:  func(c *Config) { c.UI.Timezone = "Mars/Olympus" },
			wantErr: "ui.timezone",
		},
		"unknown log level": {
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: "log.level",
		},
		"client id without secret": {
			mutate:  func(c *Config) { c.Auth.ClientID = "id" },
			wantErr: "auth.client_id",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			cfg, err := Load("")
			require.NoError(t, err)

			tc.mutate(cfg)
			err = cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLocation(t *testing.T) {
	cfg := &Config{UI: UIConfig{Timezone: "Local"}}
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.UI.Timezone = "UTC"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "x", "y"), expandPath("~/x/y"))
	assert.Equal(t, "/abs/path", expandPath("/abs/path"))
	assert.Equal(t, "", expandPath(""))
}

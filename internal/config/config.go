package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix selects the environment variables read as configuration.
// A double underscore separates levels: REMINDERS_API__TIMEOUT is api.timeout.
const EnvPrefix = "REMINDERS_"

type Config struct {
	API  APIConfig  `koanf:"api"`
	Auth AuthConfig `koanf:"auth"`
	List ListConfig `koanf:"list"`
	UI   UIConfig   `koanf:"ui"`
	Log  LogConfig  `koanf:"log"`
}

type APIConfig struct {
	BaseURL string `koanf:"base_url"`
	Timeout int    `koanf:"timeout"` // seconds
}

type AuthConfig struct {
	AppKeysFile  string `koanf:"app_keys_file"`
	TokenFile    string `koanf:"token_file"`
	ClientID     string `koanf:"client_id"` // Overrides the app keys file when set with ClientSecret
	ClientSecret string `koanf:"client_secret"`
	AuthURL      string `koanf:"auth_url"`
	TokenURL     string `koanf:"token_url"`
	RedirectPort int    `koanf:"redirect_port"`
	OpenBrowser  bool   `koanf:"open_browser"`
}

type ListConfig struct {
	DefaultCount int    `koanf:"default_count"`
	CursorOffset string `koanf:"cursor_offset"`
}

type UIConfig struct {
	ColoredOutput bool   `koanf:"colored_output"`
	Spinner       bool   `koanf:"spinner"`
	Timezone      string `koanf:"timezone"` // Zone the remote date components are read in
}

type LogConfig struct {
	Level       string `koanf:"level"`
	Development bool   `koanf:"development"`
}

// Load builds the configuration from defaults, the YAML file at configPath
// (if it exists), .env files, and REMINDERS_* environment variables, in
// increasing order of precedence.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	// .env values never override variables already set in the environment.
	if err := loadDotEnv(".env", expandPath(GetDefaultDotEnvPath())); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Auth.AppKeysFile = expandPath(cfg.Auth.AppKeysFile)
	cfg.Auth.TokenFile = expandPath(cfg.Auth.TokenFile)

	return &cfg, nil
}

// envKey maps REMINDERS_AUTH__TOKEN_FILE to auth.token_file.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func loadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}

	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be positive")
	}

	if c.List.DefaultCount < 0 {
		return errors.New("list.default_count must not be negative")
	}

	if _, err := c.CursorOffset(); err != nil {
		return err
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level %q: %w", c.Log.Level, err)
	}

	if (c.Auth.ClientID == "") != (c.Auth.ClientSecret == "") {
		return errors.New("auth.client_id and auth.client_secret must be set together")
	}

	return nil
}

// HTTPTimeout returns the per-request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.API.Timeout) * time.Second
}

// CursorOffset parses list.cursor_offset.
func (c *Config) CursorOffset() (time.Duration, error) {
	d, err := time.ParseDuration(c.List.CursorOffset)
	if err != nil {
		return 0, fmt.Errorf("invalid list.cursor_offset %q: %w", c.List.CursorOffset, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("list.cursor_offset must not be negative, got %s", d)
	}
	return d, nil
}

// Location resolves ui.timezone; "Local" and "" mean the system zone.
func (c *Config) Location() (*time.Location, error) {
	if c.UI.Timezone == "" || c.UI.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.UI.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid ui.timezone %q: %w", c.UI.Timezone, err)
	}
	return loc, nil
}

func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}

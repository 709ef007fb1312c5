package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"api": map[string]interface{}{
			"base_url": "https://reminders-pa.clients6.google.com/v1internalOP/reminders",
			"timeout":  30,
		},
		"auth": map[string]interface{}{
			"app_keys_file": "~/.config/reminders-cli/app_keys.json",
			"token_file":    "~/.google-reminders-cli-oauth",
			"client_id":     "",
			"client_secret": "",
			"auth_url":      "https://accounts.google.com/o/oauth2/auth",
			"token_url":     "https://oauth2.googleapis.com/token",
			"redirect_port": 0, // 0 picks a free port
			"open_browser":  true,
		},
		"list": map[string]interface{}{
			"default_count": 10,
			// Empirical; see remote.DefaultCursorOffset.
			"cursor_offset": "15h",
		},
		"ui": map[string]interface{}{
			"colored_output": true,
			"spinner":        true,
			"timezone":       "Local",
		},
		"log": map[string]interface{}{
			"level":       "warn",
			"development": false,
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.config/reminders-cli/config.yaml"
}

func GetDefaultDotEnvPath() string {
	return "~/.config/reminders-cli/.env"
}

package config

import (
	"os"
	"strings"
)

// Environment variables that override the config file. Secrets live in the
// environment of the deployment, not in the file; the file only carries the
// non-sensitive knobs.
const (
	EnvMailgunAPIKey = "MAILGUN_API_KEY"
	EnvMailgunDomain = "MAILGUN_DOMAIN"
	EnvMailgunFrom   = "MAILGUN_FROM_EMAIL"
	EnvAppID         = "APP_ID"
)

// ApplyEnv overlays environment values onto cfg. Empty env vars are ignored
// so a file-configured value survives an unset environment.
func ApplyEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	if v := strings.TrimSpace(os.Getenv(EnvMailgunAPIKey)); v != "" {
		cfg.Mailer.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMailgunDomain)); v != "" {
		cfg.Mailer.Domain = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMailgunFrom)); v != "" {
		cfg.Mailer.From = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAppID)); v != "" {
		cfg.App.ID = v
	}
}

package config

import (
	"errors"
	"fmt"
	"strings"
)

type Config struct {
	App     AppConfig     `json:"app"`
	Logging LoggingConfig `json:"logging"`
	Storage StorageConfig `json:"storage"`
	Scanner ScannerConfig `json:"scanner"`
	Digest  DigestConfig  `json:"digest,omitempty"`
	Mailer  MailerConfig  `json:"mailer"`
}

// AppConfig identifies the application namespace events live under.
// ID has no default: without it the scanner cannot address event documents,
// so startup fails fast.
type AppConfig struct {
	ID      string `json:"id"`
	BaseURL string `json:"base_url,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StorageConfig selects the backing document store.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./remindd.db" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// ScannerConfig controls the reminder scan job.
//
// Schedule accepts a cron expression ("*/15 * * * *", "@every 15m") or a
// plain interval ("15m"). Window defaults to the schedule interval when the
// schedule is an interval, else to 15m; it must equal the real trigger
// cadence or reminders will double-fire or be missed.
//
// Dedup is an explicit choice: when false (default, matching the original
// behavior) the scanner relies on the window alone and overlapping runs may
// send duplicates; when true a sent marker keyed by (user, event, offset)
// suppresses re-sends for DedupTTL.
type ScannerConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule,omitempty"`
	Window   string `json:"window,omitempty"`
	Dedup    bool   `json:"dedup,omitempty"`
	DedupTTL string `json:"dedup_ttl,omitempty"`
}

// DigestConfig controls the daily unread-notification digest job.
type DigestConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule,omitempty"` // default "@daily"
	MaxItems int    `json:"max_items,omitempty"`
}

// MailerConfig configures the outbound mail provider.
//
// APIKey, Domain and From usually come from the environment (MAILGUN_API_KEY,
// MAILGUN_DOMAIN, MAILGUN_FROM_EMAIL) rather than the file; env values win.
// If any of the three is missing the dispatcher is disabled: matches are
// still computed and logged, nothing is sent.
type MailerConfig struct {
	Endpoint string `json:"endpoint,omitempty"` // default https://api.mailgun.net/v3
	Domain   string `json:"domain,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
	From     string `json:"from,omitempty"`

	// DisplayUTCOffset shifts rendered event times into a fixed display zone
	// (Go duration string, default "3h"). A deliberate simplification: there
	// is no per-event timezone field yet, so events outside this zone render
	// a wrong local time.
	DisplayUTCOffset string `json:"display_utc_offset,omitempty"`

	RatePerSec int    `json:"rate_per_sec,omitempty"` // default 3
	Timeout    string `json:"timeout,omitempty"`      // per-request, default "10s"
}

// Validate checks the invariants a run cannot start without.
// Mailer credentials are deliberately NOT validated here: their absence only
// disables dispatch, it does not abort the scan.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if strings.TrimSpace(c.App.ID) == "" {
		return errors.New("app.id is required")
	}
	if _, err := ParseDurationField("scanner.window", c.Scanner.Window); err != nil {
		return err
	}
	if _, err := ParseDurationField("scanner.dedup_ttl", c.Scanner.DedupTTL); err != nil {
		return err
	}
	if _, err := ParseDurationField("mailer.timeout", c.Mailer.Timeout); err != nil {
		return err
	}
	if _, err := ParseSignedDurationOrDefault("mailer.display_utc_offset", c.Mailer.DisplayUTCOffset, 0); err != nil {
		return err
	}
	if _, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
		return err
	}
	if c.Digest.MaxItems < 0 {
		return fmt.Errorf("digest.max_items must be >= 0")
	}
	return nil
}

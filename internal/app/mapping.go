package app

import (
	"time"

	"remindd/internal/config"
	"remindd/internal/mailer"
	"remindd/internal/scan"
	"remindd/internal/schedule"
	"remindd/internal/store"
)

// Config mapping: translate the file config into per-component configs,
// resolving duration strings and defaults in one place.

func mapStoreConfig(cfg *config.Config) (store.Config, error) {
	busy, err := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
	if err != nil {
		return store.Config{}, err
	}
	return store.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: busy,
	}, nil
}

func mapMailerConfig(cfg *config.Config) (mailer.Config, error) {
	timeout, err := config.ParseDurationOrDefault("mailer.timeout", cfg.Mailer.Timeout, 10*time.Second)
	if err != nil {
		return mailer.Config{}, err
	}
	// The reference deployment renders event times in East Africa Time.
	display, err := config.ParseSignedDurationOrDefault("mailer.display_utc_offset", cfg.Mailer.DisplayUTCOffset, 3*time.Hour)
	if err != nil {
		return mailer.Config{}, err
	}
	return mailer.Config{
		Endpoint:      cfg.Mailer.Endpoint,
		Domain:        cfg.Mailer.Domain,
		APIKey:        cfg.Mailer.APIKey,
		From:          cfg.Mailer.From,
		BaseURL:       strOr(cfg.App.BaseURL, "https://cinemaplot.com"),
		DisplayOffset: display,
		RatePerSec:    cfg.Mailer.RatePerSec,
		Timeout:       timeout,
	}, nil
}

func mapScannerConfig(cfg *config.Config, spec schedule.Spec) (scan.Config, error) {
	window, err := config.ParseDurationField("scanner.window", cfg.Scanner.Window)
	if err != nil {
		return scan.Config{}, err
	}
	if window <= 0 {
		// The window must equal the trigger cadence; derive it when possible.
		window = spec.Window(15 * time.Minute)
	}
	ttl, err := config.ParseDurationField("scanner.dedup_ttl", cfg.Scanner.DedupTTL)
	if err != nil {
		return scan.Config{}, err
	}
	return scan.Config{
		AppID:    cfg.App.ID,
		Window:   window,
		Dedup:    cfg.Scanner.Dedup,
		DedupTTL: ttl,
	}, nil
}

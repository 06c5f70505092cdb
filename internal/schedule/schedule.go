// Package schedule parses job trigger specs.
//
// A spec is either a cron expression (robfig/cron, descriptors allowed) or a
// fixed interval; the reminder window is derived from the interval when the
// spec is one.
package schedule

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Kind describes the normalized kind of a schedule string.
type Kind int

const (
	KindCron Kind = iota
	KindInterval
)

// Spec represents a parsed schedule string.
//
// Supported forms:
//   - Cron (crontab.guru-style): "*/15 * * * *", "@daily", "@every 15m"
//   - Interval duration: "15m", "2h30m"
//   - Interval HH:MM: "00:50" (50 minutes), "02:30" (2 hours 30 minutes)
type Spec struct {
	Kind  Kind
	Cron  string
	Every time.Duration
}

// Parser accepts standard 5-field specs plus descriptors like "@daily".
var Parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

var reHHMM = regexp.MustCompile(`^\s*(\d{1,3}):(\d{2})\s*$`)

// Parse parses a schedule string into either a cron expression or an
// interval. Cron expressions are validated eagerly so a bad config fails at
// load, not at first trigger.
func Parse(raw string) (Spec, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Spec{}, fmt.Errorf("schedule required")
	}

	// Any whitespace or a leading '@' means cron.
	if strings.ContainsAny(s, " \t\n\r") || strings.HasPrefix(s, "@") {
		if _, err := Parser.Parse(s); err != nil {
			return Spec{}, fmt.Errorf("invalid cron schedule %q: %w", raw, err)
		}
		return Spec{Kind: KindCron, Cron: s}, nil
	}

	if reHHMM.MatchString(s) {
		d, err := parseHHMM(s)
		if err != nil {
			return Spec{}, err
		}
		return Spec{Kind: KindInterval, Every: d}, nil
	}

	d, err := time.ParseDuration(s)
	if err == nil {
		if d <= 0 {
			return Spec{}, fmt.Errorf("interval must be > 0")
		}
		return Spec{Kind: KindInterval, Every: d}, nil
	}

	return Spec{}, fmt.Errorf(
		"invalid schedule %q (use cron like '*/15 * * * *', HH:MM like '02:30', or duration like '15m')",
		raw,
	)
}

// CronSpec renders the spec in the form the cron runner registers.
func (s Spec) CronSpec() string {
	if s.Kind == KindInterval {
		return "@every " + s.Every.String()
	}
	return s.Cron
}

// Window returns the reminder window for this spec: the interval itself when
// the spec is one, else def. A cron expression has no uniform cadence, so
// the window cannot be derived from it.
func (s Spec) Window(def time.Duration) time.Duration {
	if s.Kind == KindInterval && s.Every > 0 {
		return s.Every
	}
	return def
}

func parseHHMM(s string) (time.Duration, error) {
	m := reHHMM.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid HH:MM interval %q", s)
	}
	var h, mm int
	if _, err := fmt.Sscanf(m[1]+" "+m[2], "%d %d", &h, &mm); err != nil {
		return 0, fmt.Errorf("invalid HH:MM interval %q: %w", s, err)
	}
	if mm >= 60 {
		return 0, fmt.Errorf("invalid HH:MM interval %q: minutes must be < 60", s)
	}
	d := time.Duration(h)*time.Hour + time.Duration(mm)*time.Minute
	if d <= 0 {
		return 0, fmt.Errorf("interval must be > 0")
	}
	return d, nil
}

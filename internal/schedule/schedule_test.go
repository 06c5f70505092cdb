package schedule

import (
	"testing"
	"time"
)

func TestParseVariants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		raw      string
		kind     Kind
		duration time.Duration
	}{
		{name: "cron", raw: "*/15 * * * *", kind: KindCron},
		{name: "descriptor", raw: "@daily", kind: KindCron},
		{name: "every descriptor", raw: "@every 15m", kind: KindCron},
		{name: "duration", raw: "15m", kind: KindInterval, duration: 15 * time.Minute},
		{name: "hhmm", raw: "01:30", kind: KindInterval, duration: 90 * time.Minute},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.raw, err)
			}
			if got.Kind != tt.kind {
				t.Fatalf("Kind = %v, want %v", got.Kind, tt.kind)
			}
			if tt.kind == KindInterval && got.Every != tt.duration {
				t.Fatalf("Every = %v, want %v", got.Every, tt.duration)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "not-a-schedule", "* * *", "00:99", "-5m"} {
		if _, err := Parse(raw); err == nil {
			t.Fatalf("Parse(%q) should fail", raw)
		}
	}
}

func TestCronSpec(t *testing.T) {
	t.Parallel()
	s, err := Parse("15m")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := s.CronSpec(); got != "@every 15m0s" {
		t.Fatalf("CronSpec = %q", got)
	}
	if _, err := Parser.Parse(s.CronSpec()); err != nil {
		t.Fatalf("rendered spec must be registrable: %v", err)
	}

	c, err := Parse("*/15 * * * *")
	if err != nil {
		t.Fatalf("Parse cron: %v", err)
	}
	if got := c.CronSpec(); got != "*/15 * * * *" {
		t.Fatalf("CronSpec = %q", got)
	}
}

func TestWindow(t *testing.T) {
	t.Parallel()
	s, _ := Parse("30m")
	if got := s.Window(15 * time.Minute); got != 30*time.Minute {
		t.Fatalf("interval window = %v", got)
	}
	c, _ := Parse("*/15 * * * *")
	if got := c.Window(15 * time.Minute); got != 15*time.Minute {
		t.Fatalf("cron window = %v", got)
	}
}

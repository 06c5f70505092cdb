package domain

import (
	"testing"
	"time"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tt, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return tt
}

func TestMatchesWindowBounds(t *testing.T) {
	t.Parallel()
	event := mustTime(t, "2025-03-10T18:00:00Z")
	offset := OffsetSpec{Value: 30, Unit: UnitMinutes}

	tests := []struct {
		name string
		now  string
		want bool
	}{
		{name: "inside window", now: "2025-03-10T17:32:00Z", want: true},
		{name: "lower bound inclusive", now: "2025-03-10T17:30:00Z", want: true},
		{name: "last matching minute", now: "2025-03-10T17:44:00Z", want: true},
		{name: "upper bound exclusive", now: "2025-03-10T17:45:00Z", want: false},
		{name: "before fire time", now: "2025-03-10T17:29:00Z", want: false},
		{name: "long past", now: "2025-03-10T19:00:00Z", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			now := mustTime(t, tt.now)
			if got := Matches(now, event, offset, DefaultWindow); got != tt.want {
				t.Fatalf("Matches(now=%s) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestMatchesUnitConversion(t *testing.T) {
	t.Parallel()
	event := mustTime(t, "2025-03-10T18:00:00Z")

	tests := []struct {
		name   string
		offset OffsetSpec
		now    string
		want   bool
	}{
		{name: "2 hours exact", offset: OffsetSpec{Value: 2, Unit: UnitHours}, now: "2025-03-10T16:00:00Z", want: true},
		{name: "2 hours stale", offset: OffsetSpec{Value: 2, Unit: UnitHours}, now: "2025-03-10T16:15:00Z", want: false},
		{name: "1 day is 24h", offset: OffsetSpec{Value: 1, Unit: UnitDays}, now: "2025-03-09T18:00:00Z", want: true},
		{name: "zero offset fires at start", offset: OffsetSpec{Value: 0, Unit: UnitMinutes}, now: "2025-03-10T18:00:00Z", want: true},
		{name: "unknown unit never fires", offset: OffsetSpec{Value: 30, Unit: "weeks"}, now: "2025-03-10T17:32:00Z", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			now := mustTime(t, tt.now)
			if got := Matches(now, event, tt.offset, DefaultWindow); got != tt.want {
				t.Fatalf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFirstMatchOrder(t *testing.T) {
	t.Parallel()
	event := mustTime(t, "2025-03-10T18:00:00Z")
	now := mustTime(t, "2025-03-10T17:50:00Z")

	// Both the 10m and 15m entries would match; stored order wins.
	offsets := []OffsetSpec{
		{Value: 99, Unit: "fortnights"}, // skipped, invalid
		{Value: 10, Unit: UnitMinutes},  // matches first
		{Value: 15, Unit: UnitMinutes},  // would also match
	}

	got, ok := FirstMatch(now, event, offsets, DefaultWindow)
	if !ok {
		t.Fatal("expected a match")
	}
	if got.Value != 10 || got.Unit != UnitMinutes {
		t.Fatalf("FirstMatch picked %+v, want the 10-minute spec", got)
	}
}

func TestFirstMatchNone(t *testing.T) {
	t.Parallel()
	event := mustTime(t, "2025-03-10T18:00:00Z")
	now := mustTime(t, "2025-03-10T12:00:00Z")

	if _, ok := FirstMatch(now, event, nil, DefaultWindow); ok {
		t.Fatal("empty offsets must never match")
	}
	invalid := []OffsetSpec{{Value: 1, Unit: "years"}, {}}
	if _, ok := FirstMatch(now, event, invalid, DefaultWindow); ok {
		t.Fatal("all-invalid offsets must never match")
	}
}

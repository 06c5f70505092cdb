package domain

import (
	"testing"
	"time"
)

func TestOffsetDuration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		spec OffsetSpec
		want time.Duration
	}{
		{name: "minutes", spec: OffsetSpec{Value: 30, Unit: UnitMinutes}, want: 30 * time.Minute},
		{name: "hours", spec: OffsetSpec{Value: 2, Unit: UnitHours}, want: 2 * time.Hour},
		{name: "days", spec: OffsetSpec{Value: 1, Unit: UnitDays}, want: 24 * time.Hour},
		{name: "invalid unit", spec: OffsetSpec{Value: 5, Unit: "weeks"}, want: 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.spec.Duration(); got != tt.want {
				t.Fatalf("Duration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeOffsetsLenient(t *testing.T) {
	t.Parallel()

	raw := `[
		{"value": 30, "unit": "minutes"},
		{"value": 1.5, "unit": "hours"},
		{"value": "ten", "unit": "minutes"},
		"garbage",
		{"value": 2, "unit": "days"}
	]`

	specs := DecodeOffsets([]byte(raw))
	if len(specs) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(specs))
	}
	if !specs[0].Valid() || specs[0].Value != 30 {
		t.Fatalf("first spec should survive: %+v", specs[0])
	}
	for i := 1; i <= 3; i++ {
		if specs[i].Valid() {
			t.Fatalf("entry %d should be invalid: %+v", i, specs[i])
		}
	}
	if !specs[4].Valid() || specs[4].Unit != UnitDays {
		t.Fatalf("last spec should survive: %+v", specs[4])
	}
}

func TestDecodeOffsetsNotArray(t *testing.T) {
	t.Parallel()
	if got := DecodeOffsets([]byte(`{"value":1}`)); got != nil {
		t.Fatalf("non-array payload should decode to nil, got %+v", got)
	}
	if got := DecodeOffsets(nil); got != nil {
		t.Fatalf("empty payload should decode to nil, got %+v", got)
	}
}

func TestEventStartTime(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{name: "rfc3339", raw: "2025-03-10T18:00:00Z", ok: true},
		{name: "with offset", raw: "2025-03-10T21:00:00+03:00", ok: true},
		{name: "no zone treated as utc", raw: "2025-03-10T18:00:00", ok: true},
		{name: "missing", raw: "", ok: false},
		{name: "garbage", raw: "next tuesday", ok: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			ev := Event{DateTime: tt.raw}
			got, ok := ev.StartTime()
			if ok != tt.ok {
				t.Fatalf("StartTime ok = %v, want %v", ok, tt.ok)
			}
			if ok && got.Location() != time.UTC {
				t.Fatalf("StartTime must normalize to UTC, got %v", got.Location())
			}
		})
	}
}

func TestEventStartTimeNormalizesOffset(t *testing.T) {
	t.Parallel()
	ev := Event{DateTime: "2025-03-10T21:00:00+03:00"}
	got, ok := ev.StartTime()
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	want := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("StartTime = %v, want %v", got, want)
	}
}

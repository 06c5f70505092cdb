package domain

import (
	"encoding/json"
	"time"
)

// Recognized offset units. Anything else makes the spec invalid.
const (
	UnitMinutes = "minutes"
	UnitHours   = "hours"
	UnitDays    = "days"
)

// OffsetSpec is one "notify N units before the event" entry.
//
// Specs come from user-edited documents, so a spec may be arbitrarily
// malformed. Invalid specs are carried through decoding as zero-unit specs
// and skipped at evaluation time; one bad entry never fails the record.
type OffsetSpec struct {
	Value int
	Unit  string
}

// Valid reports whether the spec can be converted to a duration.
// Negative values are allowed (they mean "after start") and match the same
// window arithmetic; unknown units are not.
func (o OffsetSpec) Valid() bool {
	switch o.Unit {
	case UnitMinutes, UnitHours, UnitDays:
		return true
	default:
		return false
	}
}

// Duration converts the spec with exact units: 1 day = 24h, 1 hour = 60m.
// Duration of an invalid spec is 0.
func (o OffsetSpec) Duration() time.Duration {
	switch o.Unit {
	case UnitMinutes:
		return time.Duration(o.Value) * time.Minute
	case UnitHours:
		return time.Duration(o.Value) * time.Hour
	case UnitDays:
		return time.Duration(o.Value) * 24 * time.Hour
	default:
		return 0
	}
}

// UnmarshalJSON decodes leniently: a non-object entry, a fractional value, or
// a non-string unit yields the zero (invalid) spec instead of an error.
func (o *OffsetSpec) UnmarshalJSON(b []byte) error {
	*o = OffsetSpec{}

	var raw struct {
		Value json.Number `json:"value"`
		Unit  string      `json:"unit"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	v, err := raw.Value.Int64()
	if err != nil {
		return nil
	}
	o.Value = int(v)
	o.Unit = raw.Unit
	return nil
}

// DecodeOffsets parses a stored offsets JSON array.
// Malformed entries become invalid specs; a document whose offsets field is
// not an array at all decodes to nil.
func DecodeOffsets(b []byte) []OffsetSpec {
	if len(b) == 0 {
		return nil
	}
	var specs []OffsetSpec
	if err := json.Unmarshal(b, &specs); err != nil {
		return nil
	}
	return specs
}

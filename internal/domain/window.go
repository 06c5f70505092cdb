package domain

import "time"

// DefaultWindow matches the reference 15-minute trigger cadence.
const DefaultWindow = 15 * time.Minute

// Matches reports whether an offset's ideal fire time falls inside the
// current window.
//
// The window is half-open: with t = eventTime - offset and diff = now - t,
// diff == 0 matches and diff == window does not. A reminder therefore fires
// in exactly one window as long as consecutive runs are `window` apart.
func Matches(now, eventTime time.Time, offset OffsetSpec, window time.Duration) bool {
	if !offset.Valid() || window <= 0 {
		return false
	}
	diff := now.Sub(eventTime.Add(-offset.Duration()))
	return diff >= 0 && diff < window
}

// FirstMatch returns the first spec (in stored order) that matches, or
// (zero, false) when none do. Evaluation stops at the first hit so a record
// sends at most once per run even when several offsets land in the same
// window.
func FirstMatch(now, eventTime time.Time, offsets []OffsetSpec, window time.Duration) (OffsetSpec, bool) {
	for _, o := range offsets {
		if Matches(now, eventTime, o, window) {
			return o, true
		}
	}
	return OffsetSpec{}, false
}

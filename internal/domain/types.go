package domain

import (
	"strings"
	"time"
)

// User is a read-only projection of a stored user account.
// An empty Email means the user cannot receive reminder mail.
type User struct {
	ID          string
	Email       string
	DisplayName string
}

// HasEmail reports whether the user can be mailed at all.
func (u User) HasEmail() bool { return strings.TrimSpace(u.Email) != "" }

// Event is a read-only projection of a stored event.
//
// DateTime is kept as the raw stored string; the store does not guarantee it
// parses. Callers go through StartTime() and treat a parse failure as a
// per-record skip.
type Event struct {
	ID       string
	Title    string
	DateTime string
	Location string
	Deleted  bool
	Paused   bool
}

// Active reports whether the event may still produce reminders.
func (e Event) Active() bool { return !e.Deleted && !e.Paused }

// startLayouts are the accepted dateTime shapes, tried in order.
// The app writes RFC3339; older rows may lack a zone suffix (treated as UTC).
var startLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// StartTime parses the event's dateTime into UTC.
// ok is false when the field is absent or unparseable.
func (e Event) StartTime() (t time.Time, ok bool) {
	raw := strings.TrimSpace(e.DateTime)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range startLayouts {
		if tt, err := time.Parse(layout, raw); err == nil {
			return tt.UTC(), true
		}
	}
	return time.Time{}, false
}

// Record is one notification-preference document. Its identity is the
// (UserID, EventID) pair; Offsets keep their stored order.
type Record struct {
	UserID  string
	EventID string
	Offsets []OffsetSpec
}

// Notification is one unread in-app notification, used by the daily digest.
type Notification struct {
	ID         string
	UserID     string
	Title      string
	Message    string
	EntityType string
	EntityID   string
	Read       bool
	CreatedAt  time.Time
}

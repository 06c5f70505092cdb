package mailer

import (
	"strings"
	"testing"
	"time"

	"remindd/internal/domain"
)

func TestFormatEventTimeDisplayOffset(t *testing.T) {
	t.Parallel()
	ev := domain.Event{DateTime: "2025-03-10T15:00:00Z"}

	got := FormatEventTime(ev, 3*time.Hour)
	if got != "06:00 PM on Monday, March 10" {
		t.Fatalf("FormatEventTime = %q", got)
	}

	// Zero offset renders UTC as-is.
	if got := FormatEventTime(ev, 0); got != "03:00 PM on Monday, March 10" {
		t.Fatalf("UTC render = %q", got)
	}
}

func TestFormatEventTimeUnknown(t *testing.T) {
	t.Parallel()
	if got := FormatEventTime(domain.Event{}, 3*time.Hour); got != "Unknown time" {
		t.Fatalf("missing dateTime = %q", got)
	}
	if got := FormatEventTime(domain.Event{DateTime: "whenever"}, 0); got != "Unknown time" {
		t.Fatalf("bad dateTime = %q", got)
	}
}

func TestReminderMessage(t *testing.T) {
	t.Parallel()
	cfg := Config{BaseURL: "https://cinemaplot.com", DisplayOffset: 3 * time.Hour}
	ev := domain.Event{ID: "e1", Title: "Premiere Night", DateTime: "2025-03-10T15:00:00Z", Location: "Kampala"}

	msg := ReminderMessage("user@example.com", ev, cfg)
	if msg.Subject != "Reminder: 'Premiere Night' is starting soon!" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	for _, want := range []string{
		"06:00 PM on Monday, March 10",
		"Location: Kampala",
		"https://cinemaplot.com/event/e1",
	} {
		if !strings.Contains(msg.Text, want) {
			t.Fatalf("body missing %q:\n%s", want, msg.Text)
		}
	}
}

func TestReminderMessageFallbacks(t *testing.T) {
	t.Parallel()
	cfg := Config{BaseURL: "https://cinemaplot.com"}
	msg := ReminderMessage("user@example.com", domain.Event{ID: "e2"}, cfg)

	for _, want := range []string{"Untitled Event", "Unknown time", "Location: Not specified"} {
		if !strings.Contains(msg.Text, want) {
			t.Fatalf("body missing %q:\n%s", want, msg.Text)
		}
	}
}

func TestDigestMessage(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	cfg := Config{BaseURL: "https://cinemaplot.com"}
	user := domain.User{ID: "u1", Email: "u1@example.com", DisplayName: "Ada"}

	items := make([]domain.Notification, 12)
	for i := range items {
		items[i] = domain.Notification{
			ID:        "n" + string(rune('a'+i)),
			Title:     "Title",
			Message:   "Message",
			CreatedAt: now.Add(-time.Duration(i+2) * time.Hour),
		}
	}
	items[0].EntityType = "movie"
	items[0].EntityID = "m1"

	msg := DigestMessage(user, items, 10, now, cfg)
	if msg.Subject != "You have 12 unread notifications on CinemaPlot" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Text, "Hello Ada!") {
		t.Fatalf("missing greeting:\n%s", msg.Text)
	}
	if !strings.Contains(msg.Text, "+ 2 more notifications") {
		t.Fatalf("missing overflow line:\n%s", msg.Text)
	}
	if !strings.Contains(msg.Text, "https://cinemaplot.com/movies/m1") {
		t.Fatalf("missing entity link:\n%s", msg.Text)
	}
	if !strings.Contains(msg.Text, "2 hours ago") {
		t.Fatalf("missing relative age:\n%s", msg.Text)
	}
}

func TestDigestMessageSingular(t *testing.T) {
	t.Parallel()
	now := time.Now()
	user := domain.User{Email: "u@example.com"}
	items := []domain.Notification{{Title: "One", Message: "thing", CreatedAt: now}}

	msg := DigestMessage(user, items, 10, now, Config{BaseURL: "https://cinemaplot.com"})
	if msg.Subject != "You have 1 unread notification on CinemaPlot" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Text, "1 unread notification waiting") {
		t.Fatalf("body should be singular:\n%s", msg.Text)
	}
	if !strings.Contains(msg.Text, "Hello Film Creator!") {
		t.Fatalf("missing fallback name:\n%s", msg.Text)
	}
}

func TestTimeAgo(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	tests := []struct {
		at   time.Time
		want string
	}{
		{at: now.Add(-10 * time.Minute), want: "Less than an hour ago"},
		{at: now.Add(-90 * time.Minute), want: "1 hour ago"},
		{at: now.Add(-5 * time.Hour), want: "5 hours ago"},
		{at: now.Add(-26 * time.Hour), want: "1 day ago"},
		{at: now.Add(-3 * 24 * time.Hour), want: "3 days ago"},
		{at: now.Add(-10 * 24 * time.Hour), want: "February 28, 2025"},
	}
	for _, tt := range tests {
		if got := timeAgo(now, tt.at); got != tt.want {
			t.Fatalf("timeAgo(%v) = %q, want %q", tt.at, got, tt.want)
		}
	}
}

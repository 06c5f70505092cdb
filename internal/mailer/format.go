package mailer

import (
	"fmt"
	"strings"
	"time"

	"remindd/internal/domain"
)

// eventTimeLayout renders "06:00 PM on Monday, March 10".
const eventTimeLayout = "03:04 PM on Monday, January 2"

const unknownTime = "Unknown time"

// FormatEventTime renders an event's start time in the fixed display offset.
// A missing or unparseable dateTime renders the literal placeholder instead
// of failing the send.
func FormatEventTime(ev domain.Event, displayOffset time.Duration) string {
	start, ok := ev.StartTime()
	if !ok {
		return unknownTime
	}
	zone := time.FixedZone(offsetName(displayOffset), int(displayOffset/time.Second))
	return start.In(zone).Format(eventTimeLayout)
}

func offsetName(d time.Duration) string {
	if d == 0 {
		return "UTC"
	}
	sign := "+"
	if d < 0 {
		sign = "-"
		d = -d
	}
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	if m == 0 {
		return fmt.Sprintf("UTC%s%d", sign, h)
	}
	return fmt.Sprintf("UTC%s%d:%02d", sign, h, m)
}

// ReminderMessage builds the reminder email for one (user email, event) pair.
func ReminderMessage(to string, ev domain.Event, cfg Config) Message {
	location := strings.TrimSpace(ev.Location)
	if location == "" {
		location = "Not specified"
	}
	title := strings.TrimSpace(ev.Title)
	if title == "" {
		title = "Untitled Event"
	}

	body := fmt.Sprintf(`Hi there,

This is a reminder that the event '%s' is scheduled to start soon.

Event Time: %s
Location: %s

You can view the event details here: %s/event/%s

Enjoy the event!
The CinemaPlot Team
`, title, FormatEventTime(ev, cfg.DisplayOffset), location, strings.TrimRight(cfg.BaseURL, "/"), ev.ID)

	return Message{
		To:      to,
		Subject: fmt.Sprintf("Reminder: '%s' is starting soon!", title),
		Text:    body,
		Tag:     "event-reminder",
	}
}

// DigestMessage builds the daily unread-notification digest for one user.
// Only the maxItems newest notifications are listed; the rest collapse into
// a "+N more" line.
func DigestMessage(user domain.User, items []domain.Notification, maxItems int, now time.Time, cfg Config) Message {
	if maxItems <= 0 {
		maxItems = 10
	}
	name := strings.TrimSpace(user.DisplayName)
	if name == "" {
		name = "Film Creator"
	}

	count := len(items)
	subject := fmt.Sprintf("You have %d unread notifications on CinemaPlot", count)
	plural := "s"
	if count == 1 {
		subject = "You have 1 unread notification on CinemaPlot"
		plural = ""
	}

	var list strings.Builder
	shown := items
	if len(shown) > maxItems {
		shown = shown[:maxItems]
	}
	for i, n := range shown {
		if i > 0 {
			list.WriteString("\n\n")
		}
		fmt.Fprintf(&list, "%d. %s\n   %s\n   %s", i+1, n.Title, n.Message, timeAgo(now, n.CreatedAt))
		if link := entityURL(cfg.BaseURL, n); link != "" {
			fmt.Fprintf(&list, "\n   %s", link)
		}
	}
	if count > maxItems {
		fmt.Fprintf(&list, "\n\n+ %d more notifications", count-maxItems)
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	body := fmt.Sprintf(`Your Daily CinemaPlot Notifications

Hello %s!

You have %d unread notification%s waiting for you:

%s

View all notifications: %s/notifications
Visit CinemaPlot: %s
`, name, count, plural, list.String(), base, base)

	return Message{
		To:      user.Email,
		Subject: subject,
		Text:    body,
		Tag:     "daily-digest",
	}
}

// entityURL maps a notification's entity reference to a deep link.
// Unknown entity types get no link.
func entityURL(baseURL string, n domain.Notification) string {
	base := strings.TrimRight(baseURL, "/")
	switch n.EntityType {
	case "event":
		return base + "/events/" + n.EntityID
	case "movie":
		return base + "/movies/" + n.EntityID
	case "screenplay":
		return base + "/screenplays/" + n.EntityID
	default:
		return ""
	}
}

func timeAgo(now, at time.Time) string {
	if at.IsZero() {
		return ""
	}
	hours := int(now.Sub(at) / time.Hour)
	days := hours / 24
	switch {
	case days > 7:
		return at.Format("January 2, 2006")
	case days == 1:
		return "1 day ago"
	case days > 1:
		return fmt.Sprintf("%d days ago", days)
	case hours == 1:
		return "1 hour ago"
	case hours > 1:
		return fmt.Sprintf("%d hours ago", hours)
	default:
		return "Less than an hour ago"
	}
}

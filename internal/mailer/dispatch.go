package mailer

import (
	"context"
	"time"

	"remindd/internal/domain"
)

// SendReminder renders and sends the reminder email for one (user, event)
// match.
func (m *Mailer) SendReminder(ctx context.Context, to string, ev domain.Event) error {
	cfg, _, _ := m.config()
	return m.Send(ctx, ReminderMessage(to, ev, cfg))
}

// SendDigest renders and sends the daily unread-notification digest.
func (m *Mailer) SendDigest(ctx context.Context, user domain.User, items []domain.Notification, maxItems int, now time.Time) error {
	cfg, _, _ := m.config()
	return m.Send(ctx, DigestMessage(user, items, maxItems, now, cfg))
}

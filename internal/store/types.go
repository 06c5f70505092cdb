package store

import (
	"context"
	"errors"
	"time"

	"remindd/internal/domain"
)

var ErrDisabled = errors.New("store disabled")

// Config configures the store.
//
// Driver values:
//   - "sqlite": SQLite database file (pure-Go driver)
//
// If Driver is empty or "none", the store is disabled and Open returns nil.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// AuditEntry records one job run. Keep it compact and schema-stable.
type AuditEntry struct {
	At      time.Time
	Job     string
	RunID   string
	Records int
	Matched int
	Sent    int
	Failed  int
	Skipped int
	Error   string
	TookMS  int64
}

// Store is the persistence API used by the scan and digest jobs.
type Store interface {
	// ListRecords scans every notification-preference record across all
	// users, with no filter. Cost is linear in total record count.
	ListRecords(ctx context.Context) ([]domain.Record, error)

	GetUser(ctx context.Context, id string) (domain.User, bool, error)
	GetEvent(ctx context.Context, appID, id string) (domain.Event, bool, error)

	// ListUsersWithUnread returns users (with a non-empty email) that have at
	// least one unread notification.
	ListUsersWithUnread(ctx context.Context) ([]domain.User, error)
	// ListUnreadNotifications returns a user's unread notifications,
	// newest first.
	ListUnreadNotifications(ctx context.Context, userID string) ([]domain.Notification, error)

	PutSent(ctx context.Context, key string, until time.Time) error
	WasSent(ctx context.Context, key string) (bool, error)

	AppendAudit(ctx context.Context, e AuditEntry) error
	Close() error
}

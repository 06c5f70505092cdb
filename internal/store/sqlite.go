package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"remindd/internal/domain"
	logx "remindd/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger

	opCount    atomic.Uint64
	pruneEvery uint64
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log, pruneEvery: 500}

	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) ListRecords(ctx context.Context) ([]domain.Record, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, event_id, offsets FROM event_notifications`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var (
			rec     domain.Record
			offsets sql.NullString
		)
		if err := rows.Scan(&rec.UserID, &rec.EventID, &offsets); err != nil {
			return nil, err
		}
		if offsets.Valid {
			rec.Offsets = domain.DecodeOffsets([]byte(offsets.String))
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *sqliteStore) GetUser(ctx context.Context, id string) (domain.User, bool, error) {
	if s == nil || s.db == nil {
		return domain.User{}, false, ErrDisabled
	}
	var (
		u     domain.User
		email sql.NullString
		name  sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, display_name FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &email, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	u.Email = email.String
	u.DisplayName = name.String
	return u, true, nil
}

func (s *sqliteStore) GetEvent(ctx context.Context, appID, id string) (domain.Event, bool, error) {
	if s == nil || s.db == nil {
		return domain.Event{}, false, ErrDisabled
	}
	var (
		e                         domain.Event
		title, dateTime, location sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, date_time, location, deleted, paused
		 FROM events WHERE app_id = ? AND id = ?`, appID, id,
	).Scan(&e.ID, &title, &dateTime, &location, &e.Deleted, &e.Paused)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Event{}, false, nil
	}
	if err != nil {
		return domain.Event{}, false, err
	}
	e.Title = title.String
	e.DateTime = dateTime.String
	e.Location = location.String
	return e, true, nil
}

func (s *sqliteStore) ListUsersWithUnread(ctx context.Context) ([]domain.User, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT u.id, u.email, u.display_name
		 FROM users u
		 JOIN notifications n ON n.user_id = u.id AND n.is_read = 0
		 WHERE u.email IS NOT NULL AND u.email != ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var (
			u    domain.User
			name sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Email, &name); err != nil {
			return nil, err
		}
		u.DisplayName = name.String
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *sqliteStore) ListUnreadNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, message, entity_type, entity_id, created_at
		 FROM notifications
		 WHERE user_id = ? AND is_read = 0
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var (
			n                              domain.Notification
			title, msg, etype, eid, atText sql.NullString
		)
		if err := rows.Scan(&n.ID, &n.UserID, &title, &msg, &etype, &eid, &atText); err != nil {
			return nil, err
		}
		n.Title = title.String
		n.Message = msg.String
		n.EntityType = etype.String
		n.EntityID = eid.String
		if atText.Valid {
			if at, err := time.Parse(time.RFC3339Nano, atText.String); err == nil {
				n.CreatedAt = at
			}
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *sqliteStore) PutSent(ctx context.Context, key string, until time.Time) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	if key == "" {
		return nil
	}
	ms := until.UnixMilli()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sent(key, until) VALUES(?,?)
		 ON CONFLICT(key) DO UPDATE SET until=excluded.until`,
		key, ms,
	)
	if err == nil && s.opCount.Add(1)%s.pruneEvery == 0 {
		pctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		_ = s.pruneExpired(pctx)
		cancel()
	}
	return err
}

func (s *sqliteStore) WasSent(ctx context.Context, key string) (bool, error) {
	if s == nil || s.db == nil {
		return false, ErrDisabled
	}
	if key == "" {
		return false, nil
	}
	var ms int64
	err := s.db.QueryRowContext(ctx, `SELECT until FROM sent WHERE key = ?`, key).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return time.Now().UnixMilli() < ms, nil
}

func (s *sqliteStore) pruneExpired(ctx context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	now := time.Now().UnixMilli()
	_, err := s.db.ExecContext(ctx, `DELETE FROM sent WHERE until < ?`, now)
	return err
}

func (s *sqliteStore) AppendAudit(ctx context.Context, e AuditEntry) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit(at, job, run_id, records, matched, sent, failed, skipped, err, took_ms)
		 VALUES(?,?,?,?,?,?,?,?,?,?)`,
		e.At.Format(time.RFC3339Nano), e.Job, nullStr(e.RunID),
		e.Records, e.Matched, e.Sent, e.Failed, e.Skipped,
		nullStr(e.Error), e.TookMS,
	)
	return err
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

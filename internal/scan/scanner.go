package scan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"remindd/internal/domain"
	"remindd/internal/eventbus"
	"remindd/internal/store"
	logx "remindd/pkg/logx"
)

// Dispatcher is the outbound side the jobs need. mailer.Mailer implements it.
type Dispatcher interface {
	SendReminder(ctx context.Context, to string, ev domain.Event) error
	SendDigest(ctx context.Context, user domain.User, items []domain.Notification, maxItems int, now time.Time) error
}

// Summary is the outcome of one job run. It is published on the bus and
// persisted by the audit recorder.
type Summary struct {
	Job     string
	RunID   string
	Started time.Time
	Took    time.Duration

	Records int // records (or users, for digest) enumerated
	Matched int
	Sent    int
	Failed  int
	Skipped int

	Err string // set only when the run aborted before scanning
}

// Config controls one scanner instance.
type Config struct {
	AppID  string
	Window time.Duration

	// Dedup switches on sent markers keyed by (user, event, offset). Off by
	// default: the original design relies on the window alone and accepts
	// duplicates under overlapping runs.
	Dedup    bool
	DedupTTL time.Duration
}

// Scanner evaluates every notification-preference record against the current
// window and dispatches at most one reminder per record per run.
type Scanner struct {
	mu  sync.Mutex
	cfg Config

	st   store.Store
	mail Dispatcher
	log  logx.Logger
	bus  eventbus.Bus

	// now is a test seam; defaults to time.Now.
	now func() time.Time
}

func NewScanner(cfg Config, st store.Store, mail Dispatcher, log logx.Logger, bus eventbus.Bus) *Scanner {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Scanner{st: st, mail: mail, log: log, bus: bus, now: time.Now}
	s.Apply(cfg)
	return s
}

// Apply swaps the scan knobs at runtime (config hot reload).
func (s *Scanner) Apply(cfg Config) {
	if cfg.Window <= 0 {
		cfg.Window = domain.DefaultWindow
	}
	if cfg.DedupTTL <= 0 {
		cfg.DedupTTL = 24 * time.Hour
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *Scanner) config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Run performs one scan. The reference instant is captured once at entry and
// used for every window check in the run; it is never re-read mid-scan.
func (s *Scanner) Run(ctx context.Context) Summary {
	cfg := s.config()
	now := s.now().UTC()
	sum := Summary{Job: "scan", RunID: uuid.NewString(), Started: now}
	log := s.log.With(logx.String("run_id", sum.RunID))

	defer func() {
		sum.Took = s.now().UTC().Sub(now)
		log.Info("scan finished",
			logx.Int("records", sum.Records),
			logx.Int("matched", sum.Matched),
			logx.Int("sent", sum.Sent),
			logx.Int("failed", sum.Failed),
			logx.Int("skipped", sum.Skipped),
			logx.Duration("took", sum.Took),
		)
		if s.bus != nil {
			s.bus.Publish(eventbus.Event{Type: eventbus.TypeRunFinished, Data: sum})
		}
	}()

	log.Debug("scan started", logx.Time("now", now), logx.Duration("window", cfg.Window))

	records, err := s.st.ListRecords(ctx)
	if err != nil {
		// The one fatal path: without the record scan there is nothing to do.
		sum.Err = err.Error()
		log.Error("listing notification records failed", logx.Err(err))
		return sum
	}
	sum.Records = len(records)

	for _, rec := range records {
		if ctx.Err() != nil {
			sum.Err = ctx.Err().Error()
			return sum
		}
		s.processRecord(ctx, cfg, now, rec, &sum, log)
	}
	return sum
}

// processRecord resolves one record end to end. Every failure degrades to
// "skip this record"; nothing here aborts the scan.
func (s *Scanner) processRecord(ctx context.Context, cfg Config, now time.Time, rec domain.Record, sum *Summary, log logx.Logger) {
	log = log.With(logx.String("user", rec.UserID), logx.String("event", rec.EventID))

	user, ok, err := s.st.GetUser(ctx, rec.UserID)
	if err != nil {
		sum.Skipped++
		log.Warn("user lookup failed", logx.Err(err))
		return
	}
	if !ok || !user.HasEmail() {
		sum.Skipped++
		log.Debug("user not found or has no email")
		return
	}

	ev, ok, err := s.st.GetEvent(ctx, cfg.AppID, rec.EventID)
	if err != nil {
		sum.Skipped++
		log.Warn("event lookup failed", logx.Err(err))
		return
	}
	if !ok || !ev.Active() {
		sum.Skipped++
		log.Debug("event not found, deleted, or paused")
		return
	}

	start, ok := ev.StartTime()
	if !ok {
		sum.Skipped++
		log.Warn("event dateTime missing or unparseable", logx.String("date_time", ev.DateTime))
		return
	}

	offset, ok := domain.FirstMatch(now, start, rec.Offsets, cfg.Window)
	if !ok {
		return
	}
	sum.Matched++

	if cfg.Dedup {
		key := sentKey(rec, offset)
		if sent, err := s.st.WasSent(ctx, key); err != nil {
			log.Warn("sent-marker lookup failed; sending anyway", logx.Err(err))
		} else if sent {
			sum.Skipped++
			log.Debug("reminder already sent; suppressed", logx.String("key", key))
			return
		}
	}

	log.Info("reminder match",
		logx.String("title", ev.Title),
		logx.String("to", user.Email),
		logx.Int("offset_value", offset.Value),
		logx.String("offset_unit", offset.Unit),
	)

	if err := s.mail.SendReminder(ctx, user.Email, ev); err != nil {
		sum.Failed++
		log.Error("reminder send failed", logx.Err(err))
		if s.bus != nil {
			s.bus.Publish(eventbus.Event{Type: eventbus.TypeSendFailed, Data: sum.RunID})
		}
		return
	}
	sum.Sent++

	if cfg.Dedup {
		// Marker is written after the send: a crash in between re-sends
		// rather than silently dropping (at-least-once).
		if err := s.st.PutSent(ctx, sentKey(rec, offset), now.Add(cfg.DedupTTL)); err != nil {
			log.Warn("sent-marker write failed", logx.Err(err))
		}
	}
}

func sentKey(rec domain.Record, offset domain.OffsetSpec) string {
	return fmt.Sprintf("%s|%s|%d%s", rec.UserID, rec.EventID, offset.Value, offset.Unit)
}

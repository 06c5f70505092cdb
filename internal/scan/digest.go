package scan

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"remindd/internal/eventbus"
	"remindd/internal/store"
	logx "remindd/pkg/logx"
)

// DigestConfig controls the daily digest job.
type DigestConfig struct {
	MaxItems int // notifications listed per email; default 10
}

// Digest mails each user with unread in-app notifications a daily summary.
type Digest struct {
	mu  sync.Mutex
	cfg DigestConfig

	st   store.Store
	mail Dispatcher
	log  logx.Logger
	bus  eventbus.Bus

	now func() time.Time
}

func NewDigest(cfg DigestConfig, st store.Store, mail Dispatcher, log logx.Logger, bus eventbus.Bus) *Digest {
	if log.IsZero() {
		log = logx.Nop()
	}
	d := &Digest{st: st, mail: mail, log: log, bus: bus, now: time.Now}
	d.Apply(cfg)
	return d
}

func (d *Digest) Apply(cfg DigestConfig) {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 10
	}
	d.mu.Lock()
	d.cfg = cfg
	d.mu.Unlock()
}

func (d *Digest) config() DigestConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}

// Run sends one digest per user with unread notifications. Per-user failures
// are isolated: one bad mailbox never stops the rest.
func (d *Digest) Run(ctx context.Context) Summary {
	cfg := d.config()
	now := d.now().UTC()
	sum := Summary{Job: "digest", RunID: uuid.NewString(), Started: now}
	log := d.log.With(logx.String("run_id", sum.RunID))

	defer func() {
		sum.Took = d.now().UTC().Sub(now)
		log.Info("digest finished",
			logx.Int("users", sum.Records),
			logx.Int("sent", sum.Sent),
			logx.Int("failed", sum.Failed),
			logx.Int("skipped", sum.Skipped),
			logx.Duration("took", sum.Took),
		)
		if d.bus != nil {
			d.bus.Publish(eventbus.Event{Type: eventbus.TypeRunFinished, Data: sum})
		}
	}()

	users, err := d.st.ListUsersWithUnread(ctx)
	if err != nil {
		sum.Err = err.Error()
		log.Error("listing users with unread notifications failed", logx.Err(err))
		return sum
	}
	sum.Records = len(users)

	for _, user := range users {
		if ctx.Err() != nil {
			sum.Err = ctx.Err().Error()
			return sum
		}
		ulog := log.With(logx.String("user", user.ID))

		items, err := d.st.ListUnreadNotifications(ctx, user.ID)
		if err != nil {
			sum.Skipped++
			ulog.Warn("unread lookup failed", logx.Err(err))
			continue
		}
		if len(items) == 0 {
			sum.Skipped++
			continue
		}
		sum.Matched++

		if err := d.mail.SendDigest(ctx, user, items, cfg.MaxItems, now); err != nil {
			sum.Failed++
			ulog.Error("digest send failed", logx.Err(err), logx.Int("unread", len(items)))
			continue
		}
		sum.Sent++
		ulog.Debug("digest sent", logx.Int("unread", len(items)))
	}
	return sum
}

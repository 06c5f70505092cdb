package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"remindd/internal/config"
	"remindd/internal/eventbus"
	"remindd/internal/mailer"
	"remindd/internal/scan"
	"remindd/internal/schedule"
	"remindd/internal/store"
	logx "remindd/pkg/logx"
)

const (
	defaultScanSchedule   = "@every 15m"
	defaultDigestSchedule = "@daily"
)

// App wires config, logging, store, mailer and the two scheduled jobs.
type App struct {
	cfgm *config.Manager

	log  logx.Logger
	logs *logx.Service
	bus  eventbus.Bus
	st   store.Store

	mail    *mailer.Mailer
	scanner *scan.Scanner
	digest  *scan.Digest

	scanSpec   schedule.Spec
	digestSpec schedule.Spec

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	bus := eventbus.New()

	sc, err := mapStoreConfig(cfg)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(sc, log.With(logx.String("comp", "store")))
	if err != nil {
		return nil, err
	}
	if st == nil {
		// Both jobs read from the store; there is nothing to run without it.
		return nil, errors.New("storage.driver is required")
	}
	log.Info("store enabled", logx.String("driver", sc.Driver), logx.String("path", sc.Path))

	mcfg, err := mapMailerConfig(cfg)
	if err != nil {
		return nil, err
	}
	mail := mailer.New(mcfg, log.With(logx.String("comp", "mailer")))
	if !mail.Configured() {
		// Not fatal: matches are still computed and logged, nothing is sent.
		log.Error("mailer credentials missing; dispatch disabled for every match")
	}

	scanSpec, err := schedule.Parse(strOr(cfg.Scanner.Schedule, defaultScanSchedule))
	if err != nil {
		return nil, fmt.Errorf("scanner.schedule: %w", err)
	}
	digestSpec, err := schedule.Parse(strOr(cfg.Digest.Schedule, defaultDigestSchedule))
	if err != nil {
		return nil, fmt.Errorf("digest.schedule: %w", err)
	}

	scfg, err := mapScannerConfig(cfg, scanSpec)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfgm:       cfgm,
		log:        log,
		logs:       logSvc,
		bus:        bus,
		st:         st,
		mail:       mail,
		scanSpec:   scanSpec,
		digestSpec: digestSpec,
	}
	a.scanner = scan.NewScanner(scfg, st, mail, log.With(logx.String("comp", "scan")), bus)
	a.digest = scan.NewDigest(scan.DigestConfig{MaxItems: cfg.Digest.MaxItems}, st, mail,
		log.With(logx.String("comp", "digest")), bus)
	return a, nil
}

// Start registers the jobs on the cron runner and begins watching the config
// file. It is not blocking.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cron != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	cfg := a.cfgm.Get()

	c := cron.New(cron.WithParser(schedule.Parser))
	if cfg.Scanner.Enabled {
		if _, err := c.AddFunc(a.scanSpec.CronSpec(), func() { a.scanner.Run(runCtx) }); err != nil {
			cancel()
			return fmt.Errorf("register scan job: %w", err)
		}
		a.log.Info("scan job registered", logx.String("schedule", a.scanSpec.CronSpec()))
	} else {
		a.log.Warn("scanner disabled; no reminders will be sent")
	}
	if cfg.Digest.Enabled {
		if _, err := c.AddFunc(a.digestSpec.CronSpec(), func() { a.digest.Run(runCtx) }); err != nil {
			cancel()
			return fmt.Errorf("register digest job: %w", err)
		}
		a.log.Info("digest job registered", logx.String("schedule", a.digestSpec.CronSpec()))
	}
	c.Start()
	a.cron = c

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.recordAudits(runCtx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		_ = a.cfgm.Watch(runCtx)
	}()
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.watchReloads(runCtx)
	}()

	return nil
}

// RunOnce triggers a single named job immediately, outside the schedule.
func (a *App) RunOnce(ctx context.Context, job string) error {
	switch strings.ToLower(strings.TrimSpace(job)) {
	case "scan":
		a.scanner.Run(ctx)
		return nil
	case "digest":
		a.digest.Run(ctx)
		return nil
	default:
		return fmt.Errorf("unknown job %q (use scan or digest)", job)
	}
}

func (a *App) Stop(ctx context.Context) error {
	a.mu.Lock()
	c := a.cron
	a.cron = nil
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()

	if c != nil {
		// Let an in-flight run finish, bounded by ctx.
		select {
		case <-c.Stop().Done():
		case <-ctx.Done():
		}
	}
	if cancel != nil {
		cancel()
	}
	a.wg.Wait()

	if a.st != nil {
		_ = a.st.Close()
	}
	a.log.Info("stopped")
	_ = a.logs.Close()
	return nil
}

// watchReloads re-applies the hot-swappable knobs after a config reload.
// Schedule changes are the exception: the cron registration is fixed at
// Start, so those take effect on the next restart.
func (a *App) watchReloads(ctx context.Context) {
	sub := a.cfgm.Subscribe(1)
	defer a.cfgm.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-sub:
			if !ok || cfg == nil {
				return
			}
			a.applyConfig(cfg)
		}
	}
}

func (a *App) applyConfig(cfg *config.Config) {
	a.logs.Apply(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})

	if mcfg, err := mapMailerConfig(cfg); err != nil {
		a.log.Warn("mailer config not applied", logx.Err(err))
	} else {
		a.mail.Apply(mcfg)
	}

	if scfg, err := mapScannerConfig(cfg, a.scanSpec); err != nil {
		a.log.Warn("scanner config not applied", logx.Err(err))
	} else {
		a.scanner.Apply(scfg)
	}
	a.digest.Apply(scan.DigestConfig{MaxItems: cfg.Digest.MaxItems})

	if got, err := schedule.Parse(strOr(cfg.Scanner.Schedule, defaultScanSchedule)); err == nil && got != a.scanSpec {
		a.log.Warn("scanner.schedule changed; restart to apply")
	}
	a.log.Info("config applied")
}

// recordAudits persists one audit row per finished job run.
func (a *App) recordAudits(ctx context.Context) {
	if a.st == nil {
		return
	}
	events, unsub := a.bus.Subscribe(16)
	defer unsub()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Type != eventbus.TypeRunFinished {
				continue
			}
			sum, ok := ev.Data.(scan.Summary)
			if !ok {
				continue
			}
			actx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			err := a.st.AppendAudit(actx, store.AuditEntry{
				At:      sum.Started,
				Job:     sum.Job,
				RunID:   sum.RunID,
				Records: sum.Records,
				Matched: sum.Matched,
				Sent:    sum.Sent,
				Failed:  sum.Failed,
				Skipped: sum.Skipped,
				Error:   sum.Err,
				TookMS:  sum.Took.Milliseconds(),
			})
			cancel()
			if err != nil {
				a.log.Warn("audit append failed", logx.Err(err))
			}
		}
	}
}

func strOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

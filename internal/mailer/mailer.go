package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	logx "remindd/pkg/logx"
)

// ErrNotConfigured is returned (without issuing any request) when one of the
// provider credentials is missing. Callers log it and keep scanning.
var ErrNotConfigured = errors.New("mailer not configured")

const defaultEndpoint = "https://api.mailgun.net/v3"

// Config configures the outbound mail provider (Mailgun-compatible HTTP API).
type Config struct {
	Endpoint string
	Domain   string
	APIKey   string
	From     string

	BaseURL string

	// DisplayOffset is the fixed offset event times are rendered in.
	// There is no per-event timezone field, so this is a best-effort display
	// zone, not a correctness guarantee.
	DisplayOffset time.Duration

	RatePerSec int
	Timeout    time.Duration
}

// Message is one outbound plain-text email.
type Message struct {
	To      string
	Subject string
	Text    string
	Tag     string // optional provider-side tag
}

// Mailer sends messages through the provider's form-encoded messages API.
// Sends are rate-limited; a failed send is reported, never retried.
type Mailer struct {
	mu      sync.Mutex
	cfg     Config
	limiter *rate.Limiter

	client *http.Client
	log    logx.Logger
}

func New(cfg Config, log logx.Logger) *Mailer {
	if log.IsZero() {
		log = logx.Nop()
	}
	m := &Mailer{log: log}
	m.Apply(cfg)
	return m
}

// Apply swaps the provider config at runtime (config hot reload).
func (m *Mailer) Apply(cfg Config) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
	m.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)
	m.client = &http.Client{Timeout: cfg.Timeout}
}

func (m *Mailer) config() (Config, *rate.Limiter, *http.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg, m.limiter, m.client
}

// Configured reports whether all three provider values are present.
func (m *Mailer) Configured() bool {
	cfg, _, _ := m.config()
	return strings.TrimSpace(cfg.APIKey) != "" &&
		strings.TrimSpace(cfg.Domain) != "" &&
		strings.TrimSpace(cfg.From) != ""
}

// Send issues one POST to <endpoint>/<domain>/messages.
// Returns ErrNotConfigured without a request when credentials are missing,
// or an error for any transport failure or non-2xx status.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	cfg, limiter, client := m.config()

	if strings.TrimSpace(cfg.APIKey) == "" ||
		strings.TrimSpace(cfg.Domain) == "" ||
		strings.TrimSpace(cfg.From) == "" {
		return ErrNotConfigured
	}

	if err := limiter.Wait(ctx); err != nil {
		return err
	}

	form := url.Values{}
	form.Set("from", cfg.From)
	form.Add("to", msg.To)
	form.Set("subject", msg.Subject)
	form.Set("text", msg.Text)
	if msg.Tag != "" {
		form.Set("o:tag", msg.Tag)
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Domain + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", cfg.APIKey)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send to %s: %w", msg.To, err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("send to %s: provider returned %s", msg.To, resp.Status)
	}

	m.log.Debug("email sent", logx.String("to", msg.To), logx.String("subject", msg.Subject))
	return nil
}

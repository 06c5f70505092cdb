package mailer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	logx "remindd/pkg/logx"
)

func testConfig(endpoint string) Config {
	return Config{
		Endpoint:   endpoint,
		Domain:     "mg.example.com",
		APIKey:     "key-secret",
		From:       "CinemaPlot <noreply@mg.example.com>",
		BaseURL:    "https://cinemaplot.com",
		RatePerSec: 100,
		Timeout:    2 * time.Second,
	}
}

func TestSendPostsForm(t *testing.T) {
	var gotPath, gotUser, gotKey, gotTo, gotFrom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotKey, _ = r.BasicAuth()
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotTo = r.PostForm.Get("to")
		gotFrom = r.PostForm.Get("from")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := New(testConfig(srv.URL), logx.Nop())
	err := m.Send(context.Background(), Message{To: "user@example.com", Subject: "hi", Text: "body"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotPath != "/mg.example.com/messages" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotUser != "api" || gotKey != "key-secret" {
		t.Fatalf("basic auth = %q:%q", gotUser, gotKey)
	}
	if gotTo != "user@example.com" || gotFrom != "CinemaPlot <noreply@mg.example.com>" {
		t.Fatalf("to=%q from=%q", gotTo, gotFrom)
	}
}

func TestSendNon2xxFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	m := New(testConfig(srv.URL), logx.Nop())
	if err := m.Send(context.Background(), Message{To: "user@example.com"}); err == nil {
		t.Fatal("expected error on 401")
	}
}

func TestSendMissingCredentials(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	for _, strip := range []func(*Config){
		func(c *Config) { c.APIKey = "" },
		func(c *Config) { c.Domain = "" },
		func(c *Config) { c.From = "" },
	} {
		cfg := testConfig(srv.URL)
		strip(&cfg)
		m := New(cfg, logx.Nop())
		if m.Configured() {
			t.Fatal("mailer should report unconfigured")
		}
		err := m.Send(context.Background(), Message{To: "user@example.com"})
		if !errors.Is(err, ErrNotConfigured) {
			t.Fatalf("err = %v, want ErrNotConfigured", err)
		}
	}
	if hits.Load() != 0 {
		t.Fatalf("no request may be issued when unconfigured, got %d", hits.Load())
	}
}

func TestApplySwapsCredentials(t *testing.T) {
	m := New(Config{}, logx.Nop())
	if m.Configured() {
		t.Fatal("empty config must not be configured")
	}
	m.Apply(testConfig(""))
	if !m.Configured() {
		t.Fatal("Apply should enable the mailer")
	}
}

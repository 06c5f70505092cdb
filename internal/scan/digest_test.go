package scan

import (
	"context"
	"errors"
	"testing"
	"time"

	"remindd/internal/domain"
	logx "remindd/pkg/logx"
)

func seedUnread(st *fakeStore, userID, email string, n int) {
	st.users[userID] = domain.User{ID: userID, Email: email}
	items := make([]domain.Notification, n)
	for i := range items {
		items[i] = domain.Notification{ID: userID + "-n", UserID: userID, Title: "t", CreatedAt: time.Now()}
	}
	st.unread[userID] = items
}

func TestDigestSendsPerUser(t *testing.T) {
	st := newFakeStore()
	seedUnread(st, "u1", "u1@example.com", 3)
	seedUnread(st, "u2", "u2@example.com", 1)

	mail := &fakeMail{}
	d := NewDigest(DigestConfig{MaxItems: 5}, st, mail, logx.Nop(), nil)

	sum := d.Run(context.Background())
	if sum.Sent != 2 || sum.Failed != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	if len(mail.digests) != 2 {
		t.Fatalf("digests = %v", mail.digests)
	}
	if mail.maxItems != 5 {
		t.Fatalf("maxItems = %d, want 5", mail.maxItems)
	}
}

func TestDigestFailureIsolation(t *testing.T) {
	st := newFakeStore()
	seedUnread(st, "u1", "u1@example.com", 2)
	seedUnread(st, "u2", "u2@example.com", 2)

	mail := &fakeMail{errFor: map[string]error{"u1@example.com": errors.New("mailbox full")}}
	d := NewDigest(DigestConfig{}, st, mail, logx.Nop(), nil)

	sum := d.Run(context.Background())
	if sum.Failed != 1 || sum.Sent != 1 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestDigestDefaultMaxItems(t *testing.T) {
	st := newFakeStore()
	seedUnread(st, "u1", "u1@example.com", 1)

	mail := &fakeMail{}
	d := NewDigest(DigestConfig{}, st, mail, logx.Nop(), nil)
	d.Run(context.Background())
	if mail.maxItems != 10 {
		t.Fatalf("default maxItems = %d, want 10", mail.maxItems)
	}
}

func TestDigestStoreFailure(t *testing.T) {
	st := newFakeStore()
	st.listErr = errors.New("store offline")
	d := NewDigest(DigestConfig{}, st, &fakeMail{}, logx.Nop(), nil)

	sum := d.Run(context.Background())
	if sum.Err == "" || sum.Sent != 0 {
		t.Fatalf("summary = %+v", sum)
	}
}

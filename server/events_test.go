package server_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/credentix/credentix/email"
	"github.com/credentix/credentix/server"
)

// captureSender records delivered emails for assertions.
type captureSender struct {
	mu   sync.Mutex
	sent []email.EmailData
}

func (c *captureSender) SendEmail(ctx context.Context, data email.EmailData) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, data)
	return nil
}

func (c *captureSender) Health(ctx context.Context) error { return nil }

func (c *captureSender) ProviderType() email.ProviderType { return email.ProviderTypeNoOp }

func (c *captureSender) all() []email.EmailData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]email.EmailData(nil), c.sent...)
}

func TestNotifierDeliversLoginEvent(t *testing.T) {
	sender := &captureSender{}
	n := server.NewNotifier(sender)

	n.Emit(server.Event{
		Type:   server.EventLogin,
		UserID: "u1",
		Email:  "alice@example.com",
	})
	n.Close()

	sent := sender.all()
	if len(sent) != 1 {
		t.Fatalf("delivered %d emails, want 1", len(sent))
	}
	if sent[0].To != "alice@example.com" {
		t.Fatalf("to = %q", sent[0].To)
	}
	if !strings.Contains(sent[0].Subject, "sign-in") {
		t.Fatalf("subject = %q", sent[0].Subject)
	}
}

func TestNotifierDeliversTokenIssuedEvent(t *testing.T) {
	sender := &captureSender{}
	n := server.NewNotifier(sender)

	n.Emit(server.Event{
		Type:     server.EventTokenIssued,
		UserID:   "u1",
		Email:    "alice@example.com",
		ClientID: "c1",
	})
	n.Close()

	sent := sender.all()
	if len(sent) != 1 {
		t.Fatalf("delivered %d emails, want 1", len(sent))
	}
	if !strings.Contains(sent[0].TextBody, "c1") {
		t.Fatalf("body should name the client: %q", sent[0].TextBody)
	}
}

func TestNotifierClosesCleanlyWhenEmpty(t *testing.T) {
	n := server.NewNotifier(email.NewNoOpSender())
	n.Close()
}

package server

import (
	"context"
	"log"
	"time"

	"github.com/credentix/credentix/email"
	"github.com/credentix/credentix/geoip"
)

// EventType classifies notifier events.
type EventType string

const (
	EventLogin       EventType = "login"
	EventTokenIssued EventType = "token_issued"
)

// Event is a fire-and-forget notification emitted from the auth path.
type Event struct {
	Type     EventType
	UserID   string
	Email    string
	ClientID string
	IP       string
}

// Notifier delivers events to the email sender off the request path.
// Emission never blocks and delivery failures never fail the operation
// that produced the event.
type Notifier struct {
	sender email.Sender
	geo    *geoip.Client
	events chan Event
	done   chan struct{}
}

// NewNotifier starts the delivery goroutine.
func NewNotifier(sender email.Sender) *Notifier {
	n := &Notifier{
		sender: sender,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
	go n.run()
	return n
}

// SetGeoIP enables sign-in location lookup for login notifications.
// Lookups run on the delivery goroutine, never on the request path.
func (n *Notifier) SetGeoIP(g *geoip.Client) {
	n.geo = g
}

// Emit enqueues an event. A full buffer drops the event; delivery is
// best-effort.
func (n *Notifier) Emit(ev Event) {
	select {
	case n.events <- ev:
	default:
		log.Printf("notifier: buffer full, dropping %s event for user %s", ev.Type, ev.UserID)
	}
}

// Close stops the delivery goroutine after draining queued events.
func (n *Notifier) Close() {
	close(n.events)
	<-n.done
}

func (n *Notifier) run() {
	defer close(n.done)
	for ev := range n.events {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := n.deliver(ctx, ev)
		cancel()
		if err != nil {
			log.Printf("notifier: delivering %s event for user %s: %v", ev.Type, ev.UserID, err)
		}
	}
}

func (n *Notifier) deliver(ctx context.Context, ev Event) error {
	switch ev.Type {
	case EventLogin:
		where := ""
		if n.geo != nil && ev.IP != "" {
			if cc := n.geo.LookupCountry(ctx, ev.IP); cc != "" {
				where = " from " + cc
			}
		}
		return n.sender.SendEmail(ctx, email.EmailData{
			To:       ev.Email,
			Subject:  "New sign-in to your account",
			TextBody: "Your account was just used to sign in" + where + ". If this was not you, reset your password.",
		})
	case EventTokenIssued:
		return n.sender.SendEmail(ctx, email.EmailData{
			To:       ev.Email,
			Subject:  "Application access granted",
			TextBody: "An application (" + ev.ClientID + ") was granted access to your account.",
		})
	}
	return nil
}

package session

import (
	"context"
	"log"
	"time"
)

// EventType identifies a session or cart transition.
type EventType string

const (
	EventLogin       EventType = "session.login"
	EventLogout      EventType = "session.logout"
	EventCartUpdated EventType = "cart.updated"
)

// Event is emitted on session and cart transitions. It carries enough
// information for downstream consumers to log or trigger automation
// without calling back into the backend.
type Event struct {
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	ProductID string    `json:"product_id,omitempty"`
	CartCount int       `json:"cart_count"`
	At        time.Time `json:"at"`
}

// EventSink receives events. Publishing is best-effort: the manager
// logs sink errors and carries on.
type EventSink interface {
	Publish(ctx context.Context, ev Event) error
}

// LogSink writes events to the standard logger. It is the default sink
// when no broker is configured.
type LogSink struct{}

func (LogSink) Publish(_ context.Context, ev Event) error {
	log.Printf("session: event %s user=%s product=%s count=%d", ev.Type, ev.UserID, ev.ProductID, ev.CartCount)
	return nil
}

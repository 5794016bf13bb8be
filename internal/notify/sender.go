// Package notify delivers short operator messages to chat and mail services.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Sender delivers messages to an external service.
type Sender interface {
	// Name identifies the sender in logs and errors.
	Name() string
	// Send delivers a single message.
	Send(ctx context.Context, message string) error
}

// Notifier fans a message out to every configured sender.
type Notifier struct {
	senders []Sender
}

// NewNotifier returns a Notifier over senders. Nil senders are dropped.
func NewNotifier(senders ...Sender) *Notifier {
	n := &Notifier{}
	for _, s := range senders {
		if s != nil {
			n.senders = append(n.senders, s)
		}
	}
	return n
}

// Len reports how many senders are configured.
func (n *Notifier) Len() int {
	if n == nil {
		return 0
	}
	return len(n.senders)
}

// Notify sends message through every sender. A failing sender does not stop
// the rest; all failures are joined into the returned error.
func (n *Notifier) Notify(ctx context.Context, message string) error {
	if n == nil {
		return nil
	}
	var errs []error
	for _, s := range n.senders {
		if err := s.Send(ctx, message); err != nil {
			slog.Warn("notify: send failed", "sender", s.Name(), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

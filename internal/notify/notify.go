// Package notify sends fire-and-forget messages over SMS, email and WhatsApp.
package notify

import (
	"context"
	"errors"

	"nextmove-cargo/internal/logging"

	"golang.org/x/sync/errgroup"
)

// ErrNoRecipient is returned by a channel when the message has no address for it.
var ErrNoRecipient = errors.New("no recipient for channel")

// Message is one outbound notification; channels use the address they understand.
type Message struct {
	Phone   string
	Email   string
	Subject string
	Body    string
	HTML    string
}

// Channel delivers a message over one transport.
type Channel interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Dispatcher fans a message out to every channel concurrently.
// Failures are logged per channel and never retried.
type Dispatcher struct {
	channels []Channel
}

func NewDispatcher(channels ...Channel) *Dispatcher {
	return &Dispatcher{channels: channels}
}

// Send returns the number of channels that delivered the message.
func (d *Dispatcher) Send(ctx context.Context, msg Message) int {
	results := make([]bool, len(d.channels))

	var g errgroup.Group
	for i, ch := range d.channels {
		g.Go(func() error {
			if err := ch.Send(ctx, msg); err != nil {
				if !errors.Is(err, ErrNoRecipient) {
					logging.Warn("notification channel failed", map[string]interface{}{
						"channel": ch.Name(),
						"error":   err,
					})
				}
				return nil
			}
			results[i] = true
			return nil
		})
	}
	_ = g.Wait()

	sent := 0
	for _, ok := range results {
		if ok {
			sent++
		}
	}
	return sent
}

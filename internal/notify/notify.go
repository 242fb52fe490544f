// Package notify delivers outage and recovery messages to external
// channels. Senders are best-effort; the monitor never depends on a
// delivery succeeding.
package notify

import "context"

type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// Multi fans one message out to every configured sender and reports
// the first failure, if any.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, title, text string) error {
	var firstErr error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, title, text); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Package mail delivers outbound notification email. Delivery is
// fire-and-forget: failures are reported to the caller, never retried.
package mail

import "context"

// Sender dispatches a single plain-text message. An empty from address
// means the sender's configured default.
type Sender interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

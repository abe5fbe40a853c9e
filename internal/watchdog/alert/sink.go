// Package alert delivers finished alert messages to their destination.
package alert

import "context"

// Sink accepts one opaque, human-readable alert text per call. Retries are
// the sink's own concern; callers only log delivery failures.
type Sink interface {
	Send(ctx context.Context, text string) error
}

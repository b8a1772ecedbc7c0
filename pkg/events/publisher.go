package events

import "context"

// Publisher publishes replay events to an event stream backend.
type Publisher interface {
	Publish(ctx context.Context, event *ReplayEvent) error
	Close() error
}

package eventbus

import (
	"context"

	"github.com/amirasaad/atm/pkg/domain/events"
)

// HandlerFunc processes a single event.
type HandlerFunc func(ctx context.Context, event events.Event) error

// Bus publishes ledger events and dispatches them to registered handlers.
type Bus interface {
	Emit(ctx context.Context, event events.Event) error
	Register(eventType events.EventType, handler HandlerFunc)
}

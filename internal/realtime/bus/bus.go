package bus

import (
	"context"

	"github.com/yungbote/deskchat-backend/internal/realtime"
)

// Bus carries realtime messages between server instances. Every instance
// runs a forwarder that replays received messages into its local hub.
type Bus interface {
	Publish(ctx context.Context, msg realtime.Message) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error
	Close() error
}

// Emitter publishes through the bus. Local delivery happens in the
// forwarder, so each instance (this one included) delivers exactly once.
type Emitter struct {
	Bus      Bus
	Fallback realtime.Emitter
}

func (e *Emitter) Emit(ctx context.Context, msg realtime.Message) {
	if e == nil {
		return
	}
	if e.Bus != nil {
		if err := e.Bus.Publish(ctx, msg); err == nil {
			return
		}
	}
	if e.Fallback != nil {
		e.Fallback.Emit(ctx, msg)
	}
}

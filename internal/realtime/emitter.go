package realtime

import "context"

// Emitter publishes an outbound message. Implementations either deliver
// to the local hub or hand the message to a cross-instance bus.
type Emitter interface {
	Emit(ctx context.Context, msg Message)
}

type HubEmitter struct{ Hub *Hub }

func (e *HubEmitter) Emit(ctx context.Context, msg Message) {
	if e == nil || e.Hub == nil {
		return
	}
	e.Hub.Broadcast(msg)
}

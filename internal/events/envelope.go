package events

import "time"

// Domain event names. They double as AMQP routing keys.
const (
	ConversationCreated  = "conversation.created"
	ConversationAssigned = "conversation.assigned"
	ConversationClosed   = "conversation.closed"
	MessageCreated       = "message.created"
)

type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

type Meta struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Time          time.Time `json:"time"`
	Producer      string    `json:"producer,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

package chat

import (
	"time"

	"github.com/google/uuid"
)

// Message is append-only. Seq is unique per conversation and breaks ties
// between messages created within the same timestamp resolution.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_message_conversation_seq,priority:1" json:"conversation_id"`
	SenderID       uuid.UUID `gorm:"type:uuid;not null;index" json:"sender_id"`
	Seq            int64     `gorm:"not null;uniqueIndex:idx_message_conversation_seq,priority:2" json:"seq"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `gorm:"not null;index" json:"created_at"`
}

func (Message) TableName() string { return "message" }

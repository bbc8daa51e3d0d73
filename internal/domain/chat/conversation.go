package chat

import (
	"time"

	"github.com/google/uuid"
)

type ConversationStatus string

const (
	StatusPending ConversationStatus = "pending"
	StatusActive  ConversationStatus = "active"
	StatusClosed  ConversationStatus = "closed"
)

func ParseStatus(raw string) (ConversationStatus, bool) {
	switch s := ConversationStatus(raw); s {
	case StatusPending, StatusActive, StatusClosed:
		return s, true
	default:
		return "", false
	}
}

// Conversation is a support thread. Status only moves forward:
// pending -> active -> closed, or pending -> closed.
// AttendantID is nil while pending and set by exactly one assignment.
type Conversation struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Protocol  string     `gorm:"type:varchar(13);not null;uniqueIndex" json:"protocol"`
	ChannelID *uuid.UUID `gorm:"type:uuid;column:channel_id;index" json:"channel_id,omitempty"`

	ClientID    uuid.UUID  `gorm:"type:uuid;not null;index;column:client_id" json:"client_id"`
	AttendantID *uuid.UUID `gorm:"type:uuid;index;column:attendant_id" json:"attendant_id,omitempty"`

	Status ConversationStatus `gorm:"type:varchar(16);not null;index;column:status" json:"status"`

	// NextSeq is the last allocated message seq; bumped under a row lock.
	NextSeq int64 `gorm:"column:next_seq;not null;default:0" json:"-"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Conversation) TableName() string { return "conversation" }

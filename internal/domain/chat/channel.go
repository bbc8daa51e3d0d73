package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChannelKind string

const (
	ChannelWhatsApp ChannelKind = "whatsapp"
	ChannelTelegram ChannelKind = "telegram"
	ChannelEmail    ChannelKind = "email"
	ChannelWebchat  ChannelKind = "webchat"
	ChannelSMS      ChannelKind = "sms"
)

func (k ChannelKind) Valid() bool {
	switch k {
	case ChannelWhatsApp, ChannelTelegram, ChannelEmail, ChannelWebchat, ChannelSMS:
		return true
	}
	return false
}

type Channel struct {
	ID     uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name   string         `gorm:"not null;uniqueIndex" json:"name"`
	Kind   ChannelKind    `gorm:"type:varchar(16);not null" json:"kind"`
	Config datatypes.JSON `gorm:"type:jsonb;column:config" json:"config,omitempty"`
	Active bool           `gorm:"not null" json:"active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Channel) TableName() string { return "channel" }

package chat

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WebhookAllEvents subscribes a webhook to every domain event.
const WebhookAllEvents = "*"

type Webhook struct {
	ID     uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	URL    string         `gorm:"not null" json:"url"`
	Events datatypes.JSON `gorm:"type:jsonb;column:events" json:"events"`
	Active bool           `gorm:"not null;index" json:"active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Webhook) TableName() string { return "webhook" }

func (w *Webhook) EventNames() []string {
	if w == nil || len(w.Events) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(w.Events, &out); err != nil {
		return nil
	}
	return out
}

func (w *Webhook) Subscribes(event string) bool {
	for _, name := range w.EventNames() {
		if name == event || name == WebhookAllEvents {
			return true
		}
	}
	return false
}

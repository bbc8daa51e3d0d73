package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleClient    Role = "client"
	RoleAttendant Role = "attendant"
	RoleAdmin     Role = "admin"
)

func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleClient:
		return RoleClient, true
	case RoleAttendant:
		return RoleAttendant, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email    string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password string    `gorm:"not null;column:password" json:"-"`
	Name     string    `gorm:"not null;column:name" json:"name"`
	Role     Role      `gorm:"type:varchar(16);not null;index;column:role" json:"role"`

	PreferredChannelID *uuid.UUID `gorm:"type:uuid;column:preferred_channel_id" json:"preferred_channel_id,omitempty"`
	// ExternalIDs maps remote identifiers (e.g. {"whatsapp":"+55..."}) for channel bridges.
	ExternalIDs datatypes.JSON `gorm:"type:jsonb;column:external_ids" json:"external_ids,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "user" }

// Summary is the denormalized sender/participant view. It never carries email.
type Summary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func (u *User) Summary() *Summary {
	if u == nil {
		return nil
	}
	return &Summary{ID: u.ID, Name: u.Name}
}

// Principal is the identity decoded from a bearer token. It is trusted as-is
// by the realtime gateway and the REST middleware; no user lookup happens.
type Principal struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email,omitempty"`
	Role  Role      `json:"role"`
	Name  string    `json:"name,omitempty"`
}

func (p Principal) Valid() bool { return p.ID != uuid.Nil && p.Role.Valid() }

package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/deskchat-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, role types.Role, name string) *types.User {
	tb.Helper()
	now := time.Now().UTC()
	u := &types.User{
		ID:        uuid.New(),
		Email:     strings.ToLower(name) + "-" + uuid.NewString()[:8] + "@example.com",
		Password:  "pw",
		Name:      name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedConversation(tb testing.TB, ctx context.Context, tx *gorm.DB, clientID uuid.UUID, status types.ConversationStatus, attendantID *uuid.UUID) *types.Conversation {
	tb.Helper()
	now := time.Now().UTC()
	c := &types.Conversation{
		ID:          uuid.New(),
		Protocol:    strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:13],
		ClientID:    clientID,
		AttendantID: attendantID,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed conversation: %v", err)
	}
	return c
}

func SeedChannel(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, kind types.ChannelKind) *types.Channel {
	tb.Helper()
	now := time.Now().UTC()
	ch := &types.Channel{
		ID:        uuid.New(),
		Name:      name,
		Kind:      kind,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(ch).Error; err != nil {
		tb.Fatalf("seed channel: %v", err)
	}
	return ch
}

func UUIDPtr(id uuid.UUID) *uuid.UUID { return &id }

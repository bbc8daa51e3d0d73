package chat

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/platform/dbctx"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
)

type MessageRepo interface {
	Create(dbc dbctx.Context, rows []*types.Message) ([]*types.Message, error)
	// ListByConversation returns every message, oldest first.
	ListByConversation(dbc dbctx.Context, conversationID uuid.UUID) ([]*types.Message, error)
	// LatestByConversations returns the highest-seq message per conversation.
	LatestByConversations(dbc dbctx.Context, conversationIDs []uuid.UUID) (map[uuid.UUID]*types.Message, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, log *logger.Logger) MessageRepo {
	return &messageRepo{db: db, log: log.With("repo", "MessageRepo")}
}

func (r *messageRepo) Create(dbc dbctx.Context, rows []*types.Message) ([]*types.Message, error) {
	if len(rows) == 0 {
		return []*types.Message{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *messageRepo) ListByConversation(dbc dbctx.Context, conversationID uuid.UUID) ([]*types.Message, error) {
	if conversationID == uuid.Nil {
		return nil, fmt.Errorf("missing conversation_id")
	}
	var out []*types.Message
	if err := dbc.DB(r.db).
		Model(&types.Message{}).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Order("seq ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *messageRepo) LatestByConversations(dbc dbctx.Context, conversationIDs []uuid.UUID) (map[uuid.UUID]*types.Message, error) {
	out := make(map[uuid.UUID]*types.Message, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return out, nil
	}
	txx := dbc.DB(r.db)
	latest := txx.Session(&gorm.Session{NewDB: true}).
		Model(&types.Message{}).
		Select("conversation_id, MAX(seq) AS seq").
		Where("conversation_id IN ?", conversationIDs).
		Group("conversation_id")

	var rows []*types.Message
	if err := txx.
		Table("message AS m").
		Select("m.*").
		Joins("JOIN (?) AS latest ON latest.conversation_id = m.conversation_id AND latest.seq = m.seq", latest).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, m := range rows {
		if m != nil {
			out[m.ConversationID] = m
		}
	}
	return out, nil
}

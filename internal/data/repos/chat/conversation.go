package chat

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/platform/dbctx"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
)

// ConversationFilter is the SQL rendering of a visibility scope plus an
// optional status filter. Zero value matches every conversation. Results
// are never truncated.
type ConversationFilter struct {
	ClientID *uuid.UUID
	// PendingOrAttendantID matches status=pending OR attendant_id=<id>.
	PendingOrAttendantID *uuid.UUID
	Status               *types.ConversationStatus
}

type ConversationRepo interface {
	Create(dbc dbctx.Context, rows []*types.Conversation) ([]*types.Conversation, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error)
	ProtocolExists(dbc dbctx.Context, protocol string) (bool, error)
	List(dbc dbctx.Context, f ConversationFilter) ([]*types.Conversation, error)
	// MarkActive moves a pending conversation to active in one conditional
	// update. It reports false when the row was not pending (or is missing).
	MarkActive(dbc dbctx.Context, id uuid.UUID, attendantID uuid.UUID, at time.Time) (bool, error)
	// MarkClosed closes a non-closed conversation; false when already closed or missing.
	MarkClosed(dbc dbctx.Context, id uuid.UUID, at time.Time) (bool, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, log *logger.Logger) ConversationRepo {
	return &conversationRepo{db: db, log: log.With("repo", "ConversationRepo")}
}

func (r *conversationRepo) Create(dbc dbctx.Context, rows []*types.Conversation) ([]*types.Conversation, error) {
	if len(rows) == 0 {
		return []*types.Conversation{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByID returns (nil, nil) when the conversation does not exist.
func (r *conversationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	var out types.Conversation
	err := dbc.DB(r.db).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *conversationRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	if dbc.Tx == nil {
		return nil, fmt.Errorf("LockByID requires dbc.Tx")
	}
	var out types.Conversation
	err := dbc.Tx.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *conversationRepo) ProtocolExists(dbc dbctx.Context, protocol string) (bool, error) {
	var count int64
	if err := dbc.DB(r.db).
		Model(&types.Conversation{}).
		Where("protocol = ?", protocol).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *conversationRepo) List(dbc dbctx.Context, f ConversationFilter) ([]*types.Conversation, error) {
	q := dbc.DB(r.db).Model(&types.Conversation{})
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if f.PendingOrAttendantID != nil {
		q = q.Where("(status = ? OR attendant_id = ?)", types.StatusPending, *f.PendingOrAttendantID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	var out []*types.Conversation
	if err := q.Order("created_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conversationRepo) MarkActive(dbc dbctx.Context, id uuid.UUID, attendantID uuid.UUID, at time.Time) (bool, error) {
	if id == uuid.Nil || attendantID == uuid.Nil {
		return false, fmt.Errorf("missing id")
	}
	res := dbc.DB(r.db).
		Model(&types.Conversation{}).
		Where("id = ? AND status = ?", id, types.StatusPending).
		Updates(map[string]interface{}{
			"status":       types.StatusActive,
			"attendant_id": attendantID,
			"updated_at":   at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *conversationRepo) MarkClosed(dbc dbctx.Context, id uuid.UUID, at time.Time) (bool, error) {
	if id == uuid.Nil {
		return false, fmt.Errorf("missing id")
	}
	res := dbc.DB(r.db).
		Model(&types.Conversation{}).
		Where("id = ? AND status <> ?", id, types.StatusClosed).
		Updates(map[string]interface{}{
			"status":     types.StatusClosed,
			"updated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *conversationRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).
		Model(&types.Conversation{}).
		Where("id = ?", id).
		Updates(updates).Error
}

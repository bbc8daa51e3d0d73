package chat

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/platform/dbctx"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
)

type WebhookRepo interface {
	Create(dbc dbctx.Context, rows []*types.Webhook) ([]*types.Webhook, error)
	List(dbc dbctx.Context) ([]*types.Webhook, error)
	// ListActiveFor returns active webhooks subscribed to event (or "*").
	ListActiveFor(dbc dbctx.Context, event string) ([]*types.Webhook, error)
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type webhookRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWebhookRepo(db *gorm.DB, log *logger.Logger) WebhookRepo {
	return &webhookRepo{db: db, log: log.With("repo", "WebhookRepo")}
}

func (r *webhookRepo) Create(dbc dbctx.Context, rows []*types.Webhook) ([]*types.Webhook, error) {
	if len(rows) == 0 {
		return []*types.Webhook{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *webhookRepo) List(dbc dbctx.Context) ([]*types.Webhook, error) {
	var out []*types.Webhook
	if err := dbc.DB(r.db).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Event matching happens in Go; the jsonb operators differ between the
// Postgres and SQLite backends and the table stays small.
func (r *webhookRepo) ListActiveFor(dbc dbctx.Context, event string) ([]*types.Webhook, error) {
	var rows []*types.Webhook
	if err := dbc.DB(r.db).Where("active = ?", true).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*types.Webhook, 0, len(rows))
	for _, w := range rows {
		if w != nil && w.Subscribes(event) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *webhookRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, fmt.Errorf("missing id")
	}
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.Webhook{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

package chat

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/platform/dbctx"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
)

type ChannelRepo interface {
	Create(dbc dbctx.Context, rows []*types.Channel) ([]*types.Channel, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Channel, error)
	List(dbc dbctx.Context, activeOnly bool) ([]*types.Channel, error)
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type channelRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChannelRepo(db *gorm.DB, log *logger.Logger) ChannelRepo {
	return &channelRepo{db: db, log: log.With("repo", "ChannelRepo")}
}

func (r *channelRepo) Create(dbc dbctx.Context, rows []*types.Channel) ([]*types.Channel, error) {
	if len(rows) == 0 {
		return []*types.Channel{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *channelRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Channel, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	var out types.Channel
	err := dbc.DB(r.db).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *channelRepo) List(dbc dbctx.Context, activeOnly bool) ([]*types.Channel, error) {
	q := dbc.DB(r.db).Model(&types.Channel{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var out []*types.Channel
	if err := q.Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *channelRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, fmt.Errorf("missing id")
	}
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.Channel{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

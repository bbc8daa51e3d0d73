package services

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/deskchat-backend/internal/data/repos"
	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/platform/apierr"
	"github.com/yungbote/deskchat-backend/internal/platform/dbctx"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
)

type ChannelService interface {
	Create(dbc dbctx.Context, p types.Principal, name string, kind types.ChannelKind, config json.RawMessage, active *bool) (*types.Channel, error)
	List(dbc dbctx.Context, p types.Principal) ([]*types.Channel, error)
	Delete(dbc dbctx.Context, p types.Principal, id uuid.UUID) error
}

type channelService struct {
	log      *logger.Logger
	channels repos.ChannelRepo
}

func NewChannelService(log *logger.Logger, channels repos.ChannelRepo) ChannelService {
	return &channelService{log: log.With("service", "ChannelService"), channels: channels}
}

func (s *channelService) Create(dbc dbctx.Context, p types.Principal, name string, kind types.ChannelKind, config json.RawMessage, active *bool) (*types.Channel, error) {
	if p.Role != types.RoleAdmin {
		return nil, apierr.Forbidden("admin only")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.InvalidArgument("name is required")
	}
	kind = types.ChannelKind(strings.ToLower(strings.TrimSpace(string(kind))))
	if !kind.Valid() {
		return nil, apierr.InvalidArgument("unknown channel kind %q", kind)
	}
	if len(config) > 0 && !json.Valid(config) {
		return nil, apierr.InvalidArgument("config must be JSON")
	}

	now := time.Now().UTC()
	ch := &types.Channel{
		ID:        uuid.New(),
		Name:      name,
		Kind:      kind,
		Config:    datatypes.JSON(config),
		Active:    active == nil || *active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.channels.Create(dbc, []*types.Channel{ch}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierr.Conflict("channel %q already exists", name)
		}
		return nil, apierr.Internal(err)
	}
	return ch, nil
}

func (s *channelService) List(dbc dbctx.Context, p types.Principal) ([]*types.Channel, error) {
	if !p.Valid() {
		return nil, apierr.Unauthorized("not authenticated")
	}
	rows, err := s.channels.List(dbc, p.Role != types.RoleAdmin)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return rows, nil
}

func (s *channelService) Delete(dbc dbctx.Context, p types.Principal, id uuid.UUID) error {
	if p.Role != types.RoleAdmin {
		return apierr.Forbidden("admin only")
	}
	ok, err := s.channels.Delete(dbc, id)
	if err != nil {
		return apierr.Internal(err)
	}
	if !ok {
		return apierr.NotFound("channel not found")
	}
	return nil
}

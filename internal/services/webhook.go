package services

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/deskchat-backend/internal/data/repos"
	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/events"
	"github.com/yungbote/deskchat-backend/internal/platform/apierr"
	"github.com/yungbote/deskchat-backend/internal/platform/dbctx"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
)

var knownEvents = map[string]bool{
	events.ConversationCreated:  true,
	events.ConversationAssigned: true,
	events.ConversationClosed:   true,
	events.MessageCreated:       true,
	types.WebhookAllEvents:      true,
}

type WebhookService interface {
	Create(dbc dbctx.Context, p types.Principal, rawURL string, eventNames []string, active *bool) (*types.Webhook, error)
	List(dbc dbctx.Context, p types.Principal) ([]*types.Webhook, error)
	Delete(dbc dbctx.Context, p types.Principal, id uuid.UUID) error
}

type webhookService struct {
	log   *logger.Logger
	hooks repos.WebhookRepo
}

func NewWebhookService(log *logger.Logger, hooks repos.WebhookRepo) WebhookService {
	return &webhookService{log: log.With("service", "WebhookService"), hooks: hooks}
}

func (s *webhookService) Create(dbc dbctx.Context, p types.Principal, rawURL string, eventNames []string, active *bool) (*types.Webhook, error) {
	if p.Role != types.RoleAdmin {
		return nil, apierr.Forbidden("admin only")
	}
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apierr.InvalidArgument("url must be an absolute http(s) URL")
	}
	if len(eventNames) == 0 {
		eventNames = []string{types.WebhookAllEvents}
	}
	clean := make([]string, 0, len(eventNames))
	for _, name := range eventNames {
		name = strings.TrimSpace(name)
		if !knownEvents[name] {
			return nil, apierr.InvalidArgument("unknown event %q", name)
		}
		clean = append(clean, name)
	}
	raw, err := json.Marshal(clean)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	now := time.Now().UTC()
	w := &types.Webhook{
		ID:        uuid.New(),
		URL:       rawURL,
		Events:    datatypes.JSON(raw),
		Active:    active == nil || *active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.hooks.Create(dbc, []*types.Webhook{w}); err != nil {
		return nil, apierr.Internal(err)
	}
	s.log.Info("webhook registered", "webhook_id", w.ID, "events", clean)
	return w, nil
}

func (s *webhookService) List(dbc dbctx.Context, p types.Principal) ([]*types.Webhook, error) {
	if p.Role != types.RoleAdmin {
		return nil, apierr.Forbidden("admin only")
	}
	rows, err := s.hooks.List(dbc)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return rows, nil
}

func (s *webhookService) Delete(dbc dbctx.Context, p types.Principal, id uuid.UUID) error {
	if p.Role != types.RoleAdmin {
		return apierr.Forbidden("admin only")
	}
	ok, err := s.hooks.Delete(dbc, id)
	if err != nil {
		return apierr.Internal(err)
	}
	if !ok {
		return apierr.NotFound("webhook not found")
	}
	return nil
}

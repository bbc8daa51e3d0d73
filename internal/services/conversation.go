package services

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/deskchat-backend/internal/access"
	"github.com/yungbote/deskchat-backend/internal/data/repos"
	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/events"
	"github.com/yungbote/deskchat-backend/internal/platform/apierr"
	"github.com/yungbote/deskchat-backend/internal/platform/dbctx"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
)

const DefaultProtocolAttempts = 8

type ConversationService interface {
	Create(dbc dbctx.Context, p types.Principal, channelID *uuid.UUID, initialMessage string) (*ConversationView, error)
	Assign(dbc dbctx.Context, p types.Principal, conversationID uuid.UUID) (*ConversationView, error)
	Close(dbc dbctx.Context, p types.Principal, conversationID uuid.UUID) (*ConversationView, error)
	List(dbc dbctx.Context, p types.Principal, status *types.ConversationStatus) ([]*ConversationView, error)
	Get(dbc dbctx.Context, p types.Principal, conversationID uuid.UUID) (*ConversationDetail, error)
}

type ConversationServiceConfig struct {
	ProtocolAttempts int
	// Random feeds protocol generation; nil means crypto/rand.
	Random io.Reader
}

type conversationService struct {
	db       *gorm.DB
	log      *logger.Logger
	convs    repos.ConversationRepo
	messages repos.MessageRepo
	users    repos.UserRepo
	channels repos.ChannelRepo
	notify   ConversationNotifier
	events   events.Emitter
	cfg      ConversationServiceConfig
}

func NewConversationService(
	db *gorm.DB,
	log *logger.Logger,
	convs repos.ConversationRepo,
	messages repos.MessageRepo,
	users repos.UserRepo,
	channels repos.ChannelRepo,
	notify ConversationNotifier,
	emitter events.Emitter,
	cfg ConversationServiceConfig,
) ConversationService {
	if cfg.ProtocolAttempts <= 0 {
		cfg.ProtocolAttempts = DefaultProtocolAttempts
	}
	if notify == nil {
		notify = NewConversationNotifier(nil)
	}
	if emitter == nil {
		emitter = nopEmitter{}
	}
	return &conversationService{
		db:       db,
		log:      log.With("service", "ConversationService"),
		convs:    convs,
		messages: messages,
		users:    users,
		channels: channels,
		notify:   notify,
		events:   emitter,
		cfg:      cfg,
	}
}

func (s *conversationService) Create(dbc dbctx.Context, p types.Principal, channelID *uuid.UUID, initialMessage string) (*ConversationView, error) {
	if !p.Valid() {
		return nil, apierr.Unauthorized("not authenticated")
	}
	if !access.CanCreate(p) {
		return nil, apierr.Forbidden("only clients can open conversations")
	}
	if channelID != nil && *channelID == uuid.Nil {
		channelID = nil
	}
	if channelID != nil {
		ch, err := s.channels.GetByID(dbc, *channelID)
		if err != nil {
			return nil, apierr.Internal(err)
		}
		if ch == nil {
			return nil, apierr.NotFound("channel not found")
		}
	}

	var (
		conv  *types.Conversation
		first *types.Message
	)
	hasInitial := strings.TrimSpace(initialMessage) != ""

	for attempt := 1; attempt <= s.cfg.ProtocolAttempts; attempt++ {
		code, err := NewProtocolCode(s.cfg.Random)
		if err != nil {
			return nil, apierr.Internal(err)
		}
		taken, err := s.convs.ProtocolExists(dbc, code)
		if err != nil {
			return nil, apierr.Internal(err)
		}
		if taken {
			s.log.Debug("protocol collision", "attempt", attempt)
			continue
		}

		now := time.Now().UTC()
		candidate := &types.Conversation{
			ID:        uuid.New(),
			Protocol:  code,
			ChannelID: channelID,
			ClientID:  p.ID,
			Status:    types.StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		err = s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
			inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
			if _, err := s.convs.Create(inner, []*types.Conversation{candidate}); err != nil {
				return err
			}
			if !hasInitial {
				return nil
			}
			msg, err := insertMessage(inner, s.convs, s.messages, candidate, p.ID, initialMessage)
			first = msg
			return err
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost the race for this code between the check and the insert
			s.log.Debug("protocol collision on insert", "attempt", attempt)
			first = nil
			continue
		}
		if err != nil {
			s.log.Error("create conversation failed", "error", err)
			return nil, apierr.Internal(err)
		}
		conv = candidate
		break
	}
	if conv == nil {
		s.log.Warn("protocol attempts exhausted", "attempts", s.cfg.ProtocolAttempts)
		return nil, apierr.Conflict("could not allocate a unique protocol code")
	}

	view, err := s.view(dbc, conv)
	if err != nil {
		return nil, err
	}
	var mv *MessageView
	if first != nil {
		mv = &MessageView{Message: first, Sender: view.Client}
		view.LastMessage = mv
	}
	// view and mv are shared with async sinks from here on; no more writes.
	s.notify.ConversationCreated(dbc.Ctx, view)
	s.events.Emit(dbc.Ctx, events.ConversationCreated, view)
	if mv != nil {
		s.notify.MessageCreated(dbc.Ctx, mv)
		s.events.Emit(dbc.Ctx, events.MessageCreated, mv)
	}
	return view, nil
}

func (s *conversationService) Assign(dbc dbctx.Context, p types.Principal, conversationID uuid.UUID) (*ConversationView, error) {
	if !p.Valid() {
		return nil, apierr.Unauthorized("not authenticated")
	}
	if !access.CanAssign(p) {
		return nil, apierr.Forbidden("only attendants and admins can assign")
	}
	ok, err := s.convs.MarkActive(dbc, conversationID, p.ID, time.Now().UTC())
	if err != nil {
		return nil, apierr.Internal(err)
	}
	conv, err := s.convs.GetByID(dbc, conversationID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if conv == nil {
		return nil, apierr.NotFound("conversation not found")
	}
	if !ok {
		return nil, apierr.InvalidState("conversation is %s", conv.Status)
	}

	view, err := s.view(dbc, conv)
	if err != nil {
		return nil, err
	}
	s.notify.ConversationAssigned(dbc.Ctx, view)
	s.events.Emit(dbc.Ctx, events.ConversationAssigned, view)
	return view, nil
}

// Close is idempotent: closing a closed conversation returns it unchanged
// and emits nothing.
func (s *conversationService) Close(dbc dbctx.Context, p types.Principal, conversationID uuid.UUID) (*ConversationView, error) {
	if !p.Valid() {
		return nil, apierr.Unauthorized("not authenticated")
	}
	conv, err := s.convs.GetByID(dbc, conversationID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if conv == nil {
		return nil, apierr.NotFound("conversation not found")
	}
	if !access.CanClose(p, conv) {
		return nil, apierr.Forbidden("not allowed to close this conversation")
	}

	changed := false
	if conv.Status != types.StatusClosed {
		changed, err = s.convs.MarkClosed(dbc, conversationID, time.Now().UTC())
		if err != nil {
			return nil, apierr.Internal(err)
		}
		conv, err = s.convs.GetByID(dbc, conversationID)
		if err != nil {
			return nil, apierr.Internal(err)
		}
		if conv == nil {
			return nil, apierr.NotFound("conversation not found")
		}
	}

	view, err := s.view(dbc, conv)
	if err != nil {
		return nil, err
	}
	if changed {
		s.notify.ConversationClosed(dbc.Ctx, view)
		s.events.Emit(dbc.Ctx, events.ConversationClosed, view)
	}
	return view, nil
}

func (s *conversationService) List(dbc dbctx.Context, p types.Principal, status *types.ConversationStatus) ([]*ConversationView, error) {
	if !p.Valid() {
		return nil, apierr.Unauthorized("not authenticated")
	}
	filter, ok := access.ListFilter(p)
	if !ok {
		return nil, apierr.Forbidden("unknown role")
	}
	filter.Status = status

	rows, err := s.convs.List(dbc, filter)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if len(rows) == 0 {
		return []*ConversationView{}, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	userIDs := make([]uuid.UUID, 0, len(rows)*2)
	for _, c := range rows {
		ids = append(ids, c.ID)
		userIDs = append(userIDs, conversationUserIDs(c)...)
	}
	latest, err := s.messages.LatestByConversations(dbc, ids)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	for _, m := range latest {
		userIDs = append(userIDs, m.SenderID)
	}
	people, err := loadSummaries(dbc, s.users, userIDs)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	out := make([]*ConversationView, 0, len(rows))
	for _, c := range rows {
		v := newConversationView(c, people)
		if m := latest[c.ID]; m != nil {
			v.LastMessage = &MessageView{Message: m, Sender: people[m.SenderID]}
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *conversationService) Get(dbc dbctx.Context, p types.Principal, conversationID uuid.UUID) (*ConversationDetail, error) {
	if !p.Valid() {
		return nil, apierr.Unauthorized("not authenticated")
	}
	conv, err := s.convs.GetByID(dbc, conversationID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if conv == nil {
		return nil, apierr.NotFound("conversation not found")
	}
	if !access.CanView(p, conv) {
		return nil, apierr.Forbidden("not allowed to view this conversation")
	}
	view, err := s.view(dbc, conv)
	if err != nil {
		return nil, err
	}
	msgs, err := listMessageViews(dbc, s.messages, s.users, conversationID)
	if err != nil {
		return nil, err
	}
	if n := len(msgs); n > 0 {
		view.LastMessage = msgs[n-1]
	}
	return &ConversationDetail{ConversationView: view, Messages: msgs}, nil
}

func (s *conversationService) view(dbc dbctx.Context, conv *types.Conversation) (*ConversationView, error) {
	people, err := loadSummaries(dbc, s.users, conversationUserIDs(conv))
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return newConversationView(conv, people), nil
}

package services

import (
	"context"
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

// MessageService is the append-only message ledger.
type MessageService interface {
	Append(dbc dbctx.Context, p types.Principal, conversationID uuid.UUID, content string) (*MessageView, error)
	ListFor(dbc dbctx.Context, p types.Principal, conversationID uuid.UUID) ([]*MessageView, error)
}

type messageService struct {
	db       *gorm.DB
	log      *logger.Logger
	convs    repos.ConversationRepo
	messages repos.MessageRepo
	users    repos.UserRepo
	notify   ConversationNotifier
	events   events.Emitter
}

func NewMessageService(
	db *gorm.DB,
	log *logger.Logger,
	convs repos.ConversationRepo,
	messages repos.MessageRepo,
	users repos.UserRepo,
	notify ConversationNotifier,
	emitter events.Emitter,
) MessageService {
	if notify == nil {
		notify = NewConversationNotifier(nil)
	}
	if emitter == nil {
		emitter = nopEmitter{}
	}
	return &messageService{
		db:       db,
		log:      log.With("service", "MessageService"),
		convs:    convs,
		messages: messages,
		users:    users,
		notify:   notify,
		events:   emitter,
	}
}

func (s *messageService) Append(dbc dbctx.Context, p types.Principal, conversationID uuid.UUID, content string) (*MessageView, error) {
	if !p.Valid() {
		return nil, apierr.Unauthorized("not authenticated")
	}
	if conversationID == uuid.Nil {
		return nil, apierr.InvalidArgument("conversation id required")
	}
	conv, err := s.convs.GetByID(dbc, conversationID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if conv == nil {
		return nil, apierr.NotFound("conversation not found")
	}
	// stored as sent; whitespace-only counts as empty
	if strings.TrimSpace(content) == "" {
		return nil, apierr.InvalidContent("message content is empty")
	}
	if err := appendDecision(p, conv); err != nil {
		return nil, err
	}

	var msg *types.Message
	err = s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		locked, err := s.convs.LockByID(inner, conversationID)
		if err != nil {
			return err
		}
		if locked == nil {
			return apierr.NotFound("conversation not found")
		}
		// status may have moved since the unlocked read
		if err := appendDecision(p, locked); err != nil {
			return err
		}
		msg, err = insertMessage(inner, s.convs, s.messages, locked, p.ID, content)
		return err
	})
	if err != nil {
		if apierr.CodeOf(err) != "" {
			return nil, err
		}
		s.log.Error("append message failed", "conversation_id", conversationID, "error", err)
		return nil, apierr.Internal(err)
	}

	view := &MessageView{Message: msg, Sender: s.senderSummary(dbc, p)}
	s.notify.MessageCreated(dbc.Ctx, view)
	s.events.Emit(dbc.Ctx, events.MessageCreated, view)
	return view, nil
}

func appendDecision(p types.Principal, conv *types.Conversation) error {
	switch access.CanAppend(p, conv) {
	case access.Allowed:
		return nil
	case access.Blocked:
		return apierr.InvalidState("conversation is %s", conv.Status)
	default:
		return apierr.Forbidden("not allowed to write in this conversation")
	}
}

// insertMessage allocates the next seq of conv (which must be locked by
// dbc.Tx) and stores the message.
func insertMessage(dbc dbctx.Context, convs repos.ConversationRepo, messages repos.MessageRepo, conv *types.Conversation, senderID uuid.UUID, content string) (*types.Message, error) {
	now := time.Now().UTC()
	seq := conv.NextSeq + 1
	if err := convs.UpdateFields(dbc, conv.ID, map[string]interface{}{
		"next_seq":   seq,
		"updated_at": now,
	}); err != nil {
		return nil, err
	}
	conv.NextSeq = seq
	conv.UpdatedAt = now

	msg := &types.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       senderID,
		Seq:            seq,
		Content:        content,
		CreatedAt:      now,
	}
	if _, err := messages.Create(dbc, []*types.Message{msg}); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *messageService) senderSummary(dbc dbctx.Context, p types.Principal) *types.UserSummary {
	people, err := loadSummaries(dbctx.Context{Ctx: dbc.Ctx}, s.users, []uuid.UUID{p.ID})
	if err == nil && people[p.ID] != nil {
		return people[p.ID]
	}
	if err != nil {
		s.log.Warn("sender lookup failed", "user_id", p.ID, "error", err)
	}
	return &types.UserSummary{ID: p.ID, Name: p.Name}
}

func (s *messageService) ListFor(dbc dbctx.Context, p types.Principal, conversationID uuid.UUID) ([]*MessageView, error) {
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
	return listMessageViews(dbc, s.messages, s.users, conversationID)
}

func listMessageViews(dbc dbctx.Context, messages repos.MessageRepo, users repos.UserRepo, conversationID uuid.UUID) ([]*MessageView, error) {
	rows, err := messages.ListByConversation(dbc, conversationID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.SenderID)
	}
	people, err := loadSummaries(dbc, users, ids)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	out := make([]*MessageView, 0, len(rows))
	for _, m := range rows {
		out = append(out, &MessageView{Message: m, Sender: people[m.SenderID]})
	}
	return out, nil
}

// nopEmitter keeps services usable without a dispatcher.
type nopEmitter struct{}

func (nopEmitter) Emit(ctx context.Context, name string, payload any) {}

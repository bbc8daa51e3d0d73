package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/deskchat-backend/internal/data/repos"
	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/platform/dbctx"
)

type MessageView struct {
	*types.Message
	Sender *types.UserSummary `json:"sender,omitempty"`
}

type ConversationView struct {
	*types.Conversation
	Client      *types.UserSummary `json:"client,omitempty"`
	Attendant   *types.UserSummary `json:"attendant,omitempty"`
	LastMessage *MessageView       `json:"last_message,omitempty"`
}

type ConversationDetail struct {
	*ConversationView
	Messages []*MessageView `json:"messages"`
}

// MessagePayload is the realtime shape of a persisted message.
type MessagePayload struct {
	ID             uuid.UUID          `json:"id"`
	ConversationID uuid.UUID          `json:"conversationId"`
	Seq            int64              `json:"seq"`
	Content        string             `json:"content"`
	Sender         *types.UserSummary `json:"sender"`
	CreatedAt      time.Time          `json:"createdAt"`
}

func (v *MessageView) Payload() MessagePayload {
	return MessagePayload{
		ID:             v.ID,
		ConversationID: v.ConversationID,
		Seq:            v.Seq,
		Content:        v.Content,
		Sender:         v.Sender,
		CreatedAt:      v.CreatedAt,
	}
}

// loadSummaries resolves user ids to id+name summaries. Unknown ids are
// simply absent from the result.
func loadSummaries(dbc dbctx.Context, users repos.UserRepo, ids []uuid.UUID) (map[uuid.UUID]*types.UserSummary, error) {
	out := make(map[uuid.UUID]*types.UserSummary, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	uniq := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		uniq = append(uniq, id)
	}
	if len(uniq) == 0 {
		return out, nil
	}
	rows, err := users.GetByIDs(dbc, uniq)
	if err != nil {
		return nil, err
	}
	for _, u := range rows {
		if u != nil {
			out[u.ID] = u.Summary()
		}
	}
	return out, nil
}

func conversationUserIDs(c *types.Conversation) []uuid.UUID {
	ids := []uuid.UUID{c.ClientID}
	if c.AttendantID != nil {
		ids = append(ids, *c.AttendantID)
	}
	return ids
}

func newConversationView(c *types.Conversation, people map[uuid.UUID]*types.UserSummary) *ConversationView {
	v := &ConversationView{Conversation: c, Client: people[c.ClientID]}
	if c.AttendantID != nil {
		v.Attendant = people[*c.AttendantID]
	}
	return v
}

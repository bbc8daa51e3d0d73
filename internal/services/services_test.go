package services

import (
	"context"
	"sync"
	"testing"

	"github.com/yungbote/deskchat-backend/internal/data/repos"
	"github.com/yungbote/deskchat-backend/internal/data/repos/testutil"
	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/platform/dbctx"
	"github.com/yungbote/deskchat-backend/internal/realtime"
	"gorm.io/gorm"
)

type recordedEvent struct {
	name    string
	payload any
}

type recordingEvents struct {
	mu  sync.Mutex
	got []recordedEvent
}

func (r *recordingEvents) Emit(ctx context.Context, name string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, recordedEvent{name: name, payload: payload})
}

func (r *recordingEvents) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.got))
	for _, e := range r.got {
		out = append(out, e.name)
	}
	return out
}

func (r *recordingEvents) count(name string) int {
	n := 0
	for _, got := range r.names() {
		if got == name {
			n++
		}
	}
	return n
}

type fixture struct {
	db       *gorm.DB
	hub      *realtime.Hub
	events   *recordingEvents
	convs    ConversationService
	messages MessageService
	repos    struct {
		users    repos.UserRepo
		convs    repos.ConversationRepo
		messages repos.MessageRepo
		channels repos.ChannelRepo
	}
}

func newFixture(t *testing.T, cfg ConversationServiceConfig) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	f := &fixture{db: db, hub: realtime.NewHub(log), events: &recordingEvents{}}
	f.repos.users = repos.NewUserRepo(db, log)
	f.repos.convs = repos.NewConversationRepo(db, log)
	f.repos.messages = repos.NewMessageRepo(db, log)
	f.repos.channels = repos.NewChannelRepo(db, log)

	notify := NewConversationNotifier(&realtime.HubEmitter{Hub: f.hub})
	f.convs = NewConversationService(db, log, f.repos.convs, f.repos.messages, f.repos.users, f.repos.channels, notify, f.events, cfg)
	f.messages = NewMessageService(db, log, f.repos.convs, f.repos.messages, f.repos.users, notify, f.events)
	return f
}

func (f *fixture) principal(t *testing.T, role types.Role, name string) types.Principal {
	t.Helper()
	u := testutil.SeedUser(t, context.Background(), f.db, role, name)
	return types.Principal{ID: u.ID, Email: u.Email, Role: u.Role, Name: u.Name}
}

func bg() dbctx.Context { return dbctx.Context{Ctx: context.Background()} }

package chat

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/deskchat-backend/internal/data/repos/testutil"
	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/platform/dbctx"
)

func TestConversationRepoTransitions(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewConversationRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	client := testutil.SeedUser(t, ctx, db, types.RoleClient, "Caio")
	ana := testutil.SeedUser(t, ctx, db, types.RoleAttendant, "Ana")
	bia := testutil.SeedUser(t, ctx, db, types.RoleAttendant, "Bia")
	conv := testutil.SeedConversation(t, ctx, db, client.ID, types.StatusPending, nil)

	ok, err := repo.MarkActive(dbc, conv.ID, ana.ID, time.Now().UTC())
	if err != nil || !ok {
		t.Fatalf("MarkActive first: ok=%v err=%v", ok, err)
	}
	ok, err = repo.MarkActive(dbc, conv.ID, bia.ID, time.Now().UTC())
	if err != nil || ok {
		t.Fatalf("MarkActive second must not apply: ok=%v err=%v", ok, err)
	}

	got, err := repo.GetByID(dbc, conv.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != types.StatusActive || got.AttendantID == nil || *got.AttendantID != ana.ID {
		t.Fatalf("unexpected row after assign: %+v", got)
	}

	ok, err = repo.MarkClosed(dbc, conv.ID, time.Now().UTC())
	if err != nil || !ok {
		t.Fatalf("MarkClosed: ok=%v err=%v", ok, err)
	}
	ok, err = repo.MarkClosed(dbc, conv.ID, time.Now().UTC())
	if err != nil || ok {
		t.Fatalf("MarkClosed twice must be a no-op: ok=%v err=%v", ok, err)
	}

	missing, err := repo.GetByID(dbc, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("GetByID missing: got=%+v err=%v", missing, err)
	}
}

func TestConversationRepoListScopes(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewConversationRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	c1 := testutil.SeedUser(t, ctx, db, types.RoleClient, "C1")
	c2 := testutil.SeedUser(t, ctx, db, types.RoleClient, "C2")
	ana := testutil.SeedUser(t, ctx, db, types.RoleAttendant, "Ana")
	bia := testutil.SeedUser(t, ctx, db, types.RoleAttendant, "Bia")

	pending := testutil.SeedConversation(t, ctx, db, c1.ID, types.StatusPending, nil)
	mine := testutil.SeedConversation(t, ctx, db, c1.ID, types.StatusActive, testutil.UUIDPtr(ana.ID))
	theirs := testutil.SeedConversation(t, ctx, db, c2.ID, types.StatusActive, testutil.UUIDPtr(bia.ID))

	all, err := repo.List(dbc, ConversationFilter{})
	if err != nil || len(all) != 3 {
		t.Fatalf("List all: n=%d err=%v", len(all), err)
	}

	byClient, err := repo.List(dbc, ConversationFilter{ClientID: &c1.ID})
	if err != nil || len(byClient) != 2 {
		t.Fatalf("List client: n=%d err=%v", len(byClient), err)
	}

	forAna, err := repo.List(dbc, ConversationFilter{PendingOrAttendantID: &ana.ID})
	if err != nil {
		t.Fatalf("List attendant: %v", err)
	}
	seen := map[uuid.UUID]bool{}
	for _, c := range forAna {
		seen[c.ID] = true
	}
	if len(forAna) != 2 || !seen[pending.ID] || !seen[mine.ID] || seen[theirs.ID] {
		t.Fatalf("attendant scope wrong: %+v", forAna)
	}

	status := types.StatusPending
	onlyPending, err := repo.List(dbc, ConversationFilter{PendingOrAttendantID: &ana.ID, Status: &status})
	if err != nil || len(onlyPending) != 1 || onlyPending[0].ID != pending.ID {
		t.Fatalf("status filter: n=%d err=%v", len(onlyPending), err)
	}

	exists, err := repo.ProtocolExists(dbc, pending.Protocol)
	if err != nil || !exists {
		t.Fatalf("ProtocolExists: exists=%v err=%v", exists, err)
	}
}

func TestConversationRepoListReturnsEveryRow(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewConversationRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	client := testutil.SeedUser(t, ctx, db, types.RoleClient, "Caio")
	const n = 260
	for i := 0; i < n; i++ {
		testutil.SeedConversation(t, ctx, db, client.ID, types.StatusPending, nil)
	}

	all, err := repo.List(dbc, ConversationFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != n {
		t.Fatalf("admin scope must see every conversation: want %d got %d", n, len(all))
	}
	mine, err := repo.List(dbc, ConversationFilter{ClientID: &client.ID})
	if err != nil || len(mine) != n {
		t.Fatalf("client scope: n=%d err=%v", len(mine), err)
	}
}

func TestConversationRepoLockRequiresTx(t *testing.T) {
	db := testutil.DB(t)
	repo := NewConversationRepo(db, testutil.Logger(t))
	if _, err := repo.LockByID(dbctx.Context{Ctx: context.Background()}, uuid.New()); err == nil {
		t.Fatalf("expected error without tx")
	}
}

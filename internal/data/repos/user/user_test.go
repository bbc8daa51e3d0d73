package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/deskchat-backend/internal/data/repos/testutil"
	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}
	now := time.Now().UTC()

	created, err := repo.Create(dbc, []*types.User{
		{ID: uuid.New(), Email: "ana@example.com", Password: "pw", Name: "Ana", Role: types.RoleAttendant, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), Email: "caio@example.com", Password: "pw", Name: "Caio", Role: types.RoleClient, CreatedAt: now, UpdatedAt: now},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("Create: expected 2 users, got %d", len(created))
	}

	got, err := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID})
	if err != nil || len(got) != 1 || got[0].ID != created[0].ID {
		t.Fatalf("GetByIDs: err=%v got=%+v", err, got)
	}

	byEmail, err := repo.GetByEmail(dbc, "  ANA@example.com ")
	if err != nil || byEmail == nil || byEmail.ID != created[0].ID {
		t.Fatalf("GetByEmail: err=%v got=%+v", err, byEmail)
	}
	missing, err := repo.GetByEmail(dbc, "nobody@example.com")
	if err != nil || missing != nil {
		t.Fatalf("GetByEmail missing: err=%v got=%+v", err, missing)
	}

	exists, err := repo.EmailExists(dbc, "caio@example.com")
	if err != nil || !exists {
		t.Fatalf("EmailExists: err=%v exists=%v", err, exists)
	}

	attendants, err := repo.ListByRole(dbc, types.RoleAttendant, 10)
	if err != nil || len(attendants) != 1 || attendants[0].Name != "Ana" {
		t.Fatalf("ListByRole: err=%v got=%+v", err, attendants)
	}

	_, err = repo.Create(dbc, []*types.User{{ID: uuid.New(), Email: "ana@example.com", Password: "pw", Name: "Dup", Role: types.RoleClient, CreatedAt: now, UpdatedAt: now}})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("Create duplicate email: want ErrDuplicatedKey, got %v", err)
	}
}

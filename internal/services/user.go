package services

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/deskchat-backend/internal/data/repos"
	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/platform/apierr"
	"github.com/yungbote/deskchat-backend/internal/platform/dbctx"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
)

const minPasswordLength = 6

type NewUserInput struct {
	Email              string
	Password           string
	Name               string
	Role               types.Role
	PreferredChannelID *uuid.UUID
}

type UserService interface {
	GetMe(dbc dbctx.Context, p types.Principal) (*types.User, error)
	Create(dbc dbctx.Context, p types.Principal, in NewUserInput) (*types.User, error)
	List(dbc dbctx.Context, p types.Principal, role types.Role) ([]*types.User, error)
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
	users    *userCreator
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{
		log:      serviceLog,
		userRepo: userRepo,
		users:    &userCreator{log: serviceLog, userRepo: userRepo},
	}
}

func (us *userService) GetMe(dbc dbctx.Context, p types.Principal) (*types.User, error) {
	if !p.Valid() {
		return nil, apierr.Unauthorized("not authenticated")
	}
	rows, err := us.userRepo.GetByIDs(dbc, []uuid.UUID{p.ID})
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if len(rows) == 0 {
		return nil, apierr.NotFound("user not found")
	}
	return rows[0], nil
}

func (us *userService) Create(dbc dbctx.Context, p types.Principal, in NewUserInput) (*types.User, error) {
	if p.Role != types.RoleAdmin {
		return nil, apierr.Forbidden("admin only")
	}
	if in.Role == "" {
		in.Role = types.RoleAttendant
	}
	return us.users.create(dbc, in)
}

func (us *userService) List(dbc dbctx.Context, p types.Principal, role types.Role) ([]*types.User, error) {
	if p.Role != types.RoleAdmin {
		return nil, apierr.Forbidden("admin only")
	}
	if role != "" && !role.Valid() {
		return nil, apierr.InvalidArgument("unknown role %q", role)
	}
	rows, err := us.userRepo.ListByRole(dbc, role, 0)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return rows, nil
}

// userCreator validates, hashes and stores a new user. Shared by
// self-registration and admin creation.
type userCreator struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func (uc *userCreator) create(dbc dbctx.Context, in NewUserInput) (*types.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, apierr.InvalidArgument("invalid email")
	}
	if name == "" {
		return nil, apierr.InvalidArgument("name is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apierr.InvalidArgument("password must have at least %d characters", minPasswordLength)
	}
	if !in.Role.Valid() {
		return nil, apierr.InvalidArgument("invalid role")
	}

	exists, err := uc.userRepo.EmailExists(dbc, email)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if exists {
		return nil, apierr.Conflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	now := time.Now().UTC()
	u := &types.User{
		ID:                 uuid.New(),
		Email:              email,
		Password:           string(hash),
		Name:               name,
		Role:               in.Role,
		PreferredChannelID: in.PreferredChannelID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if _, err := uc.userRepo.Create(dbc, []*types.User{u}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierr.Conflict("email already registered")
		}
		return nil, apierr.Internal(err)
	}
	uc.log.Info("user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/deskchat-backend/internal/data/repos"
	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/platform/apierr"
	"github.com/yungbote/deskchat-backend/internal/platform/ctxutil"
	"github.com/yungbote/deskchat-backend/internal/platform/dbctx"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
)

const tokenIssuer = "deskchat"

type AuthService interface {
	Register(dbc dbctx.Context, in NewUserInput) (*types.User, string, error)
	Login(dbc dbctx.Context, email, password string) (*types.User, string, error)
	IssueToken(u *types.User) (string, error)
	// VerifyToken decodes the token's claims. It never reads the database.
	VerifyToken(token string) (types.Principal, error)
	SetContextFromToken(ctx context.Context, token string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authClaims struct {
	Email string     `json:"email,omitempty"`
	Role  types.Role `json:"role"`
	Name  string     `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type authService struct {
	log          *logger.Logger
	userRepo     repos.UserRepo
	users        *userCreator
	jwtSecretKey []byte
	accessTTL    time.Duration
}

func NewAuthService(log *logger.Logger, userRepo repos.UserRepo, jwtSecretKey string, accessTTL time.Duration) AuthService {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	serviceLog := log.With("service", "AuthService")
	return &authService{
		log:          serviceLog,
		userRepo:     userRepo,
		users:        &userCreator{log: serviceLog, userRepo: userRepo},
		jwtSecretKey: []byte(jwtSecretKey),
		accessTTL:    accessTTL,
	}
}

func (as *authService) GetAccessTTL() time.Duration { return as.accessTTL }

// Register always creates a client; other roles come from admins.
func (as *authService) Register(dbc dbctx.Context, in NewUserInput) (*types.User, string, error) {
	in.Role = types.RoleClient
	u, err := as.users.create(dbc, in)
	if err != nil {
		return nil, "", err
	}
	tok, err := as.IssueToken(u)
	if err != nil {
		return nil, "", apierr.Internal(err)
	}
	return u, tok, nil
}

func (as *authService) Login(dbc dbctx.Context, email, password string) (*types.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", apierr.InvalidArgument("email and password are required")
	}
	u, err := as.userRepo.GetByEmail(dbc, email)
	if err != nil {
		return nil, "", apierr.Internal(err)
	}
	if u == nil {
		return nil, "", apierr.Unauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, "", apierr.Unauthorized("invalid credentials")
	}
	tok, err := as.IssueToken(u)
	if err != nil {
		return nil, "", apierr.Internal(err)
	}
	as.log.Info("user logged in", "user_id", u.ID)
	return u, tok, nil
}

func (as *authService) IssueToken(u *types.User) (string, error) {
	if u == nil || u.ID == uuid.Nil {
		return "", fmt.Errorf("missing user")
	}
	if len(as.jwtSecretKey) == 0 {
		return "", fmt.Errorf("jwt secret not configured")
	}
	now := time.Now()
	claims := authClaims{
		Email: u.Email,
		Role:  u.Role,
		Name:  u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.jwtSecretKey)
}

func (as *authService) VerifyToken(token string) (types.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return types.Principal{}, apierr.Unauthorized("missing token")
	}
	var claims authClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return as.jwtSecretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return types.Principal{}, apierr.Unauthorized("token expired")
		}
		return types.Principal{}, apierr.Unauthorized("invalid token")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return types.Principal{}, apierr.Unauthorized("invalid token subject")
	}
	p := types.Principal{ID: id, Email: claims.Email, Role: claims.Role, Name: claims.Name}
	if !p.Valid() {
		return types.Principal{}, apierr.Unauthorized("invalid token claims")
	}
	return p, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	p, err := as.VerifyToken(token)
	if err != nil {
		return ctx, err
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{TokenString: token, Principal: p}), nil
}

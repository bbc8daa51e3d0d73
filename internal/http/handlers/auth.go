package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/http/response"
	"github.com/yungbote/deskchat-backend/internal/platform/apierr"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
	"github.com/yungbote/deskchat-backend/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
	userService services.UserService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService, userService services.UserService) *AuthHandler {
	return &AuthHandler{
		log:         log.With("handler", "AuthHandler"),
		authService: authService,
		userService: userService,
	}
}

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int         `json:"expires_in"`
	User        *types.User `json:"user"`
}

// POST /api/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, ah.log, apierr.InvalidArgument("invalid request body"))
		return
	}
	u, token, err := ah.authService.Register(dbcFrom(c), services.NewUserInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		response.RespondErr(c, ah.log, err)
		return
	}
	response.RespondCreated(c, ah.tokenResponse(u, token))
}

// POST /api/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, ah.log, apierr.InvalidArgument("invalid request body"))
		return
	}
	u, token, err := ah.authService.Login(dbcFrom(c), req.Email, req.Password)
	if err != nil {
		response.RespondErr(c, ah.log, err)
		return
	}
	response.RespondOK(c, ah.tokenResponse(u, token))
}

// GET /api/me
func (ah *AuthHandler) Me(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.RespondErr(c, ah.log, err)
		return
	}
	me, err := ah.userService.GetMe(dbcFrom(c), p)
	if err != nil {
		response.RespondErr(c, ah.log, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

func (ah *AuthHandler) tokenResponse(u *types.User, token string) tokenResponse {
	return tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(ah.authService.GetAccessTTL().Seconds()),
		User:        u,
	}
}

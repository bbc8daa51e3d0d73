package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/http/response"
	"github.com/yungbote/deskchat-backend/internal/platform/apierr"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
	"github.com/yungbote/deskchat-backend/internal/services"
)

type UserHandler struct {
	log         *logger.Logger
	userService services.UserService
}

func NewUserHandler(log *logger.Logger, userService services.UserService) *UserHandler {
	return &UserHandler{log: log.With("handler", "UserHandler"), userService: userService}
}

// POST /api/users
// body: { "email", "password", "name", "role", "preferredChannelId" }
func (uh *UserHandler) Create(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.RespondErr(c, uh.log, err)
		return
	}
	var req struct {
		Email              string     `json:"email"`
		Password           string     `json:"password"`
		Name               string     `json:"name"`
		Role               string     `json:"role"`
		PreferredChannelID *uuid.UUID `json:"preferredChannelId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, uh.log, apierr.InvalidArgument("invalid request body"))
		return
	}
	var role types.Role
	if req.Role != "" {
		parsed, ok := types.ParseRole(req.Role)
		if !ok {
			response.RespondErr(c, uh.log, apierr.InvalidArgument("unknown role %q", req.Role))
			return
		}
		role = parsed
	}
	u, err := uh.userService.Create(dbcFrom(c), p, services.NewUserInput{
		Email:              req.Email,
		Password:           req.Password,
		Name:               req.Name,
		Role:               role,
		PreferredChannelID: req.PreferredChannelID,
	})
	if err != nil {
		response.RespondErr(c, uh.log, err)
		return
	}
	response.RespondCreated(c, u)
}

// GET /api/users?role=attendant
func (uh *UserHandler) List(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.RespondErr(c, uh.log, err)
		return
	}
	users, err := uh.userService.List(dbcFrom(c), p, types.Role(c.Query("role")))
	if err != nil {
		response.RespondErr(c, uh.log, err)
		return
	}
	response.RespondOK(c, gin.H{"users": users})
}

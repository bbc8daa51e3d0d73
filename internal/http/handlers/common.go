package handlers

import (
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/platform/apierr"
	"github.com/yungbote/deskchat-backend/internal/platform/ctxutil"
	"github.com/yungbote/deskchat-backend/internal/platform/dbctx"
)

func principal(c *gin.Context) (types.Principal, error) {
	p, ok := ctxutil.Principal(c.Request.Context())
	if !ok {
		return types.Principal{}, apierr.Unauthorized("not authenticated")
	}
	return p, nil
}

func dbcFrom(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apierr.InvalidArgument("invalid %s", name)
	}
	return id, nil
}

// bindJSON treats an empty body as an empty object.
func bindJSON(c *gin.Context, dst any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apierr.InvalidArgument("invalid request body")
	}
	return nil
}

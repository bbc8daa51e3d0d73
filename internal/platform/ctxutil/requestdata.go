package ctxutil

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/deskchat-backend/internal/domain/user"
)

type requestDataKey struct{}

// RequestData is attached by the auth middleware once a bearer token decodes.
type RequestData struct {
	TokenString string
	Principal   user.Principal
}

func (rd *RequestData) UserID() uuid.UUID {
	if rd == nil {
		return uuid.Nil
	}
	return rd.Principal.ID
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// Principal returns the authenticated principal, if any.
func Principal(ctx context.Context) (user.Principal, bool) {
	rd := GetRequestData(ctx)
	if rd == nil || !rd.Principal.Valid() {
		return user.Principal{}, false
	}
	return rd.Principal, true
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

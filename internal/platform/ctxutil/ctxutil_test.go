package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/deskchat-backend/internal/domain/user"
)

func TestPrincipalRequiresValidRequestData(t *testing.T) {
	if _, ok := Principal(context.Background()); ok {
		t.Fatalf("expected no principal on bare context")
	}

	bad := WithRequestData(context.Background(), &RequestData{Principal: user.Principal{ID: uuid.New(), Role: "guest"}})
	if _, ok := Principal(bad); ok {
		t.Fatalf("expected invalid role to be rejected")
	}

	id := uuid.New()
	ctx := WithRequestData(context.Background(), &RequestData{
		TokenString: "tok",
		Principal:   user.Principal{ID: id, Role: user.RoleAttendant, Name: "Ana"},
	})
	p, ok := Principal(ctx)
	if !ok || p.ID != id || p.Role != user.RoleAttendant {
		t.Fatalf("unexpected principal: %+v ok=%v", p, ok)
	}
	if GetRequestData(ctx).UserID() != id {
		t.Fatalf("UserID mismatch")
	}
}

func TestCorrelationIDPrefersRequestID(t *testing.T) {
	ctx := WithTraceData(context.Background(), &TraceData{TraceID: "trace", RequestID: "req"})
	if got := CorrelationID(ctx); got != "req" {
		t.Fatalf("want=req got=%q", got)
	}
	ctx = WithTraceData(context.Background(), &TraceData{TraceID: "trace"})
	if got := CorrelationID(ctx); got != "trace" {
		t.Fatalf("want=trace got=%q", got)
	}
	if CorrelationID(context.Background()) != "" {
		t.Fatalf("expected empty correlation id")
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/deskchat-backend/internal/platform/ctxutil"
)

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen *ctxutil.TraceData
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name      string
		requestID string
		traceID   string
		keepReq   bool
		keepTrace bool
	}{
		{"propagates client ids", "req-123", "abc123", true, true},
		{"generates when missing", "", "", false, false},
		{"drops unsafe ids", "bad id\n", strings.Repeat("a", maxIDLength+1), false, false},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if tc.requestID != "" {
			req.Header.Set(headerRequestID, tc.requestID)
		}
		if tc.traceID != "" {
			req.Header.Set(headerTraceID, tc.traceID)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if seen == nil || seen.RequestID == "" || seen.TraceID == "" {
			t.Fatalf("%s: trace data missing: %+v", tc.name, seen)
		}
		if got := rec.Header().Get(headerRequestID); got != seen.RequestID {
			t.Fatalf("%s: response request id %q != context %q", tc.name, got, seen.RequestID)
		}
		if (seen.RequestID == tc.requestID) != tc.keepReq {
			t.Fatalf("%s: request id %q keep=%v", tc.name, seen.RequestID, tc.keepReq)
		}
		if (seen.TraceID == tc.traceID) != tc.keepTrace {
			t.Fatalf("%s: trace id %q keep=%v", tc.name, seen.TraceID, tc.keepTrace)
		}
	}
}

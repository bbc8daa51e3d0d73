package events

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/platform/dbctx"
)

type staticHooks []*types.Webhook

func (s staticHooks) ListActiveFor(dbc dbctx.Context, event string) ([]*types.Webhook, error) {
	var out []*types.Webhook
	for _, w := range s {
		if w.Active && w.Subscribes(event) {
			out = append(out, w)
		}
	}
	return out, nil
}

func TestWebhookSinkPostsEnvelope(t *testing.T) {
	var hits atomic.Int32
	var gotType atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		var env Envelope
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotType.Store(env.Meta.Type)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	hooks := staticHooks{
		{ID: uuid.New(), URL: srv.URL, Events: datatypes.JSON(`["message.created"]`), Active: true},
		{ID: uuid.New(), URL: srv.URL, Events: datatypes.JSON(`["conversation.closed"]`), Active: true},
		{ID: uuid.New(), URL: srv.URL, Events: datatypes.JSON(`["*"]`), Active: false},
	}
	sink := NewWebhookSink(testLogger(t), hooks, time.Second)

	env := Envelope{Meta: Meta{ID: uuid.NewString(), Type: MessageCreated, Time: time.Now().UTC()}, Data: map[string]any{"content": "hi"}}
	if err := sink.Send(context.Background(), env); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected exactly one delivery, got %d", hits.Load())
	}
	if gotType.Load() != MessageCreated {
		t.Fatalf("wrong event type delivered: %v", gotType.Load())
	}

	broken := NewWebhookSink(testLogger(t), staticHooks{
		{ID: uuid.New(), URL: failing.URL, Events: datatypes.JSON(`["*"]`), Active: true},
	}, time.Second)
	if err := broken.Send(context.Background(), env); err == nil {
		t.Fatalf("expected error from non-2xx webhook")
	}
}

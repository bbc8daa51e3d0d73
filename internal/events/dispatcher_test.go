package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/deskchat-backend/internal/platform/ctxutil"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
)

type recordingSink struct {
	mu   sync.Mutex
	name string
	err  error
	got  []Envelope
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Send(ctx context.Context, env Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, env)
	return s.err
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestDispatcherFansOutAndSwallowsErrors(t *testing.T) {
	failing := &recordingSink{name: "broken", err: errors.New("boom")}
	ok := &recordingSink{name: "ok"}
	d := NewDispatcher(testLogger(t), "deskchat", time.Second, failing, nil, ok)

	ctx := ctxutil.WithTraceData(context.Background(), &ctxutil.TraceData{RequestID: "req-1"})
	d.Emit(ctx, ConversationCreated, map[string]any{"id": "c1"})
	d.Wait()

	if len(failing.got) != 1 || len(ok.got) != 1 {
		t.Fatalf("each sink should see the event once: failing=%d ok=%d", len(failing.got), len(ok.got))
	}
	env := ok.got[0]
	if env.Meta.Type != ConversationCreated || env.Meta.Producer != "deskchat" {
		t.Fatalf("unexpected meta: %+v", env.Meta)
	}
	if env.Meta.ID == "" || env.Meta.Time.IsZero() {
		t.Fatalf("meta id/time must be set: %+v", env.Meta)
	}
	if env.Meta.CorrelationID != "req-1" {
		t.Fatalf("correlation id: want req-1 got %q", env.Meta.CorrelationID)
	}
}

func TestDispatcherOutlivesRequestContext(t *testing.T) {
	sink := &recordingSink{name: "ok"}
	d := NewDispatcher(testLogger(t), "", time.Second, sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Emit(ctx, MessageCreated, nil)
	d.Wait()

	if len(sink.got) != 1 {
		t.Fatalf("event should be delivered after the request is gone")
	}
	if sink.got[0].Meta.CorrelationID != sink.got[0].Meta.ID {
		t.Fatalf("correlation id should fall back to the event id")
	}
}

func TestDispatcherCloseDropsLateEvents(t *testing.T) {
	sink := &recordingSink{name: "ok"}
	d := NewDispatcher(testLogger(t), "", time.Second, sink)

	var emitters sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		emitters.Add(1)
		go func() {
			defer emitters.Done()
			for {
				select {
				case <-stop:
					return
				default:
					d.Emit(context.Background(), MessageCreated, nil)
				}
			}
		}()
	}
	time.Sleep(5 * time.Millisecond)
	d.Close()

	sink.mu.Lock()
	delivered := len(sink.got)
	sink.mu.Unlock()

	d.Emit(context.Background(), ConversationClosed, nil)
	close(stop)
	emitters.Wait()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.got) != delivered {
		t.Fatalf("events after Close must be dropped: %d before, %d after", delivered, len(sink.got))
	}
	for _, env := range sink.got {
		if env.Meta.Type == ConversationClosed {
			t.Fatalf("late event was delivered")
		}
	}
}

func TestNilDispatcherIsSafe(t *testing.T) {
	var d *Dispatcher
	d.Emit(context.Background(), MessageCreated, nil)
	d.Wait()
	d.Close()
}

package events

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/deskchat-backend/internal/platform/ctxutil"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
)

// Sink receives every dispatched envelope.
type Sink interface {
	Name() string
	Send(ctx context.Context, env Envelope) error
}

// Emitter is what the core depends on: fire-and-forget, never fails.
type Emitter interface {
	Emit(ctx context.Context, name string, payload any)
}

const tracerName = "github.com/yungbote/deskchat-backend/internal/events"

type Dispatcher struct {
	log      *logger.Logger
	sinks    []Sink
	producer string
	timeout  time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(log *logger.Logger, producer string, timeout time.Duration, sinks ...Sink) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	out := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Dispatcher{
		log:      log.With("service", "EventDispatcher"),
		sinks:    out,
		producer: strings.TrimSpace(producer),
		timeout:  timeout,
	}
}

// Emit wraps payload in an envelope and hands it to every sink on a
// background goroutine. Sink errors are logged and dropped; there is no
// retry. After Close, Emit drops the event.
func (d *Dispatcher) Emit(ctx context.Context, name string, payload any) {
	if d == nil || len(d.sinks) == 0 {
		return
	}
	env := Envelope{
		Meta: Meta{
			ID:            uuid.NewString(),
			Type:          name,
			Time:          time.Now().UTC(),
			Producer:      d.producer,
			CorrelationID: ctxutil.CorrelationID(ctx),
		},
		Data: payload,
	}
	if env.Meta.CorrelationID == "" {
		env.Meta.CorrelationID = env.Meta.ID
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.log.Debug("event dropped after close", "event", name)
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()
	go func() {
		defer d.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		sendCtx, span := otel.Tracer(tracerName).Start(sendCtx, "events.dispatch",
			trace.WithSpanKind(trace.SpanKindProducer),
			trace.WithAttributes(
				attribute.String("event.type", name),
				attribute.String("event.id", env.Meta.ID),
			),
		)
		defer span.End()
		for _, s := range d.sinks {
			if err := s.Send(sendCtx, env); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, s.Name()+" failed")
				d.log.Warn("event delivery failed",
					"sink", s.Name(),
					"event", name,
					"event_id", env.Meta.ID,
					"error", err,
				)
			}
		}
	}()
}

// Wait blocks until in-flight deliveries finish. Emit may still be called
// afterwards.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}

// Close stops accepting events and waits for in-flight deliveries.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}

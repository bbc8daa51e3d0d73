package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/yungbote/deskchat-backend/internal/platform/logger"
)

const maxDialDelay = 30 * time.Second

type AMQPConfig struct {
	URL           string
	Exchange      string
	RetryAttempts int
	Delay         time.Duration
}

// AMQPSink publishes envelopes to a durable topic exchange, routed by
// event name, and waits for the broker confirm.
type AMQPSink struct {
	log      *logger.Logger
	conn     *amqp.Connection
	exchange string

	mu sync.Mutex
	ch *amqp.Channel
}

func NewAMQPSink(ctx context.Context, log *logger.Logger, cfg AMQPConfig) (*AMQPSink, error) {
	if cfg.Exchange == "" {
		cfg.Exchange = "deskchat.events"
	}
	conn, err := dialWithRetry(ctx, log, cfg)
	if err != nil {
		return nil, err
	}
	s := &AMQPSink{
		log:      log.With("sink", "amqp", "exchange", cfg.Exchange),
		conn:     conn,
		exchange: cfg.Exchange,
	}
	ch, err := s.openChannel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	s.ch = ch
	return s, nil
}

func dialWithRetry(ctx context.Context, log *logger.Logger, cfg AMQPConfig) (*amqp.Connection, error) {
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 5
	}
	delay := cfg.Delay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	var lastErr error
	for i := 1; i <= attempts; i++ {
		conn, err := amqp.Dial(cfg.URL)
		if err == nil {
			if i > 1 {
				log.Info("amqp connected", "attempt", i)
			}
			return conn, nil
		}
		lastErr = err

		sleep := delay * time.Duration(math.Pow(2, float64(i-1)))
		if sleep > maxDialDelay {
			sleep = maxDialDelay
		}
		log.Warn("amqp dial failed", "attempt", i, "sleep", sleep, "error", err)

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, errors.New("amqp dial cancelled: " + ctx.Err().Error())
		case <-timer.C:
		}
	}
	return nil, fmt.Errorf("amqp connect failed after %d attempts: %w", attempts, lastErr)
}

func (s *AMQPSink) openChannel() (*amqp.Channel, error) {
	ch, err := s.conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.ExchangeDeclare(s.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		return nil, err
	}
	return ch, nil
}

func (s *AMQPSink) Name() string { return "amqp" }

func (s *AMQPSink) Send(ctx context.Context, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch == nil || s.ch.IsClosed() {
		ch, err := s.openChannel()
		if err != nil {
			return fmt.Errorf("reopen channel: %w", err)
		}
		s.ch = ch
	}

	conf, err := s.ch.PublishWithDeferredConfirmWithContext(ctx, s.exchange, env.Meta.Type, false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     env.Meta.ID,
		CorrelationId: env.Meta.CorrelationID,
		Type:          env.Meta.Type,
		Timestamp:     env.Meta.Time,
		AppId:         env.Meta.Producer,
		Body:          body,
	})
	if err != nil {
		return err
	}
	ok, err := conf.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("broker nacked %s", env.Meta.Type)
	}
	s.log.Debug("published", "key", env.Meta.Type, "event_id", env.Meta.ID)
	return nil
}

func (s *AMQPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch != nil {
		_ = s.ch.Close()
	}
	return s.conn.Close()
}

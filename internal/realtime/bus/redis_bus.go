package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/deskchat-backend/internal/platform/logger"
	"github.com/yungbote/deskchat-backend/internal/realtime"
)

const defaultChannel = "deskchat:realtime"

var errNoRoom = errors.New("realtime message has no room")

// redisBus fans hub deliveries out to every instance over a single pub/sub
// channel. Payloads are realtime.Message JSON; the room travels inside the
// payload (user:<id>, role:<role>, conversation:<id> or "*"), so one
// subscription per instance covers every room.
type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewRedisBus(log *logger.Logger, addr, channel string) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = defaultChannel
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	return &redisBus{
		log:     log.With("service", "RedisRealtimeBus", "channel", channel),
		rdb:     rdb,
		channel: channel,
	}, nil
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.Message) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis realtime bus not initialized")
	}
	raw, err := encodeMessage(msg)
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
		b.log.Warn("room publish failed", roomFields(msg, "error", err)...)
		return err
	}
	return nil
}

// StartForwarder subscribes before returning, so a message published right
// after start is not missed. Deliveries stop when ctx is done.
func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis realtime bus not initialized")
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe %s: %w", b.channel, err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					b.log.Warn("room subscription ended")
					return
				}
				if m == nil {
					continue
				}
				msg, err := decodeMessage(m.Payload)
				if err != nil {
					b.log.Warn("dropping room payload", "error", err)
					continue
				}
				b.log.Debug("room delivery", roomFields(msg)...)
				onMsg(msg)
			}
		}
	}()

	return nil
}

func (b *redisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

func encodeMessage(msg realtime.Message) ([]byte, error) {
	if strings.TrimSpace(msg.Room) == "" {
		return nil, errNoRoom
	}
	return json.Marshal(msg)
}

func decodeMessage(payload string) (realtime.Message, error) {
	var msg realtime.Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return realtime.Message{}, err
	}
	if strings.TrimSpace(msg.Room) == "" {
		return realtime.Message{}, errNoRoom
	}
	return msg, nil
}

func roomFields(msg realtime.Message, extra ...any) []any {
	out := []any{"room", msg.Room, "event", string(msg.Event)}
	if id, ok := realtime.ParseConversationRoom(msg.Room); ok {
		out = append(out, "conversation_id", id.String())
	}
	return append(out, extra...)
}

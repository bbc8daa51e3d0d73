package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/deskchat-backend/internal/data/db"
	"github.com/yungbote/deskchat-backend/internal/events"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
	"github.com/yungbote/deskchat-backend/internal/realtime/bus"
)

type Clients struct {
	DB   *db.Service
	Bus  bus.Bus
	AMQP *events.AMQPSink
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Database
	dbs, err := db.NewService(cfg.DB, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init database: %w", err)
	}
	out := Clients{DB: dbs}

	// Redis
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		b, err := bus.NewRedisBus(log, cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init redis realtime bus: %w", err)
		}
		out.Bus = b
	} else {
		log.Info("REDIS_ADDR not set; realtime fan-out stays in-process")
	}

	// AMQP
	if strings.TrimSpace(cfg.AMQPURL) != "" {
		sink, err := events.NewAMQPSink(ctx, log, events.AMQPConfig{
			URL:           cfg.AMQPURL,
			Exchange:      cfg.AMQPExchange,
			RetryAttempts: cfg.AMQPRetryAttempts,
			Delay:         time.Second,
		})
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init amqp sink: %w", err)
		}
		out.AMQP = sink
	} else {
		log.Info("AMQP_URL not set; domain events go to the log sink")
	}

	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.AMQP != nil {
		_ = c.AMQP.Close()
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
}

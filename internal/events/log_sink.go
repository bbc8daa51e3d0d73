package events

import (
	"context"

	"github.com/yungbote/deskchat-backend/internal/platform/logger"
)

// LogSink stands in for the broker when none is configured.
type LogSink struct {
	log *logger.Logger
}

func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log.With("sink", "log")}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Send(ctx context.Context, env Envelope) error {
	s.log.Info("domain event",
		"event", env.Meta.Type,
		"event_id", env.Meta.ID,
		"correlation_id", env.Meta.CorrelationID,
	)
	return nil
}

package audit

import (
	"context"

	"go.uber.org/zap"
)

// LogSink пишет пачку событий в структурированный лог, по строке на событие.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("render-journal")}
}

func (s *LogSink) WriteBatch(ctx context.Context, events []RenderEvent) error {
	for _, e := range events {
		s.logger.Info("view rendered",
			zap.String("id", e.ID),
			zap.String("trace_id", e.TraceID),
			zap.String("view", e.View),
			zap.String("status", e.Status),
			zap.Int("rows", e.Rows),
			zap.String("message", e.Message),
			zap.Int64("duration_ms", e.DurationMs),
			zap.Time("timestamp", e.Timestamp),
		)
	}
	return nil
}

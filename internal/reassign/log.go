package reassign

import (
	"context"

	"go.uber.org/zap"
)

// LogPublisher пишет события в лог, когда брокер не настроен
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishJSON(_ context.Context, key string, v any) error {
	p.logger.Info("Event published", zap.String("routing_key", key), zap.Any("event", v))
	return nil
}

package notify

import (
	"context"

	"github.com/Freeeeeet/trainer_slots/internal/model"
	"go.uber.org/zap"
)

// LogDispatcher пишет уведомления в лог. Используется без TELEGRAM_TOKEN.
type LogDispatcher struct {
	logger *zap.Logger
}

func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) SendToUser(_ context.Context, userID int64, title, body string, severity model.Severity) error {
	d.logger.Info("Notification",
		zap.Int64("user_id", userID),
		zap.String("title", title),
		zap.String("body", body),
		zap.String("severity", string(severity)))
	return nil
}

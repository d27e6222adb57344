package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/trainer_slots/internal/model"
	"go.uber.org/zap"
)

// DefaultCancellationWindow отмена запрещена в последние 30 минут перед началом
const DefaultCancellationWindow = 30 * time.Minute

// Options общие настройки сервисов расписания
type Options struct {
	Location           *time.Location
	CancellationWindow time.Duration
	Now                func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.CancellationWindow <= 0 {
		o.CancellationWindow = DefaultCancellationWindow
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// notifyBestEffort отправляет уведомление после коммита; ошибка только логируется
func notifyBestEffort(ctx context.Context, n Notifier, logger *zap.Logger, userID int64, title, body string, severity model.Severity) {
	if n == nil {
		return
	}
	if err := n.SendToUser(ctx, userID, title, body, severity); err != nil {
		logger.Warn("Failed to send notification",
			zap.Int64("user_id", userID),
			zap.String("title", title),
			zap.Error(err))
	}
}

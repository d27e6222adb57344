package notify

import (
	"context"
	"sync"

	"github.com/Freeeeeet/trainer_slots/internal/model"
	"go.uber.org/zap"
)

type Dispatcher interface {
	SendToUser(ctx context.Context, userID int64, title, body string, severity model.Severity) error
}

// Async отправляет уведомления в фоне и сразу возвращает управление.
// Ошибки доставки только логируются.
type Async struct {
	next   Dispatcher
	logger *zap.Logger
	wg     sync.WaitGroup
}

func NewAsync(next Dispatcher, logger *zap.Logger) *Async {
	return &Async{next: next, logger: logger}
}

func (a *Async) SendToUser(ctx context.Context, userID int64, title, body string, severity model.Severity) error {
	ctx = context.WithoutCancel(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error("Notification dispatcher panicked",
					zap.Int64("user_id", userID),
					zap.Any("panic", r))
			}
		}()

		if err := a.next.SendToUser(ctx, userID, title, body, severity); err != nil {
			a.logger.Warn("Failed to deliver notification",
				zap.Int64("user_id", userID),
				zap.String("title", title),
				zap.Error(err))
		}
	}()

	return nil
}

// Wait дожидается всех отправок, запущенных до вызова
func (a *Async) Wait() {
	a.wg.Wait()
}

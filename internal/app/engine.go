package app

import (
	"context"
	"time"

	"github.com/Freeeeeet/trainer_slots/internal/reassign"
	"github.com/Freeeeeet/trainer_slots/internal/service"
	"go.uber.org/zap"
)

// Stores хранилища, с которыми работает движок
type Stores struct {
	Slots   service.SlotStore
	Users   service.UserStore
	History service.SessionHistoryStore
}

// Engine собранные сервисы расписания и их фоновые задачи.
// Транспортный слой (бот, HTTP) вызывает сервисы напрямую.
type Engine struct {
	Availability *service.AvailabilityService
	Booking      *service.BookingService
	Cancellation *service.CancellationService
	VideoCall    *service.VideoCallService

	scheduler *Scheduler
	logger    *zap.Logger
}

func NewEngine(
	stores Stores,
	notifier service.Notifier,
	reassigner *reassign.Dispatcher,
	opts service.Options,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		Availability: service.NewAvailabilityService(stores.Slots, stores.Users, logger),
		Booking:      service.NewBookingService(stores.Slots, notifier, opts, logger),
		Cancellation: service.NewCancellationService(stores.Slots, stores.Users, notifier, reassigner, opts, logger),
		VideoCall:    service.NewVideoCallService(stores.Slots, stores.Users, stores.History, logger),
		scheduler:    NewScheduler(reassigner, reassigner, time.Minute, logger),
		logger:       logger,
	}
}

// Start запускает фоновые воркеры
func (e *Engine) Start(ctx context.Context) {
	e.scheduler.Start(ctx)
	e.logger.Info("Slot engine started")
}

// Stop останавливает воркеры и ждёт их завершения
func (e *Engine) Stop() {
	e.scheduler.Stop()
	e.logger.Info("Slot engine stopped")
}

package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/trainer_slots/internal/model"
)

// SlotStore хранилище слотов. Book, Release и UpdateVideoCallStatus
// обязаны быть условными записями, выполняемыми хранилищем атомарно.
type SlotStore interface {
	CreateIfNoOverlap(ctx context.Context, slot *model.Slot) error
	GetByID(ctx context.Context, id int64) (*model.Slot, error)
	GetByTrainerAndDate(ctx context.Context, trainerID int64, date string) ([]*model.Slot, error)
	GetActiveByClient(ctx context.Context, clientID int64) (*model.Slot, error)
	Book(ctx context.Context, slotID, clientID int64, bookedAt time.Time) (*model.Slot, error)
	Release(ctx context.Context, slotID, clientID int64, reason string, record *model.CancellationRecord) (*model.Slot, error)
	UpdateVideoCallStatus(ctx context.Context, slotID int64, from, to model.VideoCallStatus) (*model.Slot, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// SessionHistoryStore архив сессий, идемпотентный по естественному ключу
type SessionHistoryStore interface {
	ArchiveIfAbsent(ctx context.Context, record *model.SessionRecord) (bool, error)
}

// Notifier доставка уведомлений пользователю. Ошибки не влияют на исход операции.
type Notifier interface {
	SendToUser(ctx context.Context, userID int64, title, body string, severity model.Severity) error
}

// ReassignmentTrigger передаёт отменённую тренером бронь на подбор замены.
// Вызов не должен блокироваться на доставке.
type ReassignmentTrigger interface {
	TriggerReassignment(ctx context.Context, req model.ReassignmentRequest) error
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/trainer_slots/internal/model"
	"github.com/Freeeeeet/trainer_slots/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CancellationService struct {
	slotRepo SlotStore
	userRepo UserStore
	notifier Notifier
	trigger  ReassignmentTrigger
	opts     Options
	logger   *zap.Logger
}

func NewCancellationService(
	slotRepo SlotStore,
	userRepo UserStore,
	notifier Notifier,
	trigger ReassignmentTrigger,
	opts Options,
	logger *zap.Logger,
) *CancellationService {
	return &CancellationService{
		slotRepo: slotRepo,
		userRepo: userRepo,
		notifier: notifier,
		trigger:  trigger,
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

// checkWindow отмена разрешена, пока now <= start - окно
func (s *CancellationService) checkWindow(slot *model.Slot) error {
	start, err := slot.StartInstant(s.opts.Location)
	if err != nil {
		s.logger.Error("Slot has invalid date or time",
			zap.Int64("slot_id", slot.ID),
			zap.Error(err))
		return ErrInvalidSlotTime
	}

	threshold := start.Add(-s.opts.CancellationWindow)
	if s.opts.Now().After(threshold) {
		return ErrCancellationWindowExpired
	}

	return nil
}

func normalizeReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", ErrReasonRequired
	}
	return reason, nil
}

// CancelBooking отменяет бронь по инициативе клиента
func (s *CancellationService) CancelBooking(ctx context.Context, clientID, slotID int64, reason string) (*model.Slot, error) {
	reason, err := normalizeReason(reason)
	if err != nil {
		return nil, err
	}

	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	// Фильтр по клиенту и статусу здесь предварительный, гарант - условный Release
	if slot == nil || !slot.IsBooked() || !slot.HasClient(clientID) {
		return nil, ErrSlotNotFoundOrNotBooked
	}

	if err := s.checkWindow(slot); err != nil {
		return nil, err
	}

	released, err := s.slotRepo.Release(ctx, slotID, clientID, reason, nil)
	if err != nil {
		if errors.Is(err, repository.ErrConditionFailed) {
			return nil, ErrSlotNotFoundOrNotBooked
		}
		return nil, fmt.Errorf("release slot: %w", err)
	}

	s.logger.Info("Booking canceled by client",
		zap.Int64("slot_id", slotID),
		zap.Int64("client_id", clientID),
		zap.String("reason", reason),
	)

	notifyBestEffort(ctx, s.notifier, s.logger, released.TrainerID,
		"❌ Запись отменена",
		fmt.Sprintf("Клиент отменил запись на %s %s–%s. Причина: %s",
			released.Date, released.StartTime, released.EndTime, reason),
		model.SeverityInfo,
	)

	return released, nil
}

// TrainerCancelBooking отменяет бронь по инициативе тренера, сохраняет запись
// об отмене, уведомляет обе стороны и запускает подбор замены
func (s *CancellationService) TrainerCancelBooking(ctx context.Context, trainerID, slotID int64, reason string) (*model.Slot, error) {
	reason, err := normalizeReason(reason)
	if err != nil {
		return nil, err
	}

	trainer, err := s.userRepo.GetByID(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("get trainer: %w", err)
	}
	if trainer == nil || !trainer.IsTrainer {
		return nil, ErrSlotNotFoundOrNotBooked
	}

	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	if slot == nil || slot.TrainerID != trainerID {
		return nil, ErrSlotNotFoundOrNotBooked
	}

	if !slot.IsBooked() || slot.ClientID == nil {
		return nil, ErrNotBooked
	}
	clientID := *slot.ClientID

	if err := s.checkWindow(slot); err != nil {
		return nil, err
	}

	record := &model.CancellationRecord{
		ID:          uuid.New(),
		SlotID:      slotID,
		ClientID:    clientID,
		TrainerID:   trainerID,
		Reason:      reason,
		CancelledAt: s.opts.Now(),
	}

	released, err := s.slotRepo.Release(ctx, slotID, clientID, reason, record)
	if err != nil {
		if errors.Is(err, repository.ErrConditionFailed) {
			return nil, ErrNotBooked
		}
		return nil, fmt.Errorf("release slot: %w", err)
	}

	s.logger.Info("Booking canceled by trainer",
		zap.String("cancellation_id", record.ID.String()),
		zap.Int64("slot_id", slotID),
		zap.Int64("trainer_id", trainerID),
		zap.Int64("client_id", clientID),
		zap.String("reason", reason),
	)

	// Всё ниже - побочные эффекты уже зафиксированной отмены
	notifyBestEffort(ctx, s.notifier, s.logger, clientID,
		"❌ Тренер отменил занятие",
		fmt.Sprintf("Занятие %s %s–%s отменено тренером. Причина: %s\nМы подберём вам другого тренера.",
			released.Date, released.StartTime, released.EndTime, reason),
		model.SeverityUrgent,
	)
	notifyBestEffort(ctx, s.notifier, s.logger, trainerID,
		"✅ Отмена подтверждена",
		fmt.Sprintf("Занятие %s %s–%s отменено, слот снова свободен.",
			released.Date, released.StartTime, released.EndTime),
		model.SeverityInfo,
	)

	s.triggerReassignment(ctx, record)

	return released, nil
}

func (s *CancellationService) triggerReassignment(ctx context.Context, record *model.CancellationRecord) {
	if s.trigger == nil {
		return
	}

	req := model.ReassignmentRequest{
		CancellationID: record.ID,
		SlotID:         record.SlotID,
		ClientID:       record.ClientID,
		TrainerID:      record.TrainerID,
		Reason:         record.Reason,
		CancelledAt:    record.CancelledAt,
	}

	if err := s.trigger.TriggerReassignment(ctx, req); err != nil {
		s.logger.Error("Failed to trigger reassignment",
			zap.String("cancellation_id", record.ID.String()),
			zap.Int64("slot_id", record.SlotID),
			zap.Error(err))
	}
}

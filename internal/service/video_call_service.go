package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/trainer_slots/internal/model"
	"github.com/Freeeeeet/trainer_slots/internal/repository"
	"go.uber.org/zap"
)

// VideoCallService ведёт состояние видеозвонка забронированного слота:
// not_started -> started -> ended
type VideoCallService struct {
	slotRepo    SlotStore
	userRepo    UserStore
	historyRepo SessionHistoryStore
	logger      *zap.Logger
}

func NewVideoCallService(
	slotRepo SlotStore,
	userRepo UserStore,
	historyRepo SessionHistoryStore,
	logger *zap.Logger,
) *VideoCallService {
	return &VideoCallService{
		slotRepo:    slotRepo,
		userRepo:    userRepo,
		historyRepo: historyRepo,
		logger:      logger,
	}
}

func (s *VideoCallService) participantSlot(ctx context.Context, userID, slotID int64) (*model.Slot, error) {
	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	if !slot.IsBooked() {
		return nil, ErrNotBooked
	}
	if slot.TrainerID != userID && !slot.HasClient(userID) {
		return nil, ErrNotParticipant
	}
	return slot, nil
}

// StartVideoCall запускает звонок
func (s *VideoCallService) StartVideoCall(ctx context.Context, userID, slotID int64) (*model.Slot, error) {
	slot, err := s.participantSlot(ctx, userID, slotID)
	if err != nil {
		return nil, err
	}
	if slot.VideoCallStatus != model.VideoCallNotStarted {
		return nil, ErrInvalidVideoCallTransition
	}

	updated, err := s.slotRepo.UpdateVideoCallStatus(ctx, slotID, model.VideoCallNotStarted, model.VideoCallStarted)
	if err != nil {
		if errors.Is(err, repository.ErrConditionFailed) {
			return nil, ErrInvalidVideoCallTransition
		}
		return nil, fmt.Errorf("start video call: %w", err)
	}

	s.logger.Info("Video call started",
		zap.Int64("slot_id", slotID),
		zap.Int64("user_id", userID))

	return updated, nil
}

// EndVideoCall завершает звонок. Сессия архивируется до изменения статуса,
// повторная архивация той же сессии пропускается.
// Если между архивацией и записью статуса бронь отменили, запись в истории
// остаётся, а вызов вернёт ErrInvalidVideoCallTransition.
func (s *VideoCallService) EndVideoCall(ctx context.Context, userID, slotID int64) (*model.Slot, error) {
	slot, err := s.participantSlot(ctx, userID, slotID)
	if err != nil {
		return nil, err
	}
	if slot.VideoCallStatus != model.VideoCallStarted {
		return nil, ErrInvalidVideoCallTransition
	}

	final := slot.Clone()
	final.VideoCallStatus = model.VideoCallEnded
	if _, err := s.ArchiveSession(ctx, final); err != nil {
		return nil, err
	}

	updated, err := s.slotRepo.UpdateVideoCallStatus(ctx, slotID, model.VideoCallStarted, model.VideoCallEnded)
	if err != nil {
		if errors.Is(err, repository.ErrConditionFailed) {
			return nil, ErrInvalidVideoCallTransition
		}
		return nil, fmt.Errorf("end video call: %w", err)
	}

	s.logger.Info("Video call ended",
		zap.Int64("slot_id", slotID),
		zap.Int64("user_id", userID))

	return updated, nil
}

// ArchiveSession пишет слот в историю сессий, если записи с таким
// (trainer, client, date, start) ещё нет. Возвращает true, если запись создана.
func (s *VideoCallService) ArchiveSession(ctx context.Context, slot *model.Slot) (bool, error) {
	if slot.ClientID == nil {
		return false, ErrNotBooked
	}

	record := &model.SessionRecord{
		SlotID:             slot.ID,
		TrainerID:          slot.TrainerID,
		ClientID:           *slot.ClientID,
		Date:               slot.Date,
		StartTime:          slot.StartTime,
		EndTime:            slot.EndTime,
		CancellationReason: slot.CancellationReason,
		VideoCallStatus:    slot.VideoCallStatus,
	}

	trainer, err := s.userRepo.GetByID(ctx, slot.TrainerID)
	if err != nil {
		return false, fmt.Errorf("get trainer: %w", err)
	}
	if trainer != nil {
		record.TrainerName = trainer.DisplayName()
	}

	client, err := s.userRepo.GetByID(ctx, record.ClientID)
	if err != nil {
		return false, fmt.Errorf("get client: %w", err)
	}
	if client != nil {
		record.ClientName = client.DisplayName()
	}

	created, err := s.historyRepo.ArchiveIfAbsent(ctx, record)
	if err != nil {
		return false, fmt.Errorf("archive session: %w", err)
	}

	if created {
		s.logger.Info("Session archived",
			zap.Int64("record_id", record.ID),
			zap.Int64("slot_id", slot.ID))
	} else {
		s.logger.Debug("Session already archived",
			zap.Int64("slot_id", slot.ID),
			zap.Int64("trainer_id", record.TrainerID),
			zap.Int64("client_id", record.ClientID))
	}

	return created, nil
}

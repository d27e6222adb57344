package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/trainer_slots/internal/model"
	"github.com/Freeeeeet/trainer_slots/internal/repository"
	"go.uber.org/zap"
)

type AvailabilityService struct {
	slotRepo SlotStore
	userRepo UserStore
	logger   *zap.Logger
}

func NewAvailabilityService(slotRepo SlotStore, userRepo UserStore, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		slotRepo: slotRepo,
		userRepo: userRepo,
		logger:   logger,
	}
}

// CreateSlot создаёт свободный слот тренера, если он не пересекается
// ни с одним слотом этого тренера на ту же дату (независимо от статуса)
func (s *AvailabilityService) CreateSlot(ctx context.Context, trainerID int64, date, startTime, endTime string) (*model.Slot, error) {
	day, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q", ErrInvalidSlotTime, date)
	}
	startClock, err := time.Parse(model.TimeLayout, startTime)
	if err != nil {
		return nil, fmt.Errorf("%w: start time %q", ErrInvalidSlotTime, startTime)
	}
	endClock, err := time.Parse(model.TimeLayout, endTime)
	if err != nil {
		return nil, fmt.Errorf("%w: end time %q", ErrInvalidSlotTime, endTime)
	}

	start := startClock.Hour()*60 + startClock.Minute()
	end := endClock.Hour()*60 + endClock.Minute()
	if end <= start {
		return nil, ErrInvalidInterval
	}

	// Проверяем что пользователь - тренер
	trainer, err := s.userRepo.GetByID(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("get trainer: %w", err)
	}
	if trainer == nil || !trainer.IsTrainer {
		return nil, ErrTrainerNotFound
	}

	slot := &model.Slot{
		TrainerID:       trainerID,
		Date:            day.Format(model.DateLayout),
		StartTime:       startClock.Format(model.TimeLayout),
		EndTime:         endClock.Format(model.TimeLayout),
		Status:          model.SlotStatusAvailable,
		VideoCallStatus: model.VideoCallNotStarted,
	}

	// Предварительная проверка; окончательно пересечение проверяет хранилище
	existing, err := s.slotRepo.GetByTrainerAndDate(ctx, trainerID, slot.Date)
	if err != nil {
		return nil, fmt.Errorf("get trainer slots: %w", err)
	}
	for _, other := range existing {
		overlaps, err := other.OverlapsSlot(start, end)
		if err != nil {
			s.logger.Warn("Skipping slot with corrupted time",
				zap.Int64("slot_id", other.ID),
				zap.Error(err))
			continue
		}
		if overlaps {
			s.logger.Info("Slot overlaps existing slot",
				zap.Int64("trainer_id", trainerID),
				zap.Int64("existing_slot_id", other.ID),
				zap.String("date", slot.Date))
			return nil, ErrOverlapConflict
		}
	}

	err = s.slotRepo.CreateIfNoOverlap(ctx, slot)
	if err != nil {
		if errors.Is(err, repository.ErrOverlap) {
			return nil, ErrOverlapConflict
		}
		return nil, fmt.Errorf("create slot: %w", err)
	}

	s.logger.Info("Slot created",
		zap.Int64("slot_id", slot.ID),
		zap.Int64("trainer_id", trainerID),
		zap.String("date", slot.Date),
		zap.String("start_time", slot.StartTime),
		zap.String("end_time", slot.EndTime),
	)

	return slot, nil
}

// GetTrainerSchedule получает слоты тренера на дату
func (s *AvailabilityService) GetTrainerSchedule(ctx context.Context, trainerID int64, date string) ([]*model.Slot, error) {
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: date %q", ErrInvalidSlotTime, date)
	}
	return s.slotRepo.GetByTrainerAndDate(ctx, trainerID, date)
}

// GetSlot получает слот по ID
func (s *AvailabilityService) GetSlot(ctx context.Context, slotID int64) (*model.Slot, error) {
	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	return slot, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/trainer_slots/internal/model"
	"github.com/Freeeeeet/trainer_slots/internal/repository"
	"go.uber.org/zap"
)

type BookingService struct {
	slotRepo SlotStore
	notifier Notifier
	opts     Options
	logger   *zap.Logger
}

func NewBookingService(
	slotRepo SlotStore,
	notifier Notifier,
	opts Options,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		slotRepo: slotRepo,
		notifier: notifier,
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

// BookSlot бронирует слот для клиента.
// Проверки 1-4 предварительные, единственный гарант от гонки - условная запись в хранилище.
func (s *BookingService) BookSlot(ctx context.Context, clientID, slotID int64) (*model.Slot, error) {
	// У клиента не должно быть другой активной брони
	active, err := s.slotRepo.GetActiveByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("get active booking: %w", err)
	}
	if active != nil {
		return nil, ErrAlreadyBooked
	}

	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}

	if !slot.IsAvailable() {
		return nil, ErrSlotUnavailable
	}

	start, err := slot.StartInstant(s.opts.Location)
	if err != nil {
		s.logger.Error("Slot has invalid date or time",
			zap.Int64("slot_id", slotID),
			zap.Error(err))
		return nil, ErrInvalidSlotTime
	}

	now := s.opts.Now()
	if start.Before(now) {
		return nil, ErrPastSlotBooking
	}

	booked, err := s.slotRepo.Book(ctx, slotID, clientID, now)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrConditionFailed):
			s.logger.Info("Lost booking race",
				zap.Int64("slot_id", slotID),
				zap.Int64("client_id", clientID))
			return nil, ErrSlotUnavailable
		case errors.Is(err, repository.ErrClientHasActiveBooking):
			return nil, ErrAlreadyBooked
		}
		return nil, fmt.Errorf("book slot: %w", err)
	}

	s.logger.Info("Slot booked",
		zap.Int64("slot_id", slotID),
		zap.Int64("client_id", clientID),
		zap.Int64("trainer_id", booked.TrainerID),
		zap.String("date", booked.Date),
		zap.String("start_time", booked.StartTime),
	)

	notifyBestEffort(ctx, s.notifier, s.logger, booked.TrainerID,
		"📅 Новая запись",
		fmt.Sprintf("Клиент записался на %s %s–%s", booked.Date, booked.StartTime, booked.EndTime),
		model.SeverityInfo,
	)

	return booked, nil
}

// GetActiveBooking получает текущую бронь клиента или nil
func (s *BookingService) GetActiveBooking(ctx context.Context, clientID int64) (*model.Slot, error) {
	return s.slotRepo.GetActiveByClient(ctx, clientID)
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// CancellationRecord неизменяемая запись об отмене бронирования тренером
type CancellationRecord struct {
	ID          uuid.UUID `json:"id"`
	SlotID      int64     `json:"slot_id"`
	ClientID    int64     `json:"client_id"`
	TrainerID   int64     `json:"trainer_id"`
	Reason      string    `json:"reason"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// ReassignmentRequest передаётся внешнему подбору тренера после отмены тренером
type ReassignmentRequest struct {
	CancellationID uuid.UUID `json:"cancellation_id"`
	SlotID         int64     `json:"slot_id"`
	ClientID       int64     `json:"client_id"`
	TrainerID      int64     `json:"trainer_id"`
	Reason         string    `json:"reason"`
	CancelledAt    time.Time `json:"cancelled_at"`
}

package service

import "errors"

var (
	ErrOverlapConflict            = errors.New("slot overlaps an existing slot of the trainer")
	ErrInvalidInterval            = errors.New("end time must be after start time")
	ErrSlotNotFound               = errors.New("slot not found")
	ErrSlotNotFoundOrNotBooked    = errors.New("slot not found or not booked by caller")
	ErrSlotUnavailable            = errors.New("slot is not available")
	ErrAlreadyBooked              = errors.New("client already holds an active booking")
	ErrInvalidSlotTime            = errors.New("slot date or time is invalid")
	ErrPastSlotBooking            = errors.New("slot start is in the past")
	ErrCancellationWindowExpired  = errors.New("cancellation window has expired")
	ErrReasonRequired             = errors.New("cancellation reason is required")
	ErrNotBooked                  = errors.New("slot has no active booking")
	ErrTrainerNotFound            = errors.New("trainer not found")
	ErrInvalidVideoCallTransition = errors.New("invalid video call transition")
	ErrNotParticipant             = errors.New("user is not a participant of the slot")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrOverlapConflict, "OVERLAP_CONFLICT"},
	{ErrInvalidInterval, "INVALID_INTERVAL"},
	{ErrSlotNotFound, "SLOT_NOT_FOUND"},
	{ErrSlotNotFoundOrNotBooked, "SLOT_NOT_FOUND_OR_NOT_BOOKED"},
	{ErrSlotUnavailable, "SLOT_UNAVAILABLE"},
	{ErrAlreadyBooked, "ALREADY_BOOKED"},
	{ErrInvalidSlotTime, "INVALID_SLOT_TIME"},
	{ErrPastSlotBooking, "PAST_SLOT_BOOKING"},
	{ErrCancellationWindowExpired, "CANCELLATION_WINDOW_EXPIRED"},
	{ErrReasonRequired, "REASON_REQUIRED"},
	{ErrNotBooked, "NOT_BOOKED"},
	{ErrTrainerNotFound, "TRAINER_NOT_FOUND"},
	{ErrInvalidVideoCallTransition, "INVALID_VIDEO_CALL_TRANSITION"},
	{ErrNotParticipant, "NOT_PARTICIPANT"},
}

// ErrorCode возвращает стабильный код доменной ошибки для внешнего слоя.
// Для инфраструктурных ошибок возвращает "INTERNAL".
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return "INTERNAL"
}

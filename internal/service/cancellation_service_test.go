package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/trainer_slots/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancelBookingRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked := f.bookedSlot(t, clientID, "09:00", "10:00")

	released, err := f.cancellation.CancelBooking(ctx, clientID, booked.ID, "  schedule conflict ")
	require.NoError(t, err)

	assert.Equal(t, model.SlotStatusAvailable, released.Status)
	assert.True(t, released.IsAvailable())
	assert.Nil(t, released.ClientID)
	require.NotNil(t, released.CancellationReason)
	assert.Equal(t, "schedule conflict", *released.CancellationReason)

	active, err := f.booking.GetActiveBooking(ctx, clientID)
	require.NoError(t, err)
	assert.Nil(t, active)

	// повторная бронь сбрасывает причину отмены
	rebooked, err := f.booking.BookSlot(ctx, otherClientID, booked.ID)
	require.NoError(t, err)
	assert.Nil(t, rebooked.CancellationReason)

	assert.Empty(t, f.store.CancellationRecords(), "client cancellations are not recorded")
	assert.Empty(t, f.trigger.Calls())
}

func TestCancellationWindowBoundary(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{"one second before threshold", time.Date(2025, 1, 10, 8, 29, 59, 0, time.UTC), nil},
		{"exactly at threshold", time.Date(2025, 1, 10, 8, 30, 0, 0, time.UTC), nil},
		{"one second after threshold", time.Date(2025, 1, 10, 8, 30, 1, 0, time.UTC), ErrCancellationWindowExpired},
		{"five minutes before start", time.Date(2025, 1, 10, 8, 55, 0, 0, time.UTC), ErrCancellationWindowExpired},
		{"after start", time.Date(2025, 1, 10, 9, 15, 0, 0, time.UTC), ErrCancellationWindowExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/client", func(t *testing.T) {
			f := newFixture(t)
			booked := f.bookedSlot(t, clientID, "09:00", "10:00")
			f.clock.Set(tt.now)

			_, err := f.cancellation.CancelBooking(context.Background(), clientID, booked.ID, "sick")
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})

		t.Run(tt.name+"/trainer", func(t *testing.T) {
			f := newFixture(t)
			booked := f.bookedSlot(t, clientID, "09:00", "10:00")
			f.clock.Set(tt.now)

			_, err := f.cancellation.TrainerCancelBooking(context.Background(), trainerID, booked.ID, "illness")
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.trigger.Calls())
		})
	}
}

func TestCancelBookingScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked := f.bookedSlot(t, clientID, "09:00", "10:00")

	f.clock.Set(at(t, slotDate, "08:25"))
	_, err := f.cancellation.CancelBooking(ctx, clientID, booked.ID, "schedule conflict")
	require.NoError(t, err)

	rebooked, err := f.booking.BookSlot(ctx, clientID, booked.ID)
	require.NoError(t, err)

	f.clock.Set(at(t, slotDate, "08:35"))
	_, err = f.cancellation.CancelBooking(ctx, clientID, rebooked.ID, "schedule conflict")
	assert.ErrorIs(t, err, ErrCancellationWindowExpired)

	slot, err := f.availability.GetSlot(ctx, booked.ID)
	require.NoError(t, err)
	assert.True(t, slot.IsBooked())
}

func TestCancelBookingFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked := f.bookedSlot(t, clientID, "09:00", "10:00")
	free := f.createSlot(t, trainerID, slotDate, "11:00", "12:00")

	tests := []struct {
		name    string
		client  int64
		slotID  int64
		reason  string
		wantErr error
	}{
		{"blank reason", clientID, booked.ID, "   ", ErrReasonRequired},
		{"empty reason", clientID, booked.ID, "", ErrReasonRequired},
		{"someone else's booking", otherClientID, booked.ID, "x", ErrSlotNotFoundOrNotBooked},
		{"slot not booked", clientID, free.ID, "x", ErrSlotNotFoundOrNotBooked},
		{"unknown slot", clientID, 777, "x", ErrSlotNotFoundOrNotBooked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.cancellation.CancelBooking(ctx, tt.client, tt.slotID, tt.reason)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	slot, err := f.availability.GetSlot(ctx, booked.ID)
	require.NoError(t, err)
	assert.True(t, slot.HasClient(clientID))
}

func TestTrainerCancelBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked := f.bookedSlot(t, clientID, "09:00", "10:00")
	f.notifier.Reset()

	released, err := f.cancellation.TrainerCancelBooking(ctx, trainerID, booked.ID, "illness")
	require.NoError(t, err)

	assert.True(t, released.IsAvailable())
	assert.Nil(t, released.ClientID)
	require.NotNil(t, released.CancellationReason)
	assert.Equal(t, "illness", *released.CancellationReason)

	records := f.store.CancellationRecords()
	require.Len(t, records, 1)
	record := records[0]
	assert.Equal(t, booked.ID, record.SlotID)
	assert.Equal(t, clientID, record.ClientID)
	assert.Equal(t, trainerID, record.TrainerID)
	assert.Equal(t, "illness", record.Reason)
	assert.Equal(t, f.clock.Now(), record.CancelledAt)

	sent := f.notifier.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, clientID, sent[0].UserID)
	assert.Contains(t, sent[0].Body, "illness")
	assert.Equal(t, model.SeverityUrgent, sent[0].Severity)
	assert.Equal(t, trainerID, sent[1].UserID)

	calls := f.trigger.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, record.ID, calls[0].CancellationID)
	assert.Equal(t, booked.ID, calls[0].SlotID)
	assert.Equal(t, clientID, calls[0].ClientID)
	assert.Equal(t, "illness", calls[0].Reason)
}

func TestTrainerCancelBookingSideEffectFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked := f.bookedSlot(t, clientID, "09:00", "10:00")
	f.notifier.Reset()
	f.notifier.err = errDeliveryFailed
	f.trigger.err = errDeliveryFailed

	released, err := f.cancellation.TrainerCancelBooking(ctx, trainerID, booked.ID, "illness")
	require.NoError(t, err)
	assert.True(t, released.IsAvailable())

	assert.Len(t, f.notifier.Sent(), 2, "second notification is sent even if the first fails")
	assert.Len(t, f.trigger.Calls(), 1)
	assert.Len(t, f.store.CancellationRecords(), 1)
}

func TestTrainerCancelBookingFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked := f.bookedSlot(t, clientID, "09:00", "10:00")
	free := f.createSlot(t, trainerID, slotDate, "11:00", "12:00")

	tests := []struct {
		name    string
		trainer int64
		slotID  int64
		reason  string
		wantErr error
	}{
		{"blank reason", trainerID, booked.ID, " ", ErrReasonRequired},
		{"unknown trainer", 404, booked.ID, "x", ErrSlotNotFoundOrNotBooked},
		{"user is not a trainer", strangerID, booked.ID, "x", ErrSlotNotFoundOrNotBooked},
		{"trainer does not own slot", otherTrainerID, booked.ID, "x", ErrSlotNotFoundOrNotBooked},
		{"unknown slot", trainerID, 777, "x", ErrSlotNotFoundOrNotBooked},
		{"slot not booked", trainerID, free.ID, "x", ErrNotBooked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.cancellation.TrainerCancelBooking(ctx, tt.trainer, tt.slotID, tt.reason)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Empty(t, f.store.CancellationRecords())
	assert.Empty(t, f.trigger.Calls())
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/trainer_slots/internal/model"
	"github.com/Freeeeeet/trainer_slots/internal/repository/memory"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	trainerID      int64 = 1
	otherTrainerID int64 = 2
	clientID       int64 = 10
	otherClientID  int64 = 11
	strangerID     int64 = 99 // есть в базе, но не тренер
)

const slotDate = "2025-01-10"

type sentNotification struct {
	UserID   int64
	Title    string
	Body     string
	Severity model.Severity
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (n *recordingNotifier) SendToUser(_ context.Context, userID int64, title, body string, severity model.Severity) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sent = append(n.sent, sentNotification{UserID: userID, Title: title, Body: body, Severity: severity})
	return n.err
}

func (n *recordingNotifier) Sent() []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentNotification(nil), n.sent...)
}

func (n *recordingNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = nil
}

type recordingTrigger struct {
	mu    sync.Mutex
	calls []model.ReassignmentRequest
	err   error
}

func (r *recordingTrigger) TriggerReassignment(_ context.Context, req model.ReassignmentRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, req)
	return r.err
}

func (r *recordingTrigger) Calls() []model.ReassignmentRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.ReassignmentRequest(nil), r.calls...)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fixture struct {
	store    *memory.Store
	notifier *recordingNotifier
	trigger  *recordingTrigger
	clock    *testClock

	availability *AvailabilityService
	booking      *BookingService
	cancellation *CancellationService
	video        *VideoCallService
}

func at(t *testing.T, date, clock string) time.Time {
	t.Helper()
	ts, err := model.ParseInstant(date, clock, time.UTC)
	require.NoError(t, err)
	return ts
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	store.PutUser(&model.User{ID: trainerID, FirstName: "Anna", LastName: "Trainer", IsTrainer: true, TelegramID: 1001})
	store.PutUser(&model.User{ID: otherTrainerID, FirstName: "Boris", IsTrainer: true})
	store.PutUser(&model.User{ID: clientID, FirstName: "Carl", LastName: "Client", TelegramID: 1010})
	store.PutUser(&model.User{ID: otherClientID, Username: "dora"})
	store.PutUser(&model.User{ID: strangerID, FirstName: "Eve"})

	logger := zaptest.NewLogger(t)
	clock := &testClock{now: at(t, "2025-01-09", "12:00")}
	opts := Options{Location: time.UTC, Now: clock.Now}

	f := &fixture{
		store:    store,
		notifier: &recordingNotifier{},
		trigger:  &recordingTrigger{},
		clock:    clock,
	}
	f.availability = NewAvailabilityService(store, store.Users(), logger)
	f.booking = NewBookingService(store, f.notifier, opts, logger)
	f.cancellation = NewCancellationService(store, store.Users(), f.notifier, f.trigger, opts, logger)
	f.video = NewVideoCallService(store, store.Users(), store, logger)
	return f
}

func (f *fixture) createSlot(t *testing.T, trainer int64, date, start, end string) *model.Slot {
	t.Helper()
	slot, err := f.availability.CreateSlot(context.Background(), trainer, date, start, end)
	require.NoError(t, err)
	return slot
}

func (f *fixture) bookedSlot(t *testing.T, client int64, start, end string) *model.Slot {
	t.Helper()
	slot := f.createSlot(t, trainerID, slotDate, start, end)
	booked, err := f.booking.BookSlot(context.Background(), client, slot.ID)
	require.NoError(t, err)
	return booked
}

var errDeliveryFailed = errors.New("delivery failed")

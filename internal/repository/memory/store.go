// Package memory хранит слоты в памяти процесса.
// Все условные записи выполняются под одним мьютексом, поэтому гарантии
// совпадают с PostgreSQL-реализацией.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/trainer_slots/internal/model"
	"github.com/Freeeeeet/trainer_slots/internal/repository"
)

type Store struct {
	mu            sync.Mutex
	nextSlotID    int64
	nextRecordID  int64
	slots         map[int64]*model.Slot
	users         map[int64]*model.User
	cancellations []*model.CancellationRecord
	sessions      map[model.SessionKey]*model.SessionRecord
}

func NewStore() *Store {
	return &Store{
		slots:    make(map[int64]*model.Slot),
		users:    make(map[int64]*model.User),
		sessions: make(map[model.SessionKey]*model.SessionRecord),
	}
}

// PutUser добавляет или заменяет пользователя
func (s *Store) PutUser(user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := *user
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	s.users[u.ID] = &u
}

func (s *Store) GetUser(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (s *Store) CreateIfNoOverlap(_ context.Context, slot *model.Slot) error {
	start, err := model.MinutesSinceMidnight(slot.StartTime)
	if err != nil {
		return err
	}
	end, err := model.MinutesSinceMidnight(slot.EndTime)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, other := range s.slots {
		if other.TrainerID != slot.TrainerID || other.Date != slot.Date {
			continue
		}
		overlaps, err := other.OverlapsSlot(start, end)
		if err != nil {
			return err
		}
		if overlaps {
			return repository.ErrOverlap
		}
	}

	s.nextSlotID++
	slot.ID = s.nextSlotID
	slot.CreatedAt = time.Now()
	s.slots[slot.ID] = slot.Clone()
	return nil
}

func (s *Store) GetByID(_ context.Context, id int64) (*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[id]
	if !ok {
		return nil, nil
	}
	return slot.Clone(), nil
}

func (s *Store) GetByTrainerAndDate(_ context.Context, trainerID int64, date string) ([]*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var slots []*model.Slot
	for _, slot := range s.slots {
		if slot.TrainerID == trainerID && slot.Date == date {
			slots = append(slots, slot.Clone())
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].StartTime < slots[j].StartTime })
	return slots, nil
}

func (s *Store) GetActiveByClient(_ context.Context, clientID int64) (*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slot := s.activeByClientLocked(clientID); slot != nil {
		return slot.Clone(), nil
	}
	return nil, nil
}

func (s *Store) activeByClientLocked(clientID int64) *model.Slot {
	for _, slot := range s.slots {
		if slot.IsBooked() && slot.HasClient(clientID) {
			return slot
		}
	}
	return nil
}

// Book проверяет статус слота и отсутствие активной брони клиента атомарно
func (s *Store) Book(_ context.Context, slotID, clientID int64, bookedAt time.Time) (*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[slotID]
	if !ok || !slot.IsAvailable() {
		return nil, repository.ErrConditionFailed
	}
	if s.activeByClientLocked(clientID) != nil {
		return nil, repository.ErrClientHasActiveBooking
	}

	id := clientID
	at := bookedAt
	slot.Status = model.SlotStatusBooked
	slot.ClientID = &id
	slot.BookedAt = &at
	slot.CancellationReason = nil
	slot.VideoCallStatus = model.VideoCallNotStarted

	return slot.Clone(), nil
}

func (s *Store) Release(_ context.Context, slotID, clientID int64, reason string, record *model.CancellationRecord) (*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[slotID]
	if !ok || !slot.IsBooked() || !slot.HasClient(clientID) {
		return nil, repository.ErrConditionFailed
	}

	r := reason
	slot.Status = model.SlotStatusAvailable
	slot.ClientID = nil
	slot.BookedAt = nil
	slot.CancellationReason = &r

	if record != nil {
		c := *record
		s.cancellations = append(s.cancellations, &c)
	}

	return slot.Clone(), nil
}

func (s *Store) UpdateVideoCallStatus(_ context.Context, slotID int64, from, to model.VideoCallStatus) (*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[slotID]
	if !ok || !slot.IsBooked() || slot.VideoCallStatus != from {
		return nil, repository.ErrConditionFailed
	}
	slot.VideoCallStatus = to

	return slot.Clone(), nil
}

// CancellationRecords возвращает копию журнала отмен
func (s *Store) CancellationRecords() []*model.CancellationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.CancellationRecord, 0, len(s.cancellations))
	for _, r := range s.cancellations {
		c := *r
		out = append(out, &c)
	}
	return out
}

func (s *Store) ArchiveIfAbsent(_ context.Context, record *model.SessionRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := record.Key()
	if _, exists := s.sessions[key]; exists {
		return false, nil
	}

	s.nextRecordID++
	record.ID = s.nextRecordID
	record.ArchivedAt = time.Now()
	c := *record
	s.sessions[key] = &c
	return true, nil
}

// SessionRecords возвращает архив сессий
func (s *Store) SessionRecords() []*model.SessionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.SessionRecord, 0, len(s.sessions))
	for _, r := range s.sessions {
		c := *r
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Users отдаёт пользователей хранилища через интерфейс GetByID
func (s *Store) Users() *UserView {
	return &UserView{store: s}
}

type UserView struct {
	store *Store
}

func (v *UserView) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return v.store.GetUser(ctx, id)
}

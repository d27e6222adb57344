package model

import (
	"fmt"
	"time"
)

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBooked    SlotStatus = "booked"
)

type VideoCallStatus string

const (
	VideoCallNotStarted VideoCallStatus = "not_started"
	VideoCallStarted    VideoCallStatus = "started"
	VideoCallEnded      VideoCallStatus = "ended"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Slot одиночный интервал доступности тренера [StartTime, EndTime) в день Date
type Slot struct {
	ID                 int64           `json:"id"`
	TrainerID          int64           `json:"trainer_id"`
	ClientID           *int64          `json:"client_id"` // только пока слот забронирован
	Date               string          `json:"date"`       // YYYY-MM-DD
	StartTime          string          `json:"start_time"` // HH:MM
	EndTime            string          `json:"end_time"`   // HH:MM
	Status             SlotStatus      `json:"status"`
	BookedAt           *time.Time      `json:"booked_at"`
	CancellationReason *string         `json:"cancellation_reason"`
	VideoCallStatus    VideoCallStatus `json:"video_call_status"`
	CreatedAt          time.Time       `json:"created_at"`
}

// IsBooked выводится из Status и нигде не хранится
func (s *Slot) IsBooked() bool {
	return s.Status == SlotStatusBooked
}

// IsAvailable выводится из Status и нигде не хранится
func (s *Slot) IsAvailable() bool {
	return s.Status == SlotStatusAvailable
}

// HasClient проверяет что слот забронирован конкретным клиентом
func (s *Slot) HasClient(clientID int64) bool {
	return s.ClientID != nil && *s.ClientID == clientID
}

// StartInstant возвращает абсолютный момент начала слота в указанной зоне
func (s *Slot) StartInstant(loc *time.Location) (time.Time, error) {
	return ParseInstant(s.Date, s.StartTime, loc)
}

// Clone возвращает независимую копию слота
func (s *Slot) Clone() *Slot {
	c := *s
	if s.ClientID != nil {
		id := *s.ClientID
		c.ClientID = &id
	}
	if s.BookedAt != nil {
		t := *s.BookedAt
		c.BookedAt = &t
	}
	if s.CancellationReason != nil {
		r := *s.CancellationReason
		c.CancellationReason = &r
	}
	return &c
}

// ParseInstant собирает момент времени из даты и времени суток
func ParseInstant(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse slot time %q %q: %w", date, clock, err)
	}
	return t, nil
}

// MinutesSinceMidnight переводит HH:MM в минуты от начала суток
func MinutesSinceMidnight(clock string) (int, error) {
	t, err := time.Parse(TimeLayout, clock)
	if err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", clock, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Overlaps проверяет пересечение полуинтервалов [s1,e1) и [s2,e2).
// Касание концами пересечением не считается.
func Overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

// OverlapsSlot проверяет пересекается ли интервал в минутах со слотом
func (s *Slot) OverlapsSlot(start, end int) (bool, error) {
	s2, err := MinutesSinceMidnight(s.StartTime)
	if err != nil {
		return false, err
	}
	e2, err := MinutesSinceMidnight(s.EndTime)
	if err != nil {
		return false, err
	}
	return Overlaps(start, end, s2, e2), nil
}

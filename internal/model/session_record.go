package model

import "time"

// SessionRecord архивная запись о проведённой сессии.
// Уникальна по (TrainerID, ClientID, Date, StartTime).
type SessionRecord struct {
	ID                 int64           `json:"id"`
	SlotID             int64           `json:"slot_id"`
	TrainerID          int64           `json:"trainer_id"`
	ClientID           int64           `json:"client_id"`
	TrainerName        string          `json:"trainer_name"`
	ClientName         string          `json:"client_name"`
	Date               string          `json:"date"`
	StartTime          string          `json:"start_time"`
	EndTime            string          `json:"end_time"`
	CancellationReason *string         `json:"cancellation_reason"`
	VideoCallStatus    VideoCallStatus `json:"video_call_status"`
	ArchivedAt         time.Time       `json:"archived_at"`
}

// SessionKey естественный ключ архивной записи
type SessionKey struct {
	TrainerID int64
	ClientID  int64
	Date      string
	StartTime string
}

func (r *SessionRecord) Key() SessionKey {
	return SessionKey{
		TrainerID: r.TrainerID,
		ClientID:  r.ClientID,
		Date:      r.Date,
		StartTime: r.StartTime,
	}
}

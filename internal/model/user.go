package model

import (
	"strings"
	"time"
)

type User struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegram_id"` // чат для уведомлений, 0 если не привязан
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	IsTrainer  bool      `json:"is_trainer"`
	CreatedAt  time.Time `json:"created_at"`
}

// DisplayName возвращает имя для истории сессий и уведомлений
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return ""
}

package notify

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/Freeeeeet/trainer_slots/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

var ErrNoChat = errors.New("user has no telegram chat")

// MessageSender часть *bot.Bot, нужная для отправки сообщений
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// TelegramDispatcher доставляет уведомления в личный чат пользователя
type TelegramDispatcher struct {
	sender MessageSender
	users  UserLookup
	logger *zap.Logger
}

func NewTelegramDispatcher(sender MessageSender, users UserLookup, logger *zap.Logger) *TelegramDispatcher {
	return &TelegramDispatcher{
		sender: sender,
		users:  users,
		logger: logger,
	}
}

func (d *TelegramDispatcher) SendToUser(ctx context.Context, userID int64, title, body string, severity model.Severity) error {
	user, err := d.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil || user.TelegramID == 0 {
		return fmt.Errorf("user %d: %w", userID, ErrNoChat)
	}

	_, err = d.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    user.TelegramID,
		Text:      formatMessage(title, body, severity),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	d.logger.Debug("Notification sent",
		zap.Int64("user_id", userID),
		zap.Int64("telegram_id", user.TelegramID),
		zap.String("severity", string(severity)))

	return nil
}

func formatMessage(title, body string, severity model.Severity) string {
	text := "<b>" + html.EscapeString(title) + "</b>\n\n" + html.EscapeString(body)
	if severity == model.SeverityUrgent {
		text = "❗ " + text
	}
	return text
}

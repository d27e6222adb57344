package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/trainer_slots/internal/model"
	"github.com/Freeeeeet/trainer_slots/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionHistoryRepository struct {
	pool *pgxpool.Pool
}

func NewSessionHistoryRepository(pool *pgxpool.Pool) *SessionHistoryRepository {
	return &SessionHistoryRepository{pool: pool}
}

// ArchiveIfAbsent добавляет запись в историю сессий.
// Возвращает false, если запись с тем же естественным ключом уже есть.
func (r *SessionHistoryRepository) ArchiveIfAbsent(ctx context.Context, record *model.SessionRecord) (bool, error) {
	query := `
		INSERT INTO session_history (slot_id, trainer_id, client_id, trainer_name, client_name,
			date, start_time, end_time, cancellation_reason, video_call_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (trainer_id, client_id, date, start_time) DO NOTHING
		RETURNING id, archived_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		record.SlotID,
		record.TrainerID,
		record.ClientID,
		record.TrainerName,
		record.ClientName,
		record.Date,
		record.StartTime,
		record.EndTime,
		record.CancellationReason,
		record.VideoCallStatus,
	).Scan(&record.ID, &record.ArchivedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("archive session: %w", err)
	}

	return true, nil
}

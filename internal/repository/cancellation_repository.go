package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/trainer_slots/internal/model"
	"github.com/Freeeeeet/trainer_slots/internal/repository/base"
)

// insertCancellation добавляет запись об отмене. Записи никогда не обновляются.
func insertCancellation(ctx context.Context, q base.Querier, record *model.CancellationRecord) error {
	query := `
		INSERT INTO cancellation_records (id, slot_id, client_id, trainer_id, reason, cancelled_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := q.Exec(
		ctx, query,
		record.ID,
		record.SlotID,
		record.ClientID,
		record.TrainerID,
		record.Reason,
		record.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("create cancellation record: %w", err)
	}

	return nil
}

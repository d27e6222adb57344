package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/trainer_slots/internal/model"
	"github.com/Freeeeeet/trainer_slots/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const activeBookingIndex = "uq_slots_active_booking_per_client"

const slotColumns = `id, trainer_id, client_id, date, start_time, end_time, status,
	booked_at, cancellation_reason, video_call_status, created_at`

type SlotRepository struct {
	*base.Repository
}

func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{Repository: base.NewRepository(pool)}
}

func scanSlot(row pgx.Row) (*model.Slot, error) {
	var slot model.Slot
	err := row.Scan(
		&slot.ID,
		&slot.TrainerID,
		&slot.ClientID,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&slot.Status,
		&slot.BookedAt,
		&slot.CancellationReason,
		&slot.VideoCallStatus,
		&slot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func scanSlots(rows pgx.Rows) ([]*model.Slot, error) {
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}

	return slots, nil
}

// CreateIfNoOverlap создаёт слот, если он не пересекается со слотами тренера на эту дату.
// Проверка и вставка идут под advisory-локом на пару (тренер, дата).
func (r *SlotRepository) CreateIfNoOverlap(ctx context.Context, slot *model.Slot) error {
	start, err := model.MinutesSinceMidnight(slot.StartTime)
	if err != nil {
		return err
	}
	end, err := model.MinutesSinceMidnight(slot.EndTime)
	if err != nil {
		return err
	}

	return r.InTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`SELECT pg_advisory_xact_lock(hashtextextended(format('%s:%s', $1::bigint, $2::text), 0))`,
			slot.TrainerID, slot.Date,
		)
		if err != nil {
			return fmt.Errorf("lock trainer date: %w", err)
		}

		existing, err := r.byTrainerAndDate(ctx, tx, slot.TrainerID, slot.Date)
		if err != nil {
			return err
		}

		for _, other := range existing {
			overlaps, err := other.OverlapsSlot(start, end)
			if err != nil {
				return fmt.Errorf("check overlap with slot %d: %w", other.ID, err)
			}
			if overlaps {
				return ErrOverlap
			}
		}

		query := `
			INSERT INTO slots (trainer_id, date, start_time, end_time, status, video_call_status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at
		`

		err = tx.QueryRow(
			ctx, query,
			slot.TrainerID,
			slot.Date,
			slot.StartTime,
			slot.EndTime,
			slot.Status,
			slot.VideoCallStatus,
		).Scan(&slot.ID, &slot.CreatedAt)
		if err != nil {
			return fmt.Errorf("create slot: %w", err)
		}

		return nil
	})
}

// GetByID получает слот по ID
func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`

	slot, err := scanSlot(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// GetByTrainerAndDate получает все слоты тренера на дату независимо от статуса
func (r *SlotRepository) GetByTrainerAndDate(ctx context.Context, trainerID int64, date string) ([]*model.Slot, error) {
	return r.byTrainerAndDate(ctx, r.Pool(), trainerID, date)
}

func (r *SlotRepository) byTrainerAndDate(ctx context.Context, q base.Querier, trainerID int64, date string) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE trainer_id = $1 AND date = $2
		ORDER BY start_time
	`

	rows, err := q.Query(ctx, query, trainerID, date)
	if err != nil {
		return nil, fmt.Errorf("get slots by trainer and date: %w", err)
	}

	return scanSlots(rows)
}

// GetActiveByClient получает текущий забронированный слот клиента
func (r *SlotRepository) GetActiveByClient(ctx context.Context, clientID int64) (*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE client_id = $1 AND status = 'booked'
		LIMIT 1
	`

	slot, err := scanSlot(r.QueryRow(ctx, query, clientID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active booking by client: %w", err)
	}

	return slot, nil
}

// Book бронирует слот одной условной записью: только если слот всё ещё available.
// Уникальный частичный индекс не даёт клиенту держать два booked слота.
// Новая бронь начинает видеозвонок заново.
func (r *SlotRepository) Book(ctx context.Context, slotID, clientID int64, bookedAt time.Time) (*model.Slot, error) {
	query := `
		UPDATE slots
		SET status = 'booked', client_id = $1, booked_at = $2, cancellation_reason = NULL,
			video_call_status = 'not_started'
		WHERE id = $3 AND status = 'available'
		RETURNING ` + slotColumns

	slot, err := scanSlot(r.QueryRow(ctx, query, clientID, bookedAt, slotID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, ErrConditionFailed
		}
		if base.IsUniqueViolation(err, activeBookingIndex) {
			return nil, ErrClientHasActiveBooking
		}
		return nil, fmt.Errorf("book slot: %w", err)
	}

	return slot, nil
}

// Release возвращает слот клиента в available с причиной отмены.
// Если передан record, запись об отмене сохраняется в той же транзакции.
func (r *SlotRepository) Release(ctx context.Context, slotID, clientID int64, reason string, record *model.CancellationRecord) (*model.Slot, error) {
	var released *model.Slot

	err := r.InTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE slots
			SET status = 'available', client_id = NULL, booked_at = NULL, cancellation_reason = $1
			WHERE id = $2 AND status = 'booked' AND client_id = $3
			RETURNING ` + slotColumns

		slot, err := scanSlot(tx.QueryRow(ctx, query, reason, slotID, clientID))
		if err != nil {
			if base.IsNotFound(err) {
				return ErrConditionFailed
			}
			return fmt.Errorf("release slot: %w", err)
		}

		if record != nil {
			if err := insertCancellation(ctx, tx, record); err != nil {
				return err
			}
		}

		released = slot
		return nil
	})
	if err != nil {
		return nil, err
	}

	return released, nil
}

// UpdateVideoCallStatus переводит статус видеозвонка из from в to условной записью
func (r *SlotRepository) UpdateVideoCallStatus(ctx context.Context, slotID int64, from, to model.VideoCallStatus) (*model.Slot, error) {
	query := `
		UPDATE slots
		SET video_call_status = $1
		WHERE id = $2 AND video_call_status = $3 AND status = 'booked'
		RETURNING ` + slotColumns

	slot, err := scanSlot(r.QueryRow(ctx, query, to, slotID, from))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, ErrConditionFailed
		}
		return nil, fmt.Errorf("update video call status: %w", err)
	}

	return slot, nil
}

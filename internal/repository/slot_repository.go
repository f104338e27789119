package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/base"
)

const slotColumns = `id, tutor_id, subject, start_time, end_time, is_booked, batch_id, created_at`

type slotRepository struct {
	base.Repository
}

func newSlotRepository(q base.Querier) *slotRepository {
	return &slotRepository{Repository: base.NewRepository(q)}
}

// CreateBatch создаёт слоты одной пачкой
func (r *slotRepository) CreateBatch(ctx context.Context, slots []*model.AvailableSlot) error {
	if len(slots) == 0 {
		return nil
	}

	query := `
		INSERT INTO available_slots (tutor_id, subject, start_time, end_time, is_booked, batch_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	batch := &pgx.Batch{}
	for _, slot := range slots {
		batch.Queue(query, slot.TutorID, slot.Subject, slot.StartTime, slot.EndTime, slot.IsBooked, slot.BatchID)
	}

	results := r.SendBatch(ctx, batch)
	for _, slot := range slots {
		if err := results.QueryRow().Scan(&slot.ID, &slot.CreatedAt); err != nil {
			results.Close()
			return fmt.Errorf("create slot: %w", err)
		}
	}

	if err := results.Close(); err != nil {
		return fmt.Errorf("close slot batch: %w", err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *slotRepository) GetByID(ctx context.Context, id int64) (*model.AvailableSlot, error) {
	return r.getOne(ctx, `SELECT `+slotColumns+` FROM available_slots WHERE id = $1`, id)
}

// GetByIDForUpdate получает слот и блокирует его строку
func (r *slotRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.AvailableSlot, error) {
	return r.getOne(ctx, `SELECT `+slotColumns+` FROM available_slots WHERE id = $1 FOR UPDATE`, id)
}

// GetByTutorID получает все слоты репетитора.
// is_booked считается занятым и при наличии активной записи.
func (r *slotRepository) GetByTutorID(ctx context.Context, tutorID int64) ([]*model.AvailableSlot, error) {
	query := `
		SELECT s.id, s.tutor_id, s.subject, s.start_time, s.end_time,
		       s.is_booked OR EXISTS (
		           SELECT 1 FROM appointments a
		           WHERE a.slot_id = s.id AND a.status <> 'rejected'
		       ) AS is_booked,
		       s.batch_id, s.created_at
		FROM available_slots s
		WHERE s.tutor_id = $1
		ORDER BY s.start_time
	`

	rows, err := r.Query(ctx, query, tutorID)
	if err != nil {
		return nil, fmt.Errorf("get slots by tutor: %w", err)
	}
	defer rows.Close()

	var slots []*model.AvailableSlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}

// MarkBooked бронирует слот, только если он ещё свободен
func (r *slotRepository) MarkBooked(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE available_slots
		SET is_booked = TRUE
		WHERE id = $1 AND is_booked = FALSE
	`

	affected, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("mark slot booked: %w", err)
	}

	return affected == 1, nil
}

// Delete удаляет слот; активная запись на слот даёт ErrReferenced
func (r *slotRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM available_slots WHERE id = $1`, id)
	if err != nil {
		if base.IsForeignKeyViolation(err) {
			return fmt.Errorf("delete slot: %w", ErrReferenced)
		}
		return fmt.Errorf("delete slot: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("slot not found")
	}

	return nil
}

func (r *slotRepository) getOne(ctx context.Context, query string, id int64) (*model.AvailableSlot, error) {
	slot, err := scanSlot(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}
	return slot, nil
}

func scanSlot(row base.Scanner) (*model.AvailableSlot, error) {
	var slot model.AvailableSlot
	err := row.Scan(
		&slot.ID,
		&slot.TutorID,
		&slot.Subject,
		&slot.StartTime,
		&slot.EndTime,
		&slot.IsBooked,
		&slot.BatchID,
		&slot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

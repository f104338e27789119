package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/base"
)

type appointmentRepository struct {
	base.Repository
}

func newAppointmentRepository(q base.Querier) *appointmentRepository {
	return &appointmentRepository{Repository: base.NewRepository(q)}
}

// Create создаёт запись на слот.
// Вторая активная запись на тот же слот отсекается уникальным индексом.
func (r *appointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	query := `
		INSERT INTO appointments (slot_id, student_id, tutor_id, message, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		appt.SlotID,
		appt.StudentID,
		appt.TutorID,
		appt.Message,
		appt.Status,
	).Scan(&appt.ID, &appt.CreatedAt, &appt.UpdatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create appointment: %w", ErrDuplicate)
		}
		if base.IsForeignKeyViolation(err) {
			return fmt.Errorf("create appointment: %w", ErrReferenced)
		}
		return fmt.Errorf("create appointment: %w", err)
	}

	return nil
}

// GetByID получает запись вместе со слотом
func (r *appointmentRepository) GetByID(ctx context.Context, id int64) (*model.Appointment, error) {
	query := appointmentSelect + ` WHERE a.id = $1`

	appt, err := scanAppointment(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}

	return appt, nil
}

// HasActiveForSlot проверяет, есть ли на слоте не отклонённая запись
func (r *appointmentRepository) HasActiveForSlot(ctx context.Context, slotID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE slot_id = $1 AND status <> 'rejected'
		)
	`

	var exists bool
	if err := r.QueryRow(ctx, query, slotID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active appointment: %w", err)
	}

	return exists, nil
}

// GetByTutorID получает записи к репетитору
func (r *appointmentRepository) GetByTutorID(ctx context.Context, tutorID int64) ([]*model.Appointment, error) {
	return r.list(ctx, appointmentSelect+` WHERE a.tutor_id = $1 ORDER BY s.start_time`, tutorID)
}

// GetByStudentID получает записи ученика
func (r *appointmentRepository) GetByStudentID(ctx context.Context, studentID int64) ([]*model.Appointment, error) {
	return r.list(ctx, appointmentSelect+` WHERE a.student_id = $1 ORDER BY s.start_time`, studentID)
}

// TransitionStatus compare-and-set статуса записи
func (r *appointmentRepository) TransitionStatus(ctx context.Context, id int64, from, to model.AppointmentStatus) (bool, error) {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	affected, err := r.ExecAffected(ctx, query, to, id, from)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return false, fmt.Errorf("transition appointment status: %w", ErrDuplicate)
		}
		return false, fmt.Errorf("transition appointment status: %w", err)
	}

	return affected == 1, nil
}

// DeleteRejectedForSlot удаляет отклонённые записи перед удалением слота
func (r *appointmentRepository) DeleteRejectedForSlot(ctx context.Context, slotID int64) error {
	query := `DELETE FROM appointments WHERE slot_id = $1 AND status = 'rejected'`

	if _, err := r.ExecAffected(ctx, query, slotID); err != nil {
		return fmt.Errorf("delete rejected appointments: %w", err)
	}

	return nil
}

const appointmentSelect = `
	SELECT a.id, a.slot_id, a.student_id, a.tutor_id, a.message, a.status, a.created_at, a.updated_at,
	       s.id, s.tutor_id, s.subject, s.start_time, s.end_time, s.is_booked, s.batch_id, s.created_at
	FROM appointments a
	JOIN available_slots s ON s.id = a.slot_id
`

func (r *appointmentRepository) list(ctx context.Context, query string, args ...any) ([]*model.Appointment, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var appts []*model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, appt)
	}

	return appts, rows.Err()
}

func scanAppointment(row base.Scanner) (*model.Appointment, error) {
	var (
		appt model.Appointment
		slot model.AvailableSlot
	)

	err := row.Scan(
		&appt.ID,
		&appt.SlotID,
		&appt.StudentID,
		&appt.TutorID,
		&appt.Message,
		&appt.Status,
		&appt.CreatedAt,
		&appt.UpdatedAt,
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

	appt.Slot = &slot
	return &appt, nil
}

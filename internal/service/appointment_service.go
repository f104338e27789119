package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository"
)

// AppointmentService записывает учеников на слоты
type AppointmentService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewAppointmentService(store repository.Store, logger *zap.Logger) *AppointmentService {
	return &AppointmentService{
		store:  store,
		logger: logger,
	}
}

// Create записывает ученика на слот.
// tutorID == 0 означает "репетитор слота".
func (s *AppointmentService) Create(ctx context.Context, studentID, tutorID, slotID int64, message string) (*model.Appointment, error) {
	appt := &model.Appointment{
		SlotID:    slotID,
		StudentID: studentID,
		Message:   strings.TrimSpace(message),
		Status:    model.AppointmentStatusPending,
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		slot, err := uow.Slots().GetByIDForUpdate(ctx, slotID)
		if err != nil {
			return fmt.Errorf("get slot: %w", err)
		}
		if slot == nil {
			return model.ErrSlotNotFound
		}

		if tutorID != 0 && slot.TutorID != tutorID {
			return model.NewError(model.ErrCodeValidation, "slot does not belong to this tutor")
		}

		if slot.IsBooked {
			return model.ErrSlotTaken
		}

		active, err := uow.Appointments().HasActiveForSlot(ctx, slotID)
		if err != nil {
			return fmt.Errorf("check appointments: %w", err)
		}
		if active {
			return model.ErrSlotTaken
		}

		appt.TutorID = slot.TutorID
		if err := uow.Appointments().Create(ctx, appt); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return model.ErrSlotTaken
			}
			if errors.Is(err, repository.ErrReferenced) {
				return model.ErrSlotNotFound
			}
			return fmt.Errorf("create appointment: %w", err)
		}

		appt.Slot = slot
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Appointment requested",
		zap.Int64("appointment_id", appt.ID),
		zap.Int64("slot_id", slotID),
		zap.Int64("student_id", studentID),
	)

	return appt, nil
}

// SetStatus решение репетитора по записи. Уже решённая запись
// возвращается без изменений.
func (s *AppointmentService) SetStatus(ctx context.Context, callerID, appointmentID int64, status model.AppointmentStatus) (*model.Appointment, error) {
	if status != model.AppointmentStatusAccepted && status != model.AppointmentStatusRejected {
		return nil, model.NewError(model.ErrCodeValidation, "status must be accepted or rejected")
	}

	var (
		result  *model.Appointment
		changed bool
	)

	err := s.store.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		appt, err := uow.Appointments().GetByID(ctx, appointmentID)
		if err != nil {
			return fmt.Errorf("get appointment: %w", err)
		}
		if appt == nil {
			return model.ErrAppointmentNotFound
		}

		if appt.TutorID != callerID {
			return model.NewError(model.ErrCodePermissionDenied, "only the slot's tutor can decide")
		}

		if appt.Status != model.AppointmentStatusPending {
			result = appt
			return nil
		}

		if status == model.AppointmentStatusAccepted {
			booked, err := uow.Slots().MarkBooked(ctx, appt.SlotID)
			if err != nil {
				return fmt.Errorf("book slot: %w", err)
			}
			if !booked {
				return model.ErrSlotTaken
			}
		}

		ok, err := uow.Appointments().TransitionStatus(ctx, appt.ID, model.AppointmentStatusPending, status)
		if err != nil {
			return fmt.Errorf("update appointment status: %w", err)
		}
		if !ok {
			return model.ErrStatusRace
		}

		result, err = uow.Appointments().GetByID(ctx, appt.ID)
		if err != nil {
			return fmt.Errorf("reload appointment: %w", err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.Info("Appointment decided",
			zap.Int64("appointment_id", appointmentID),
			zap.String("status", string(status)),
		)
	}

	return result, nil
}

func (s *AppointmentService) Accept(ctx context.Context, callerID, appointmentID int64) (*model.Appointment, error) {
	return s.SetStatus(ctx, callerID, appointmentID, model.AppointmentStatusAccepted)
}

func (s *AppointmentService) Reject(ctx context.Context, callerID, appointmentID int64) (*model.Appointment, error) {
	return s.SetStatus(ctx, callerID, appointmentID, model.AppointmentStatusRejected)
}

// ListForTutor записи к репетитору вместе со слотами
func (s *AppointmentService) ListForTutor(ctx context.Context, tutorID int64) ([]*model.Appointment, error) {
	appts, err := s.store.Appointments().GetByTutorID(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("list tutor appointments: %w", err)
	}
	return appts, nil
}

// ListForStudent записи ученика вместе со слотами
func (s *AppointmentService) ListForStudent(ctx context.Context, studentID int64) ([]*model.Appointment, error) {
	appts, err := s.store.Appointments().GetByStudentID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list student appointments: %w", err)
	}
	return appts, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_market/internal/calendar"
	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository"
	"github.com/Freeeeeet/tutor_market/internal/schedule"
)

// AvailabilityService управляет слотами репетиторов
type AvailabilityService struct {
	store     repository.Store
	generator *schedule.Generator
	logger    *zap.Logger
}

func NewAvailabilityService(store repository.Store, generator *schedule.Generator, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		store:     store,
		generator: generator,
		logger:    logger,
	}
}

// CreateSlots нарезает диапазон на слоты и сохраняет их одной пачкой.
// Диапазон короче одного слота даёт пустой список без ошибки.
func (s *AvailabilityService) CreateSlots(ctx context.Context, tutorID int64, subject string, start, end time.Time) ([]*model.AvailableSlot, error) {
	slots, err := s.generator.Generate(tutorID, strings.TrimSpace(subject), start, end)
	if err != nil {
		return nil, err
	}

	if len(slots) == 0 {
		return slots, nil
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		return uow.Slots().CreateBatch(ctx, slots)
	})
	if err != nil {
		return nil, fmt.Errorf("create slots: %w", err)
	}

	s.logger.Info("Slots created",
		zap.Int64("tutor_id", tutorID),
		zap.Int("count", len(slots)),
		zap.String("batch_id", slots[0].BatchID.String()),
	)

	return slots, nil
}

// ListForTutor возвращает слоты; is_booked учитывает активные записи
func (s *AvailabilityService) ListForTutor(ctx context.Context, tutorID int64) ([]*model.AvailableSlot, error) {
	slots, err := s.store.Slots().GetByTutorID(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

// DeleteSlot удаляет свободный слот владельца
func (s *AvailabilityService) DeleteSlot(ctx context.Context, callerID, slotID int64) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		slot, err := uow.Slots().GetByIDForUpdate(ctx, slotID)
		if err != nil {
			return fmt.Errorf("get slot: %w", err)
		}
		if slot == nil {
			return model.ErrSlotNotFound
		}

		if slot.TutorID != callerID {
			return model.ErrNotSlotOwner
		}

		if slot.IsBooked {
			return model.NewError(model.ErrCodeConflict, "cannot delete a booked slot")
		}

		active, err := uow.Appointments().HasActiveForSlot(ctx, slotID)
		if err != nil {
			return fmt.Errorf("check appointments: %w", err)
		}
		if active {
			return model.NewError(model.ErrCodeConflict, "slot has an active appointment")
		}

		if err := uow.Appointments().DeleteRejectedForSlot(ctx, slotID); err != nil {
			return fmt.Errorf("delete rejected appointments: %w", err)
		}

		if err := uow.Slots().Delete(ctx, slotID); err != nil {
			if errors.Is(err, repository.ErrReferenced) {
				return model.NewError(model.ErrCodeConflict, "slot has an active appointment")
			}
			return fmt.Errorf("delete slot: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Slot deleted",
		zap.Int64("slot_id", slotID),
		zap.Int64("tutor_id", callerID),
	)

	return nil
}

// Calendar выгружает слоты репетитора в iCalendar
func (s *AvailabilityService) Calendar(ctx context.Context, tutorID int64) (string, error) {
	slots, err := s.ListForTutor(ctx, tutorID)
	if err != nil {
		return "", err
	}
	return calendar.Export(slots, time.Now()), nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository"
)

// Geocoder переводит адрес в координаты
type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lng float64, err error)
}

// TaskService управляет жизненным циклом заданий
type TaskService struct {
	store    repository.Store
	geocoder Geocoder // может быть nil
	logger   *zap.Logger
}

func NewTaskService(store repository.Store, geocoder Geocoder, logger *zap.Logger) *TaskService {
	return &TaskService{
		store:    store,
		geocoder: geocoder,
		logger:   logger,
	}
}

// Create публикует задание. Статус всегда Open, что бы ни прислал клиент.
func (s *TaskService) Create(ctx context.Context, ownerID int64, task *model.Task) (*model.Task, error) {
	task.Title = strings.TrimSpace(task.Title)
	task.Subject = strings.TrimSpace(task.Subject)

	if task.Title == "" {
		return nil, model.NewError(model.ErrCodeValidation, "title is required")
	}
	if task.Subject == "" {
		return nil, model.NewError(model.ErrCodeValidation, "subject is required")
	}
	if err := model.ValidateMoney("budget", task.Budget); err != nil {
		return nil, err
	}

	task.OwnerID = ownerID
	task.Status = model.TaskStatusOpen
	task.AcceptedTutorID = nil

	s.geocode(ctx, task)

	if err := s.store.Tasks().Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.logger.Info("Task created",
		zap.Int64("task_id", task.ID),
		zap.Int64("owner_id", ownerID),
		zap.String("subject", task.Subject),
	)

	return task, nil
}

// geocode заполняет координаты по адресу; ошибки геокодера не мешают созданию
func (s *TaskService) geocode(ctx context.Context, task *model.Task) {
	if s.geocoder == nil || task.Address == "" || (task.Lat != 0 || task.Lng != 0) {
		return
	}

	lat, lng, err := s.geocoder.Geocode(ctx, task.Address)
	if err != nil {
		s.logger.Warn("Geocoding failed",
			zap.String("address", task.Address),
			zap.Error(err),
		)
		return
	}

	task.Lat, task.Lng = lat, lng
}

// Get получает задание по ID
func (s *TaskService) Get(ctx context.Context, id int64) (*model.Task, error) {
	task, err := s.store.Tasks().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return nil, model.ErrTaskNotFound
	}
	return task, nil
}

// Search ищет задания в прямоугольнике карты
func (s *TaskService) Search(ctx context.Context, filter repository.TaskFilter) ([]*model.Task, error) {
	if err := validateBounds(filter.Bounds); err != nil {
		return nil, err
	}

	filter.Subject = strings.TrimSpace(filter.Subject)

	tasks, err := s.store.Tasks().Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}
	return tasks, nil
}

func validateBounds(b repository.Bounds) error {
	if b.South > b.North || b.West > b.East {
		return model.NewError(model.ErrCodeValidation, "invalid bounds: south must not exceed north and west must not exceed east")
	}
	if b.North > 90 || b.South < -90 || b.East > 180 || b.West < -180 {
		return model.NewError(model.ErrCodeValidation, "bounds out of range")
	}
	return nil
}

// ListByOwner возвращает задания студента
func (s *TaskService) ListByOwner(ctx context.Context, ownerID int64) ([]*model.Task, error) {
	tasks, err := s.store.Tasks().GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks by owner: %w", err)
	}
	return tasks, nil
}

// UpdateStatus переводит задание по жизненному циклу.
// Open -> InProgress требует репетитора, InProgress -> Completed нет.
func (s *TaskService) UpdateStatus(ctx context.Context, callerID, taskID int64, target model.TaskStatus, tutorID *int64) (*model.Task, error) {
	var updated *model.Task

	err := s.store.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		task, err := uow.Tasks().GetByID(ctx, taskID)
		if err != nil {
			return fmt.Errorf("get task: %w", err)
		}
		if task == nil {
			return model.ErrTaskNotFound
		}

		if !task.IsOwnedBy(callerID) {
			return model.ErrNotTaskOwner
		}

		if !target.Valid() {
			return model.NewError(model.ErrCodeValidation, fmt.Sprintf("unknown status %q", target))
		}

		if !task.Status.CanTransitionTo(target) {
			return model.NewError(model.ErrCodeInvalidState,
				fmt.Sprintf("cannot change status from %s to %s", task.Status, target))
		}

		var bind *int64
		if target == model.TaskStatusInProgress {
			if tutorID == nil || *tutorID <= 0 {
				return model.NewError(model.ErrCodeValidation, "tutor_id is required to start a task")
			}
			bind = tutorID
		}

		ok, err := uow.Tasks().TransitionStatus(ctx, taskID, task.Status, target, bind)
		if err != nil {
			return fmt.Errorf("update task status: %w", err)
		}
		if !ok {
			return model.ErrStatusRace
		}

		updated, err = uow.Tasks().GetByID(ctx, taskID)
		if err != nil {
			return fmt.Errorf("reload task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Task status changed",
		zap.Int64("task_id", taskID),
		zap.String("status", string(target)),
	)

	return updated, nil
}

// Delete удаляет задание владельца, пока оно Open
func (s *TaskService) Delete(ctx context.Context, callerID, taskID int64) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		task, err := uow.Tasks().GetByID(ctx, taskID)
		if err != nil {
			return fmt.Errorf("get task: %w", err)
		}
		if task == nil {
			return model.ErrTaskNotFound
		}

		if !task.IsOwnedBy(callerID) {
			return model.ErrNotTaskOwner
		}

		if task.Status != model.TaskStatusOpen {
			return model.NewError(model.ErrCodeInvalidState, "only open tasks can be deleted")
		}

		if err := uow.Tasks().Delete(ctx, taskID); err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Task deleted", zap.Int64("task_id", taskID))
	return nil
}

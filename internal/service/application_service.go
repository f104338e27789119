package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository"
)

// Decision решение владельца задания по заявке
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// ApplicationWithTutor заявка с именем репетитора, для владельца задания
type ApplicationWithTutor struct {
	*model.TaskApplication
	TutorName string
}

// ApplicationWithTask заявка с заданием, для самого репетитора
type ApplicationWithTask struct {
	*model.TaskApplication
	Task *model.Task // nil, если задание удалено
}

// ApplicationService принимает ставки репетиторов и выбирает одну из них
type ApplicationService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewApplicationService(store repository.Store, logger *zap.Logger) *ApplicationService {
	return &ApplicationService{
		store:  store,
		logger: logger,
	}
}

// Submit создаёт заявку репетитора на задание
func (s *ApplicationService) Submit(ctx context.Context, tutorID, taskID int64, message string, bid decimal.NullDecimal) (*model.TaskApplication, error) {
	if bid.Valid {
		if err := model.ValidateMoney("bid_amount", bid.Decimal); err != nil {
			return nil, err
		}
	}

	app := &model.TaskApplication{
		TaskID:    taskID,
		TutorID:   tutorID,
		Status:    model.ApplicationStatusPending,
		Message:   strings.TrimSpace(message),
		BidAmount: bid,
	}

	// FOR SHARE: принятие другой заявки ждёт конца этой транзакции
	// и увидит новую заявку в RejectPendingExcept
	err := s.store.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		task, err := uow.Tasks().GetByIDForShare(ctx, taskID)
		if err != nil {
			return fmt.Errorf("get task: %w", err)
		}
		if task == nil {
			return model.ErrTaskNotFound
		}

		if task.IsOwnedBy(tutorID) {
			return model.NewError(model.ErrCodePermissionDenied, "cannot apply to your own task")
		}

		if task.Status != model.TaskStatusOpen {
			return model.NewError(model.ErrCodeInvalidState, "task is not open for applications")
		}

		if err := uow.Applications().Create(ctx, app); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return model.ErrDuplicateBid
			}
			if errors.Is(err, repository.ErrReferenced) {
				return model.ErrTaskNotFound
			}
			return fmt.Errorf("create application: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Application submitted",
		zap.Int64("application_id", app.ID),
		zap.Int64("task_id", taskID),
		zap.Int64("tutor_id", tutorID),
	)

	return app, nil
}

// Decide принимает или отклоняет заявку.
// Принятие переводит задание в InProgress и отклоняет остальные pending заявки
// в той же транзакции.
func (s *ApplicationService) Decide(ctx context.Context, callerID, applicationID int64, decision Decision) (*model.TaskApplication, error) {
	if decision != DecisionAccept && decision != DecisionReject {
		return nil, model.NewError(model.ErrCodeValidation, fmt.Sprintf("unknown decision %q", decision))
	}

	var (
		decided  *model.TaskApplication
		rejected int64
	)

	err := s.store.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		app, err := uow.Applications().GetByID(ctx, applicationID)
		if err != nil {
			return fmt.Errorf("get application: %w", err)
		}
		if app == nil {
			return model.ErrApplicationNotFound
		}

		// строка задания блокируется до смены статусов заявок, иначе два
		// параллельных принятия ждут друг друга на заявках и индексе
		task, err := uow.Tasks().GetByIDForUpdate(ctx, app.TaskID)
		if err != nil {
			return fmt.Errorf("get task: %w", err)
		}
		if task == nil {
			return model.ErrTaskNotFound
		}

		if !task.IsOwnedBy(callerID) {
			return model.ErrNotTaskOwner
		}

		if !app.IsPending() {
			return model.ErrAlreadyDecided
		}

		if decision == DecisionReject {
			ok, err := uow.Applications().TransitionStatus(ctx, app.ID, model.ApplicationStatusPending, model.ApplicationStatusRejected)
			if err != nil {
				return fmt.Errorf("reject application: %w", err)
			}
			if !ok {
				return model.ErrAlreadyDecided
			}
			app.Status = model.ApplicationStatusRejected
			decided = app
			return nil
		}

		ok, err := uow.Applications().TransitionStatus(ctx, app.ID, model.ApplicationStatusPending, model.ApplicationStatusAccepted)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return model.NewError(model.ErrCodeConflict, "task already has an accepted application")
			}
			return fmt.Errorf("accept application: %w", err)
		}
		if !ok {
			return model.ErrAlreadyDecided
		}

		tutorID := app.TutorID
		ok, err = uow.Tasks().TransitionStatus(ctx, task.ID, model.TaskStatusOpen, model.TaskStatusInProgress, &tutorID)
		if err != nil {
			return fmt.Errorf("start task: %w", err)
		}
		if !ok {
			return model.NewError(model.ErrCodeInvalidState, "task is no longer open")
		}

		rejected, err = uow.Applications().RejectPendingExcept(ctx, task.ID, app.ID)
		if err != nil {
			return fmt.Errorf("reject other applications: %w", err)
		}

		app.Status = model.ApplicationStatusAccepted
		decided = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Application decided",
		zap.Int64("application_id", applicationID),
		zap.String("decision", string(decision)),
		zap.Int64("auto_rejected", rejected),
	)

	return decided, nil
}

// ListForTask возвращает заявки задания с именами репетиторов
func (s *ApplicationService) ListForTask(ctx context.Context, taskID int64) ([]ApplicationWithTutor, error) {
	apps, err := s.store.Applications().GetByTaskID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	ids := make([]int64, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.TutorID)
	}

	names, err := s.store.Users().DisplayNames(ctx, ids)
	if err != nil {
		// имена не обязательны, отдаём заявки без них
		s.logger.Warn("Failed to load tutor names", zap.Int64("task_id", taskID), zap.Error(err))
		names = map[int64]string{}
	}

	result := make([]ApplicationWithTutor, 0, len(apps))
	for _, app := range apps {
		result = append(result, ApplicationWithTutor{
			TaskApplication: app,
			TutorName:       names[app.TutorID],
		})
	}

	return result, nil
}

// ListByTutor возвращает заявки репетитора вместе с заданиями
func (s *ApplicationService) ListByTutor(ctx context.Context, tutorID int64) ([]ApplicationWithTask, error) {
	apps, err := s.store.Applications().GetByTutorID(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("list tutor applications: %w", err)
	}

	tasks := make(map[int64]*model.Task)
	result := make([]ApplicationWithTask, 0, len(apps))
	for _, app := range apps {
		task, seen := tasks[app.TaskID]
		if !seen {
			task, err = s.store.Tasks().GetByID(ctx, app.TaskID)
			if err != nil {
				return nil, fmt.Errorf("get task: %w", err)
			}
			tasks[app.TaskID] = task
		}

		result = append(result, ApplicationWithTask{TaskApplication: app, Task: task})
	}

	return result, nil
}

// ListPendingForOwner возвращает pending заявки на открытые задания владельца
func (s *ApplicationService) ListPendingForOwner(ctx context.Context, ownerID int64) ([]ApplicationWithTask, error) {
	tasks, err := s.store.Tasks().GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list owner tasks: %w", err)
	}

	var result []ApplicationWithTask
	for _, task := range tasks {
		if task.Status != model.TaskStatusOpen {
			continue
		}

		apps, err := s.store.Applications().GetByTaskID(ctx, task.ID)
		if err != nil {
			return nil, fmt.Errorf("list applications: %w", err)
		}

		for _, app := range apps {
			if app.IsPending() {
				result = append(result, ApplicationWithTask{TaskApplication: app, Task: task})
			}
		}
	}

	return result, nil
}

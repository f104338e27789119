package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/base"
)

const applicationColumns = `id, task_id, tutor_id, status, message, bid_amount, applied_at, updated_at`

type applicationRepository struct {
	base.Repository
}

func newApplicationRepository(q base.Querier) *applicationRepository {
	return &applicationRepository{Repository: base.NewRepository(q)}
}

// Create создаёт заявку; повтор пары (task, tutor) даёт ErrDuplicate
func (r *applicationRepository) Create(ctx context.Context, app *model.TaskApplication) error {
	query := `
		INSERT INTO task_applications (task_id, tutor_id, status, message, bid_amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, applied_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		app.TaskID,
		app.TutorID,
		app.Status,
		app.Message,
		base.ToNullNumeric(app.BidAmount),
	).Scan(&app.ID, &app.AppliedAt, &app.UpdatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create application: %w", ErrDuplicate)
		}
		if base.IsForeignKeyViolation(err) {
			return fmt.Errorf("create application: %w", ErrReferenced)
		}
		return fmt.Errorf("create application: %w", err)
	}

	return nil
}

// GetByID получает заявку по ID
func (r *applicationRepository) GetByID(ctx context.Context, id int64) (*model.TaskApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM task_applications WHERE id = $1`

	app, err := scanApplication(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get application by id: %w", err)
	}

	return app, nil
}

// GetByTaskID получает все заявки на задание
func (r *applicationRepository) GetByTaskID(ctx context.Context, taskID int64) ([]*model.TaskApplication, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM task_applications
		WHERE task_id = $1
		ORDER BY applied_at ASC
	`
	return r.list(ctx, query, taskID)
}

// GetByTutorID получает все заявки репетитора
func (r *applicationRepository) GetByTutorID(ctx context.Context, tutorID int64) ([]*model.TaskApplication, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM task_applications
		WHERE tutor_id = $1
		ORDER BY applied_at DESC
	`
	return r.list(ctx, query, tutorID)
}

// TransitionStatus compare-and-set статуса заявки
func (r *applicationRepository) TransitionStatus(ctx context.Context, id int64, from, to model.ApplicationStatus) (bool, error) {
	query := `
		UPDATE task_applications
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	affected, err := r.ExecAffected(ctx, query, to, id, from)
	if err != nil {
		// второй accepted на задание отсекает частичный уникальный индекс
		if base.IsUniqueViolation(err) {
			return false, fmt.Errorf("transition application status: %w", ErrDuplicate)
		}
		return false, fmt.Errorf("transition application status: %w", err)
	}

	return affected == 1, nil
}

// RejectPendingExcept отклоняет остальные pending заявки задания
func (r *applicationRepository) RejectPendingExcept(ctx context.Context, taskID, keepID int64) (int64, error) {
	query := `
		UPDATE task_applications
		SET status = 'rejected', updated_at = NOW()
		WHERE task_id = $1 AND id <> $2 AND status = 'pending'
	`

	affected, err := r.ExecAffected(ctx, query, taskID, keepID)
	if err != nil {
		return 0, fmt.Errorf("reject sibling applications: %w", err)
	}

	return affected, nil
}

func (r *applicationRepository) list(ctx context.Context, query string, args ...any) ([]*model.TaskApplication, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var apps []*model.TaskApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}

func scanApplication(row base.Scanner) (*model.TaskApplication, error) {
	var (
		app model.TaskApplication
		bid pgtype.Numeric
	)

	err := row.Scan(
		&app.ID,
		&app.TaskID,
		&app.TutorID,
		&app.Status,
		&app.Message,
		&bid,
		&app.AppliedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	app.BidAmount = base.FromNullNumeric(bid)
	return &app, nil
}

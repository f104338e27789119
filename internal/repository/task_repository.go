package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/base"
)

var taskColumns = []string{
	"id", "owner_id", "title", "subject", "description", "address", "lat", "lng",
	"budget", "deadline", "posted_by", "status", "accepted_tutor_id", "posted_at", "updated_at",
}

type taskRepository struct {
	base.Repository
	builder squirrel.StatementBuilderType
}

func newTaskRepository(q base.Querier) *taskRepository {
	return &taskRepository{
		Repository: base.NewRepository(q),
		builder:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create создаёт новое задание
func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	query, args, err := r.builder.
		Insert("tasks").
		Columns("owner_id", "title", "subject", "description", "address", "lat", "lng",
			"budget", "deadline", "posted_by", "status", "accepted_tutor_id").
		Values(task.OwnerID, task.Title, task.Subject, task.Description, task.Address, task.Lat, task.Lng,
			base.ToNumeric(task.Budget), task.Deadline, task.PostedBy, task.Status, task.AcceptedTutorID).
		Suffix("RETURNING id, posted_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create task query: %w", err)
	}

	err = r.QueryRow(ctx, query, args...).Scan(&task.ID, &task.PostedAt, &task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

// GetByID получает задание по ID
func (r *taskRepository) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	return r.getOne(ctx, id, "")
}

// GetByIDForShare получает задание под FOR SHARE
func (r *taskRepository) GetByIDForShare(ctx context.Context, id int64) (*model.Task, error) {
	return r.getOne(ctx, id, "FOR SHARE")
}

// GetByIDForUpdate получает задание под FOR UPDATE
func (r *taskRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.Task, error) {
	return r.getOne(ctx, id, "FOR UPDATE")
}

func (r *taskRepository) getOne(ctx context.Context, id int64, lock string) (*model.Task, error) {
	b := r.builder.
		Select(taskColumns...).
		From("tasks").
		Where(squirrel.Eq{"id": id})
	if lock != "" {
		b = b.Suffix(lock)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get task query: %w", err)
	}

	task, err := scanTask(r.QueryRow(ctx, query, args...))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}

	return task, nil
}

// GetByOwnerID получает все задания студента
func (r *taskRepository) GetByOwnerID(ctx context.Context, ownerID int64) ([]*model.Task, error) {
	return r.list(ctx, r.builder.
		Select(taskColumns...).
		From("tasks").
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("posted_at DESC"))
}

// Search ищет задания в прямоугольнике карты, опционально по предмету
func (r *taskRepository) Search(ctx context.Context, filter TaskFilter) ([]*model.Task, error) {
	b := r.builder.
		Select(taskColumns...).
		From("tasks").
		Where(squirrel.LtOrEq{"lat": filter.Bounds.North}).
		Where(squirrel.GtOrEq{"lat": filter.Bounds.South}).
		Where(squirrel.LtOrEq{"lng": filter.Bounds.East}).
		Where(squirrel.GtOrEq{"lng": filter.Bounds.West}).
		OrderBy("posted_at DESC")

	if filter.Subject != "" {
		b = b.Where(squirrel.ILike{"subject": base.ContainsPattern(filter.Subject)})
	}

	return r.list(ctx, b)
}

// TransitionStatus меняет статус через compare-and-set по текущему статусу
func (r *taskRepository) TransitionStatus(ctx context.Context, id int64, from, to model.TaskStatus, tutorID *int64) (bool, error) {
	query := `
		UPDATE tasks
		SET status = $1,
		    accepted_tutor_id = COALESCE($2, accepted_tutor_id),
		    updated_at = NOW()
		WHERE id = $3 AND status = $4
	`

	affected, err := r.ExecAffected(ctx, query, to, tutorID, id, from)
	if err != nil {
		return false, fmt.Errorf("transition task status: %w", err)
	}

	return affected == 1, nil
}

// Delete удаляет задание (заявки удалятся каскадом)
func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("task not found")
	}

	return nil
}

func (r *taskRepository) list(ctx context.Context, b squirrel.SelectBuilder) ([]*model.Task, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list tasks query: %w", err)
	}

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

func scanTask(row base.Scanner) (*model.Task, error) {
	var (
		task   model.Task
		budget pgtype.Numeric
	)

	err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&task.Subject,
		&task.Description,
		&task.Address,
		&task.Lat,
		&task.Lng,
		&budget,
		&task.Deadline,
		&task.PostedBy,
		&task.Status,
		&task.AcceptedTutorID,
		&task.PostedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Budget = base.FromNumeric(budget)
	return &task, nil
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository"
)

type taskRepository struct {
	with access
}

func (r *taskRepository) Create(_ context.Context, task *model.Task) error {
	return r.with(func(st *state) error {
		task.ID = st.id()
		task.PostedAt = now()
		task.UpdatedAt = task.PostedAt
		st.tasks[task.ID] = *task
		return nil
	})
}

func (r *taskRepository) GetByID(_ context.Context, id int64) (*model.Task, error) {
	var out *model.Task
	err := r.with(func(st *state) error {
		if t, ok := st.tasks[id]; ok {
			out = &t
		}
		return nil
	})
	return out, err
}

// GetByIDForShare совпадает с GetByID: транзакции в памяти уже сериализованы
func (r *taskRepository) GetByIDForShare(ctx context.Context, id int64) (*model.Task, error) {
	return r.GetByID(ctx, id)
}

func (r *taskRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.Task, error) {
	return r.GetByID(ctx, id)
}

func (r *taskRepository) GetByOwnerID(_ context.Context, ownerID int64) ([]*model.Task, error) {
	return r.filter(func(t model.Task) bool { return t.OwnerID == ownerID })
}

func (r *taskRepository) Search(_ context.Context, f repository.TaskFilter) ([]*model.Task, error) {
	subject := strings.ToLower(f.Subject)
	return r.filter(func(t model.Task) bool {
		if t.Lat > f.Bounds.North || t.Lat < f.Bounds.South {
			return false
		}
		if t.Lng > f.Bounds.East || t.Lng < f.Bounds.West {
			return false
		}
		return subject == "" || strings.Contains(strings.ToLower(t.Subject), subject)
	})
}

func (r *taskRepository) TransitionStatus(_ context.Context, id int64, from, to model.TaskStatus, tutorID *int64) (bool, error) {
	var ok bool
	err := r.with(func(st *state) error {
		t, found := st.tasks[id]
		if !found || t.Status != from {
			return nil
		}
		t.Status = to
		if tutorID != nil {
			v := *tutorID
			t.AcceptedTutorID = &v
		}
		t.UpdatedAt = now()
		st.tasks[id] = t
		ok = true
		return nil
	})
	return ok, err
}

// Delete удаляет задание вместе с заявками
func (r *taskRepository) Delete(_ context.Context, id int64) error {
	return r.with(func(st *state) error {
		if _, ok := st.tasks[id]; !ok {
			return fmt.Errorf("task not found")
		}
		delete(st.tasks, id)
		for appID, app := range st.applications {
			if app.TaskID == id {
				delete(st.applications, appID)
			}
		}
		return nil
	})
}

func (r *taskRepository) filter(keep func(t model.Task) bool) ([]*model.Task, error) {
	var out []*model.Task
	err := r.with(func(st *state) error {
		for _, t := range st.tasks {
			if keep(t) {
				t := t
				out = append(out, &t)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].PostedAt.Equal(out[j].PostedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].PostedAt.After(out[j].PostedAt)
	})
	return out, err
}

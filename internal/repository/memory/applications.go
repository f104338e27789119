package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository"
)

type applicationRepository struct {
	with access
}

func (r *applicationRepository) Create(_ context.Context, app *model.TaskApplication) error {
	return r.with(func(st *state) error {
		if _, ok := st.tasks[app.TaskID]; !ok {
			return fmt.Errorf("create application: %w", repository.ErrReferenced)
		}
		for _, existing := range st.applications {
			if existing.TaskID == app.TaskID && existing.TutorID == app.TutorID {
				return fmt.Errorf("create application: %w", repository.ErrDuplicate)
			}
		}
		if app.Status == model.ApplicationStatusAccepted && st.hasAcceptedApplication(app.TaskID, 0) {
			return fmt.Errorf("create application: %w", repository.ErrDuplicate)
		}

		app.ID = st.id()
		app.AppliedAt = now()
		app.UpdatedAt = app.AppliedAt
		st.applications[app.ID] = *app
		return nil
	})
}

func (r *applicationRepository) GetByID(_ context.Context, id int64) (*model.TaskApplication, error) {
	var out *model.TaskApplication
	err := r.with(func(st *state) error {
		if a, ok := st.applications[id]; ok {
			out = &a
		}
		return nil
	})
	return out, err
}

func (r *applicationRepository) GetByTaskID(_ context.Context, taskID int64) ([]*model.TaskApplication, error) {
	apps, err := r.filter(func(a model.TaskApplication) bool { return a.TaskID == taskID })
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })
	return apps, err
}

func (r *applicationRepository) GetByTutorID(_ context.Context, tutorID int64) ([]*model.TaskApplication, error) {
	apps, err := r.filter(func(a model.TaskApplication) bool { return a.TutorID == tutorID })
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID > apps[j].ID })
	return apps, err
}

func (r *applicationRepository) TransitionStatus(_ context.Context, id int64, from, to model.ApplicationStatus) (bool, error) {
	var ok bool
	err := r.with(func(st *state) error {
		a, found := st.applications[id]
		if !found || a.Status != from {
			return nil
		}
		if to == model.ApplicationStatusAccepted && st.hasAcceptedApplication(a.TaskID, a.ID) {
			return fmt.Errorf("transition application status: %w", repository.ErrDuplicate)
		}
		a.Status = to
		a.UpdatedAt = now()
		st.applications[id] = a
		ok = true
		return nil
	})
	return ok, err
}

func (r *applicationRepository) RejectPendingExcept(_ context.Context, taskID, keepID int64) (int64, error) {
	var n int64
	err := r.with(func(st *state) error {
		for id, a := range st.applications {
			if a.TaskID != taskID || id == keepID || a.Status != model.ApplicationStatusPending {
				continue
			}
			a.Status = model.ApplicationStatusRejected
			a.UpdatedAt = now()
			st.applications[id] = a
			n++
		}
		return nil
	})
	return n, err
}

func (r *applicationRepository) filter(keep func(a model.TaskApplication) bool) ([]*model.TaskApplication, error) {
	var out []*model.TaskApplication
	err := r.with(func(st *state) error {
		for _, a := range st.applications {
			if keep(a) {
				a := a
				out = append(out, &a)
			}
		}
		return nil
	})
	return out, err
}

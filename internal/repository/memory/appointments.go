package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository"
)

type appointmentRepository struct {
	with access
}

func (r *appointmentRepository) Create(_ context.Context, appt *model.Appointment) error {
	return r.with(func(st *state) error {
		if _, ok := st.slots[appt.SlotID]; !ok {
			return fmt.Errorf("create appointment: %w", repository.ErrReferenced)
		}
		if appt.IsActive() && st.hasActiveAppointment(appt.SlotID) {
			return fmt.Errorf("create appointment: %w", repository.ErrDuplicate)
		}

		appt.ID = st.id()
		appt.CreatedAt = now()
		appt.UpdatedAt = appt.CreatedAt

		row := *appt
		row.Slot = nil
		st.appointments[appt.ID] = row
		return nil
	})
}

func (r *appointmentRepository) GetByID(_ context.Context, id int64) (*model.Appointment, error) {
	var out *model.Appointment
	err := r.with(func(st *state) error {
		if a, ok := st.appointments[id]; ok {
			out = withSlot(st, a)
		}
		return nil
	})
	return out, err
}

func (r *appointmentRepository) HasActiveForSlot(_ context.Context, slotID int64) (bool, error) {
	var active bool
	err := r.with(func(st *state) error {
		active = st.hasActiveAppointment(slotID)
		return nil
	})
	return active, err
}

func (r *appointmentRepository) GetByTutorID(_ context.Context, tutorID int64) ([]*model.Appointment, error) {
	return r.filter(func(a model.Appointment) bool { return a.TutorID == tutorID })
}

func (r *appointmentRepository) GetByStudentID(_ context.Context, studentID int64) ([]*model.Appointment, error) {
	return r.filter(func(a model.Appointment) bool { return a.StudentID == studentID })
}

func (r *appointmentRepository) TransitionStatus(_ context.Context, id int64, from, to model.AppointmentStatus) (bool, error) {
	var ok bool
	err := r.with(func(st *state) error {
		a, found := st.appointments[id]
		if !found || a.Status != from {
			return nil
		}
		if !a.IsActive() && to != model.AppointmentStatusRejected && st.hasActiveAppointment(a.SlotID) {
			return fmt.Errorf("transition appointment status: %w", repository.ErrDuplicate)
		}
		a.Status = to
		a.UpdatedAt = now()
		st.appointments[id] = a
		ok = true
		return nil
	})
	return ok, err
}

func (r *appointmentRepository) DeleteRejectedForSlot(_ context.Context, slotID int64) error {
	return r.with(func(st *state) error {
		for id, a := range st.appointments {
			if a.SlotID == slotID && a.Status == model.AppointmentStatusRejected {
				delete(st.appointments, id)
			}
		}
		return nil
	})
}

func (r *appointmentRepository) filter(keep func(a model.Appointment) bool) ([]*model.Appointment, error) {
	var out []*model.Appointment
	err := r.with(func(st *state) error {
		for _, a := range st.appointments {
			if keep(a) {
				out = append(out, withSlot(st, a))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		si, sj := out[i].Slot, out[j].Slot
		if si != nil && sj != nil && !si.StartTime.Equal(sj.StartTime) {
			return si.StartTime.Before(sj.StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func withSlot(st *state, a model.Appointment) *model.Appointment {
	if s, ok := st.slots[a.SlotID]; ok {
		a.Slot = &s
	}
	return &a
}

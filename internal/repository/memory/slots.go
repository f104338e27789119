package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository"
)

type slotRepository struct {
	with access
}

func (r *slotRepository) CreateBatch(_ context.Context, slots []*model.AvailableSlot) error {
	return r.with(func(st *state) error {
		created := now()
		for _, slot := range slots {
			slot.ID = st.id()
			slot.CreatedAt = created
			st.slots[slot.ID] = *slot
		}
		return nil
	})
}

func (r *slotRepository) GetByID(_ context.Context, id int64) (*model.AvailableSlot, error) {
	var out *model.AvailableSlot
	err := r.with(func(st *state) error {
		if s, ok := st.slots[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

// GetByIDForUpdate совпадает с GetByID: транзакции здесь и так сериализованы
func (r *slotRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.AvailableSlot, error) {
	return r.GetByID(ctx, id)
}

func (r *slotRepository) GetByTutorID(_ context.Context, tutorID int64) ([]*model.AvailableSlot, error) {
	var out []*model.AvailableSlot
	err := r.with(func(st *state) error {
		for _, s := range st.slots {
			if s.TutorID != tutorID {
				continue
			}
			s := s
			s.IsBooked = s.IsBooked || st.hasActiveAppointment(s.ID)
			out = append(out, &s)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, err
}

func (r *slotRepository) MarkBooked(_ context.Context, id int64) (bool, error) {
	var ok bool
	err := r.with(func(st *state) error {
		s, found := st.slots[id]
		if !found || s.IsBooked {
			return nil
		}
		s.IsBooked = true
		st.slots[id] = s
		ok = true
		return nil
	})
	return ok, err
}

func (r *slotRepository) Delete(_ context.Context, id int64) error {
	return r.with(func(st *state) error {
		if _, ok := st.slots[id]; !ok {
			return fmt.Errorf("slot not found")
		}
		for _, a := range st.appointments {
			if a.SlotID == id {
				return fmt.Errorf("delete slot: %w", repository.ErrReferenced)
			}
		}
		delete(st.slots, id)
		return nil
	})
}

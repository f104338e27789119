package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository"
)

type userRepository struct {
	with access
}

func (r *userRepository) Create(_ context.Context, user *model.User) error {
	return r.with(func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, user.Email) {
				return fmt.Errorf("create user: %w", repository.ErrDuplicate)
			}
			if user.TelegramID != nil && u.TelegramID != nil && *u.TelegramID == *user.TelegramID {
				return fmt.Errorf("create user: %w", repository.ErrDuplicate)
			}
		}
		user.ID = st.id()
		user.CreatedAt = now()
		st.users[user.ID] = *user
		return nil
	})
}

func (r *userRepository) GetByID(_ context.Context, id int64) (*model.User, error) {
	var out *model.User
	err := r.with(func(st *state) error {
		if u, ok := st.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *userRepository) GetByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	var out *model.User
	err := r.with(func(st *state) error {
		for _, u := range st.users {
			if u.TelegramID != nil && *u.TelegramID == telegramID {
				u := u
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *userRepository) LinkTelegram(_ context.Context, userID, telegramID int64) error {
	return r.with(func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return fmt.Errorf("user not found")
		}
		for id, other := range st.users {
			if id != userID && other.TelegramID != nil && *other.TelegramID == telegramID {
				return fmt.Errorf("link telegram: %w", repository.ErrDuplicate)
			}
		}
		tg := telegramID
		u.TelegramID = &tg
		st.users[userID] = u
		return nil
	})
}

func (r *userRepository) UpdateProfile(_ context.Context, user *model.User) error {
	return r.with(func(st *state) error {
		u, ok := st.users[user.ID]
		if !ok {
			return fmt.Errorf("user not found")
		}
		u.FirstName = user.FirstName
		u.LastName = user.LastName
		u.Profile = user.Profile
		st.users[user.ID] = u
		return nil
	})
}

func (r *userRepository) SearchTutors(_ context.Context, f repository.TutorFilter) ([]*model.User, error) {
	subject := strings.ToLower(f.Subject)

	var out []*model.User
	err := r.with(func(st *state) error {
		for _, u := range st.users {
			if u.Role != model.RoleTutor {
				continue
			}
			if u.Lat > f.Bounds.North || u.Lat < f.Bounds.South || u.Lng > f.Bounds.East || u.Lng < f.Bounds.West {
				continue
			}
			if subject != "" && !strings.Contains(strings.ToLower(u.Subjects), subject) {
				continue
			}
			u := u
			out = append(out, &u)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *userRepository) DisplayNames(_ context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	err := r.with(func(st *state) error {
		for _, id := range ids {
			if u, ok := st.users[id]; ok {
				names[id] = u.DisplayName()
			}
		}
		return nil
	})
	return names, err
}

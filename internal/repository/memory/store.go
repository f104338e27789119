// Package memory реализует repository.Store в памяти процесса.
// Используется для STORAGE_BACKEND=memory и в тестах сервисов.
package memory

import (
	"context"
	"sync"

	"github.com/Freeeeeet/tutor_market/internal/repository"
)

// access выполняет fn над состоянием хранилища
type access func(fn func(st *state) error) error

type Store struct {
	mu sync.Mutex
	st *state
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) locked(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func (s *Store) Tasks() repository.TaskRepository { return &taskRepository{with: s.locked} }
func (s *Store) Applications() repository.ApplicationRepository {
	return &applicationRepository{with: s.locked}
}
func (s *Store) Slots() repository.SlotRepository { return &slotRepository{with: s.locked} }
func (s *Store) Appointments() repository.AppointmentRepository {
	return &appointmentRepository{with: s.locked}
}
func (s *Store) Users() repository.UserRepository { return &userRepository{with: s.locked} }

// WithinTx сериализует транзакции: fn работает с копией состояния,
// копия заменяет оригинал только при успехе.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	draft := s.st.clone()
	direct := func(fn func(st *state) error) error { return fn(draft) }

	if err := fn(ctx, &unitOfWork{with: direct}); err != nil {
		return err
	}

	s.st = draft
	return nil
}

func (s *Store) Ping(context.Context) error {
	return nil
}

type unitOfWork struct {
	with access
}

func (u *unitOfWork) Tasks() repository.TaskRepository { return &taskRepository{with: u.with} }
func (u *unitOfWork) Applications() repository.ApplicationRepository {
	return &applicationRepository{with: u.with}
}
func (u *unitOfWork) Slots() repository.SlotRepository { return &slotRepository{with: u.with} }
func (u *unitOfWork) Appointments() repository.AppointmentRepository {
	return &appointmentRepository{with: u.with}
}
func (u *unitOfWork) Users() repository.UserRepository { return &userRepository{with: u.with} }

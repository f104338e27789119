package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freeeeeet/tutor_market/internal/repository/base"
)

type unitOfWork struct {
	tasks        *taskRepository
	applications *applicationRepository
	slots        *slotRepository
	appointments *appointmentRepository
	users        *userRepository
}

func newUnitOfWork(q base.Querier) *unitOfWork {
	return &unitOfWork{
		tasks:        newTaskRepository(q),
		applications: newApplicationRepository(q),
		slots:        newSlotRepository(q),
		appointments: newAppointmentRepository(q),
		users:        newUserRepository(q),
	}
}

func (u *unitOfWork) Tasks() TaskRepository               { return u.tasks }
func (u *unitOfWork) Applications() ApplicationRepository { return u.applications }
func (u *unitOfWork) Slots() SlotRepository               { return u.slots }
func (u *unitOfWork) Appointments() AppointmentRepository { return u.appointments }
func (u *unitOfWork) Users() UserRepository               { return u.users }

// PostgresStore хранилище поверх пула соединений
type PostgresStore struct {
	*unitOfWork
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		unitOfWork: newUnitOfWork(pool),
		pool:       pool,
	}
}

// WithinTx выполняет fn в транзакции READ COMMITTED.
// Гонки разрешаются CAS обновлениями, FOR UPDATE и уникальными индексами.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		// после Commit откат ничего не делает
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, newUnitOfWork(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

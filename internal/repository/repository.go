package repository

import (
	"context"
	"errors"

	"github.com/Freeeeeet/tutor_market/internal/model"
)

var (
	// ErrDuplicate нарушено ограничение уникальности
	ErrDuplicate = errors.New("duplicate record")
	// ErrReferenced запись нельзя удалить или создать из-за внешнего ключа
	ErrReferenced = errors.New("foreign key violation")
)

// Bounds прямоугольник карты для поиска заданий
type Bounds struct {
	North float64
	South float64
	East  float64
	West  float64
}

// TaskFilter параметры поиска заданий
type TaskFilter struct {
	Bounds  Bounds
	Subject string // подстрока, без учёта регистра
}

// TutorFilter параметры поиска репетиторов
type TutorFilter struct {
	Bounds  Bounds
	Subject string // подстрока в списке предметов, без учёта регистра
}

// Все Get* методы возвращают nil, nil, если запись не найдена.

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id int64) (*model.Task, error)
	// GetByIDForShare держит разделяемую блокировку строки до конца транзакции:
	// смена статуса ждёт, пока идёт подача заявки
	GetByIDForShare(ctx context.Context, id int64) (*model.Task, error)
	// GetByIDForUpdate блокирует строку задания: решения по заявкам одного задания
	// идут по очереди
	GetByIDForUpdate(ctx context.Context, id int64) (*model.Task, error)
	GetByOwnerID(ctx context.Context, ownerID int64) ([]*model.Task, error)
	Search(ctx context.Context, filter TaskFilter) ([]*model.Task, error)
	// TransitionStatus меняет статус только если текущий равен from.
	// tutorID == nil сохраняет текущего репетитора.
	TransitionStatus(ctx context.Context, id int64, from, to model.TaskStatus, tutorID *int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *model.TaskApplication) error
	GetByID(ctx context.Context, id int64) (*model.TaskApplication, error)
	GetByTaskID(ctx context.Context, taskID int64) ([]*model.TaskApplication, error)
	GetByTutorID(ctx context.Context, tutorID int64) ([]*model.TaskApplication, error)
	TransitionStatus(ctx context.Context, id int64, from, to model.ApplicationStatus) (bool, error)
	// RejectPendingExcept отклоняет все pending заявки задания, кроме keepID
	RejectPendingExcept(ctx context.Context, taskID, keepID int64) (int64, error)
}

type SlotRepository interface {
	CreateBatch(ctx context.Context, slots []*model.AvailableSlot) error
	GetByID(ctx context.Context, id int64) (*model.AvailableSlot, error)
	// GetByIDForUpdate блокирует строку слота до конца транзакции
	GetByIDForUpdate(ctx context.Context, id int64) (*model.AvailableSlot, error)
	// GetByTutorID возвращает слоты с вычисленным is_booked
	GetByTutorID(ctx context.Context, tutorID int64) ([]*model.AvailableSlot, error)
	// MarkBooked выставляет is_booked, только если слот ещё свободен
	MarkBooked(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type AppointmentRepository interface {
	Create(ctx context.Context, appt *model.Appointment) error
	GetByID(ctx context.Context, id int64) (*model.Appointment, error)
	HasActiveForSlot(ctx context.Context, slotID int64) (bool, error)
	GetByTutorID(ctx context.Context, tutorID int64) ([]*model.Appointment, error)
	GetByStudentID(ctx context.Context, studentID int64) ([]*model.Appointment, error)
	TransitionStatus(ctx context.Context, id int64, from, to model.AppointmentStatus) (bool, error)
	DeleteRejectedForSlot(ctx context.Context, slotID int64) error
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	LinkTelegram(ctx context.Context, userID, telegramID int64) error
	// UpdateProfile сохраняет имя и профиль по user.ID
	UpdateProfile(ctx context.Context, user *model.User) error
	SearchTutors(ctx context.Context, filter TutorFilter) ([]*model.User, error)
	// DisplayNames возвращает имена для отображения; отсутствующие id пропускаются
	DisplayNames(ctx context.Context, ids []int64) (map[int64]string, error)
}

// UnitOfWork набор репозиториев, привязанных к одной транзакции
type UnitOfWork interface {
	Tasks() TaskRepository
	Applications() ApplicationRepository
	Slots() SlotRepository
	Appointments() AppointmentRepository
	Users() UserRepository
}

// Store даёт доступ к репозиториям вне транзакции и открывает транзакции.
// fn получает UnitOfWork, действующий только внутри вызова; ошибка fn
// откатывает все изменения.
type Store interface {
	UnitOfWork
	WithinTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
	Ping(ctx context.Context) error
}

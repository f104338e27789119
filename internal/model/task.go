package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "Open"       // Ожидает репетитора
	TaskStatusInProgress TaskStatus = "InProgress" // Репетитор выбран
	TaskStatusCompleted  TaskStatus = "Completed"  // Завершено, терминальный статус
)

// Task задание, опубликованное студентом
type Task struct {
	ID              int64           `json:"id"`
	OwnerID         int64           `json:"user_id"`
	Title           string          `json:"title"`
	Subject         string          `json:"subject"`
	Description     string          `json:"description"`
	Address         string          `json:"address"`
	Lat             float64         `json:"lat"`
	Lng             float64         `json:"lng"`
	Budget          decimal.Decimal `json:"budget"`
	Deadline        *time.Time      `json:"deadline"`
	PostedBy        string          `json:"posted_by"`
	Status          TaskStatus      `json:"status"`
	AcceptedTutorID *int64          `json:"accepted_tutor_id"` // nil, пока статус Open
	PostedAt        time.Time       `json:"posted_date"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Valid проверяет, что статус входит в известный набор
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusOpen, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo допускает только Open -> InProgress -> Completed
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	switch s {
	case TaskStatusOpen:
		return next == TaskStatusInProgress
	case TaskStatusInProgress:
		return next == TaskStatusCompleted
	}
	return false
}

// IsOwnedBy проверяет владельца задания
func (t *Task) IsOwnedBy(userID int64) bool {
	return t != nil && t.OwnerID == userID
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// TaskApplication заявка (ставка) репетитора на задание
type TaskApplication struct {
	ID        int64               `json:"id"`
	TaskID    int64               `json:"task_id"`
	TutorID   int64               `json:"tutor_id"`
	Status    ApplicationStatus   `json:"status"`
	Message   string              `json:"message,omitempty"`
	BidAmount decimal.NullDecimal `json:"bid_amount"`
	AppliedAt time.Time           `json:"applied_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// IsPending checks if application still awaits a decision
func (a *TaskApplication) IsPending() bool {
	return a.Status == ApplicationStatusPending
}

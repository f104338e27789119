package transport

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/service"
)

type TaskStatusResponse struct {
	ID      int64            `json:"id"`
	Status  model.TaskStatus `json:"status"`
	TutorID *int64           `json:"tutor_id"`
}

func NewTaskStatus(task *model.Task) TaskStatusResponse {
	return TaskStatusResponse{ID: task.ID, Status: task.Status, TutorID: task.AcceptedTutorID}
}

// OwnerApplication заявка глазами владельца задания
type OwnerApplication struct {
	ID        int64                   `json:"id"`
	TaskID    int64                   `json:"task_id"`
	TutorID   int64                   `json:"tutor_id"`
	TutorName string                  `json:"tutor_name"`
	Status    model.ApplicationStatus `json:"status"`
	Message   string                  `json:"message"`
	BidAmount *decimal.Decimal        `json:"bid_amount"`
	AppliedAt time.Time               `json:"applied_at"`
}

func NewOwnerApplication(app service.ApplicationWithTutor) OwnerApplication {
	return OwnerApplication{
		ID:        app.ID,
		TaskID:    app.TaskID,
		TutorID:   app.TutorID,
		TutorName: app.TutorName,
		Status:    app.Status,
		Message:   app.Message,
		BidAmount: bidPtr(app.BidAmount),
		AppliedAt: app.AppliedAt,
	}
}

// TutorApplication заявка глазами репетитора, с заданием
type TutorApplication struct {
	ID         int64                   `json:"id"`
	TaskID     int64                   `json:"task_id"`
	TaskTitle  string                  `json:"task_title"`
	Subject    string                  `json:"subject"`
	TaskStatus model.TaskStatus        `json:"task_status"`
	Status     model.ApplicationStatus `json:"status"`
	Message    string                  `json:"message"`
	BidAmount  *decimal.Decimal        `json:"bid_amount"`
	AppliedAt  time.Time               `json:"applied_at"`
}

func NewTutorApplication(app service.ApplicationWithTask) TutorApplication {
	out := TutorApplication{
		ID:        app.ID,
		TaskID:    app.TaskID,
		Status:    app.Status,
		Message:   app.Message,
		BidAmount: bidPtr(app.BidAmount),
		AppliedAt: app.AppliedAt,
	}
	if app.Task != nil {
		out.TaskTitle = app.Task.Title
		out.Subject = app.Task.Subject
		out.TaskStatus = app.Task.Status
	}
	return out
}

func NewOwnerApplications(apps []service.ApplicationWithTutor) []OwnerApplication {
	out := make([]OwnerApplication, 0, len(apps))
	for _, app := range apps {
		out = append(out, NewOwnerApplication(app))
	}
	return out
}

func NewTutorApplications(apps []service.ApplicationWithTask) []TutorApplication {
	out := make([]TutorApplication, 0, len(apps))
	for _, app := range apps {
		out = append(out, NewTutorApplication(app))
	}
	return out
}

// PublicProfile профиль без email и Telegram
type PublicProfile struct {
	ID        int64      `json:"id"`
	Role      model.Role `json:"role"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	model.Profile
}

func NewPublicProfile(u *model.User) PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Profile:   u.Profile,
	}
}

func NewPublicProfiles(users []*model.User) []PublicProfile {
	out := make([]PublicProfile, 0, len(users))
	for _, u := range users {
		out = append(out, NewPublicProfile(u))
	}
	return out
}

func bidPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

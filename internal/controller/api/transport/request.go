package transport

import (
	"github.com/shopspring/decimal"

	"github.com/Freeeeeet/tutor_market/internal/model"
)

type CreateTaskRequest struct {
	Title       string          `json:"title"`
	Subject     string          `json:"subject"`
	Description string          `json:"description"`
	Address     string          `json:"address"`
	Lat         float64         `json:"lat"`
	Lng         float64         `json:"lng"`
	Budget      decimal.Decimal `json:"budget"`
	Deadline    *Time           `json:"deadline"`
	PostedBy    string          `json:"posted_by"`
	// Status принимается, но игнорируется: новое задание всегда Open
	Status string `json:"status,omitempty"`
}

func (r CreateTaskRequest) ToModel() *model.Task {
	return &model.Task{
		Title:       r.Title,
		Subject:     r.Subject,
		Description: r.Description,
		Address:     r.Address,
		Lat:         r.Lat,
		Lng:         r.Lng,
		Budget:      r.Budget,
		Deadline:    r.Deadline.Ptr(),
		PostedBy:    r.PostedBy,
		Status:      model.TaskStatus(r.Status),
	}
}

type UpdateTaskStatusRequest struct {
	Status  string `json:"status"`
	TutorID *int64 `json:"tutor_id"`
}

type SubmitApplicationRequest struct {
	TaskID    int64               `json:"task_id"`
	Message   string              `json:"message"`
	BidAmount decimal.NullDecimal `json:"bid_amount"`
}

type DecisionRequest struct {
	Decision string `json:"decision"`
}

type CreateSlotsRequest struct {
	Subject   string `json:"subject"`
	StartTime Time   `json:"start_time"`
	EndTime   Time   `json:"end_time"`
}

type CreateAppointmentRequest struct {
	SlotID  int64  `json:"slot_id"`
	TutorID int64  `json:"tutor_id"`
	Message string `json:"message"`
}

type AppointmentStatusRequest struct {
	Status string `json:"status"`
}

type LinkTelegramRequest struct {
	TelegramID int64 `json:"telegram_id"`
}

// UpdateProfileRequest частичное обновление: отсутствующее поле не меняется
type UpdateProfileRequest struct {
	FirstName          *string          `json:"first_name"`
	LastName           *string          `json:"last_name"`
	Phone              *string          `json:"phone_number"`
	Address            *string          `json:"address"`
	Title              *string          `json:"title"`
	Bio                *string          `json:"bio"`
	Subjects           *string          `json:"subjects"`
	EducationLevel     *string          `json:"education_level"`
	ExperienceDetails  *string          `json:"experience_details"`
	AcceptsShortNotice *bool            `json:"accepts_short_notice"`
	HourlyRate         *decimal.Decimal `json:"hourly_rate"`
}

func (r UpdateProfileRequest) ToModel() model.ProfileUpdate {
	return model.ProfileUpdate{
		FirstName:          r.FirstName,
		LastName:           r.LastName,
		Phone:              r.Phone,
		Address:            r.Address,
		Title:              r.Title,
		Bio:                r.Bio,
		Subjects:           r.Subjects,
		EducationLevel:     r.EducationLevel,
		ExperienceDetails:  r.ExperienceDetails,
		AcceptsShortNotice: r.AcceptsShortNotice,
		HourlyRate:         r.HourlyRate,
	}
}

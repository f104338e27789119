package model

import "time"

type AppointmentStatus string

const (
	AppointmentStatusPending  AppointmentStatus = "pending"  // Ожидает решения репетитора
	AppointmentStatusAccepted AppointmentStatus = "accepted" // Подтверждено, слот занят
	AppointmentStatusRejected AppointmentStatus = "rejected" // Отклонено, слот свободен
)

type Appointment struct {
	ID        int64             `json:"id"`
	SlotID    int64             `json:"slot_id"`
	StudentID int64             `json:"student_id"`
	TutorID   int64             `json:"tutor_id"`
	Message   string            `json:"message,omitempty"`
	Status    AppointmentStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`

	// Дополнительные поля для удобства (не из БД)
	Slot *AvailableSlot `json:"slot,omitempty"`
}

// IsActive возвращает true, пока запись удерживает слот
func (a *Appointment) IsActive() bool {
	return a.Status != AppointmentStatusRejected
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// AvailableSlot интервал времени, который репетитор открыл для записи
type AvailableSlot struct {
	ID        int64     `json:"id"`
	TutorID   int64     `json:"tutor_id"`
	Subject   string    `json:"subject"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	IsBooked  bool      `json:"is_booked"`
	BatchID   uuid.UUID `json:"batch_id"` // общий для слотов одного вызова генерации
	CreatedAt time.Time `json:"created_at"`
}

// Duration возвращает длительность слота
func (s *AvailableSlot) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

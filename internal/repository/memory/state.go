package memory

import (
	"maps"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
)

// state хранит строки по значению: копия state независима от оригинала
type state struct {
	nextID       int64
	tasks        map[int64]model.Task
	applications map[int64]model.TaskApplication
	slots        map[int64]model.AvailableSlot
	appointments map[int64]model.Appointment
	users        map[int64]model.User
}

func newState() *state {
	return &state{
		nextID:       1,
		tasks:        make(map[int64]model.Task),
		applications: make(map[int64]model.TaskApplication),
		slots:        make(map[int64]model.AvailableSlot),
		appointments: make(map[int64]model.Appointment),
		users:        make(map[int64]model.User),
	}
}

func (s *state) clone() *state {
	return &state{
		nextID:       s.nextID,
		tasks:        maps.Clone(s.tasks),
		applications: maps.Clone(s.applications),
		slots:        maps.Clone(s.slots),
		appointments: maps.Clone(s.appointments),
		users:        maps.Clone(s.users),
	}
}

func (s *state) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *state) hasActiveAppointment(slotID int64) bool {
	for _, a := range s.appointments {
		if a.SlotID == slotID && a.IsActive() {
			return true
		}
	}
	return false
}

func (s *state) hasAcceptedApplication(taskID, exceptID int64) bool {
	for _, a := range s.applications {
		if a.TaskID == taskID && a.ID != exceptID && a.Status == model.ApplicationStatusAccepted {
			return true
		}
	}
	return false
}

func now() time.Time {
	return time.Now().UTC()
}

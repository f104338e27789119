package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/memory"
	"github.com/Freeeeeet/tutor_market/internal/schedule"
)

const (
	studentID int64 = 100
	tutorA    int64 = 200
	tutorB    int64 = 201
	tutorC    int64 = 202
)

type fixture struct {
	store        *memory.Store
	tasks        *TaskService
	applications *ApplicationService
	availability *AvailabilityService
	appointments *AppointmentService
	users        *UserService
	geo          *stubGeocoder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	logger := zap.NewNop()
	geo := &stubGeocoder{lat: 51.5, lng: -0.12}

	return &fixture{
		store:        store,
		tasks:        NewTaskService(store, nil, logger),
		applications: NewApplicationService(store, logger),
		availability: NewAvailabilityService(store, schedule.NewGenerator(schedule.DefaultSlotDuration, 0), logger),
		appointments: NewAppointmentService(store, logger),
		users:        NewUserService(store, geo, logger),
		geo:          geo,
	}
}

func (f *fixture) openTask(t *testing.T) *model.Task {
	t.Helper()

	task, err := f.tasks.Create(context.Background(), studentID, &model.Task{
		Title:   "Algebra homework",
		Subject: "Math",
		Lat:     55.75,
		Lng:     37.61,
		Budget:  decimal.RequireFromString("25.50"),
	})
	require.NoError(t, err)
	return task
}

func (f *fixture) submit(t *testing.T, taskID, tutorID int64) *model.TaskApplication {
	t.Helper()

	app, err := f.applications.Submit(context.Background(), tutorID, taskID, "I can help", decimal.NullDecimal{})
	require.NoError(t, err)
	return app
}

func (f *fixture) slots(t *testing.T, tutorID int64) []*model.AvailableSlot {
	t.Helper()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	slots, err := f.availability.CreateSlots(context.Background(), tutorID, "Math", start, start.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, slots, 4)
	return slots
}

func requireCode(t *testing.T, err error, code model.ErrorCode) {
	t.Helper()

	require.Error(t, err)
	var dErr *model.Error
	require.True(t, errors.As(err, &dErr), "expected domain error, got %v", err)
	require.Equal(t, code, dErr.Code, dErr.Message)
}

type stubGeocoder struct {
	lat, lng float64
	err      error
	calls    int
}

func (g *stubGeocoder) Geocode(context.Context, string) (float64, float64, error) {
	g.calls++
	return g.lat, g.lng, g.err
}

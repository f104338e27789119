// Package api собирает HTTP поверхность сервиса на fasthttp.
package api

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_market/internal/controller/api/handler"
	"github.com/Freeeeeet/tutor_market/internal/controller/api/middleware"
	"github.com/Freeeeeet/tutor_market/internal/model"
)

type Handlers struct {
	Task         *handler.TaskHandler
	Application  *handler.ApplicationHandler
	Availability *handler.AvailabilityHandler
	Appointment  *handler.AppointmentHandler
	User         *handler.UserHandler
	Health       *handler.HealthHandler
}

// NewRouter регистрирует маршруты; auth проверяет bearer токен
func NewRouter(h Handlers, auth func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	student := func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return auth(middleware.RequireRole(model.RoleStudent, next))
	}
	tutor := func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return auth(middleware.RequireRole(model.RoleTutor, next))
	}

	r.GET("/health", h.Health.Check)

	// Задания
	r.POST("/tasks", student(h.Task.Create))
	r.GET("/tasks/search", h.Task.Search)
	r.GET("/tasks/my_tasks", auth(h.Task.Mine))
	r.GET("/tasks/{id}", h.Task.Get)
	r.PATCH("/tasks/{id}/status", auth(h.Task.UpdateStatus))
	r.DELETE("/tasks/{id}", auth(h.Task.Delete))

	// Заявки
	r.POST("/task_applications", tutor(h.Application.Submit))
	r.GET("/tasks/{id}/applications", h.Application.ListForTask)
	r.GET("/my_applications", tutor(h.Application.Mine))
	r.POST("/tasks/applications/{id}/decision", auth(h.Application.Decide))

	// Слоты
	r.POST("/availability", tutor(h.Availability.Create))
	r.GET("/availability/tutor/{id}", h.Availability.ListForTutor)
	r.GET("/availability/tutor/{id}/calendar.ics", h.Availability.Calendar)
	r.DELETE("/availability/{id}", tutor(h.Availability.Delete))

	// Записи
	r.POST("/appointments", student(h.Appointment.Create))
	r.PATCH("/appointments/{id}/status", tutor(h.Appointment.SetStatus))
	r.POST("/appointments/{id}/accept", tutor(h.Appointment.Accept))
	r.POST("/appointments/{id}/reject", tutor(h.Appointment.Reject))
	r.GET("/appointments/tutor/{id}", h.Appointment.ListForTutor)
	r.GET("/appointments/student/{id}", h.Appointment.ListForStudent)

	// Профиль
	r.GET("/users/me", auth(h.User.Me))
	r.POST("/users/me/telegram", auth(h.User.LinkTelegram))
	r.GET("/profiles/{id}", h.User.Profile)
	r.PUT("/profiles/{id}", auth(h.User.UpdateProfile))

	// Репетиторы
	r.GET("/tutors/search", h.User.SearchTutors)
	r.GET("/tutors/{id}", h.User.Tutor)

	return r
}

// Handler оборачивает роутер access логом
func Handler(r *router.Router, logger *zap.Logger) fasthttp.RequestHandler {
	return middleware.AccessLog(logger, r.Handler)
}

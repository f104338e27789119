package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_market/internal/controller/api/httpcontext"
	"github.com/Freeeeeet/tutor_market/internal/controller/api/transport"
	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/service"
)

type AppointmentHandler struct {
	baseHandler
	appointments *service.AppointmentService
}

func NewAppointmentHandler(appointments *service.AppointmentService, adapter *httpcontext.Adapter, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		baseHandler:  newBaseHandler(adapter, logger),
		appointments: appointments,
	}
}

// Create POST /appointments
func (h *AppointmentHandler) Create(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	var req transport.CreateAppointmentRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.SlotID <= 0 {
		h.badRequest(ctx, "slot_id is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	appt, err := h.appointments.Create(stdCtx, userID, req.TutorID, req.SlotID, req.Message)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, appt)
}

// SetStatus PATCH /appointments/{id}/status
func (h *AppointmentHandler) SetStatus(ctx *fasthttp.RequestCtx) {
	var req transport.AppointmentStatusRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.decide(ctx, model.AppointmentStatus(req.Status))
}

// Accept POST /appointments/{id}/accept
func (h *AppointmentHandler) Accept(ctx *fasthttp.RequestCtx) {
	h.decide(ctx, model.AppointmentStatusAccepted)
}

// Reject POST /appointments/{id}/reject
func (h *AppointmentHandler) Reject(ctx *fasthttp.RequestCtx) {
	h.decide(ctx, model.AppointmentStatusRejected)
}

func (h *AppointmentHandler) decide(ctx *fasthttp.RequestCtx, status model.AppointmentStatus) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	id, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	appt, err := h.appointments.SetStatus(stdCtx, userID, id, status)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, appt)
}

// ListForTutor GET /appointments/tutor/{id}
func (h *AppointmentHandler) ListForTutor(ctx *fasthttp.RequestCtx) {
	tutorID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	appts, err := h.appointments.ListForTutor(stdCtx, tutorID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nonNil(appts))
}

// ListForStudent GET /appointments/student/{id}
func (h *AppointmentHandler) ListForStudent(ctx *fasthttp.RequestCtx) {
	studentID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	appts, err := h.appointments.ListForStudent(stdCtx, studentID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nonNil(appts))
}

package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_market/internal/controller/api/httpcontext"
	"github.com/Freeeeeet/tutor_market/internal/controller/api/transport"
	"github.com/Freeeeeet/tutor_market/internal/service"
)

type AvailabilityHandler struct {
	baseHandler
	availability *service.AvailabilityService
}

func NewAvailabilityHandler(availability *service.AvailabilityService, adapter *httpcontext.Adapter, logger *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		baseHandler:  newBaseHandler(adapter, logger),
		availability: availability,
	}
}

// Create POST /availability
func (h *AvailabilityHandler) Create(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	var req transport.CreateSlotsRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		h.badRequest(ctx, "start_time and end_time are required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	slots, err := h.availability.CreateSlots(stdCtx, userID, req.Subject, req.StartTime.Time, req.EndTime.Time)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, nonNil(slots))
}

// ListForTutor GET /availability/tutor/{id}
func (h *AvailabilityHandler) ListForTutor(ctx *fasthttp.RequestCtx) {
	tutorID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	slots, err := h.availability.ListForTutor(stdCtx, tutorID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nonNil(slots))
}

// Calendar GET /availability/tutor/{id}/calendar.ics
func (h *AvailabilityHandler) Calendar(ctx *fasthttp.RequestCtx) {
	tutorID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	body, err := h.availability.Calendar(stdCtx, tutorID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.Response.Header.SetContentType("text/calendar; charset=utf-8")
	ctx.SetStatusCode(http.StatusOK)
	ctx.SetBodyString(body)
}

// Delete DELETE /availability/{id}
func (h *AvailabilityHandler) Delete(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	slotID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.availability.DeleteSlot(stdCtx, userID, slotID); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_market/internal/controller/api/httpcontext"
	"github.com/Freeeeeet/tutor_market/internal/controller/api/transport"
	"github.com/Freeeeeet/tutor_market/internal/service"
)

type ApplicationHandler struct {
	baseHandler
	applications *service.ApplicationService
}

func NewApplicationHandler(applications *service.ApplicationService, adapter *httpcontext.Adapter, logger *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		baseHandler:  newBaseHandler(adapter, logger),
		applications: applications,
	}
}

// Submit POST /task_applications
func (h *ApplicationHandler) Submit(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	var req transport.SubmitApplicationRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.TaskID <= 0 {
		h.badRequest(ctx, "task_id is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	app, err := h.applications.Submit(stdCtx, userID, req.TaskID, req.Message, req.BidAmount)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, app)
}

// ListForTask GET /tasks/{id}/applications
func (h *ApplicationHandler) ListForTask(ctx *fasthttp.RequestCtx) {
	taskID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	apps, err := h.applications.ListForTask(stdCtx, taskID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewOwnerApplications(apps))
}

// Mine GET /my_applications
func (h *ApplicationHandler) Mine(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	apps, err := h.applications.ListByTutor(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewTutorApplications(apps))
}

// Decide POST /tasks/applications/{id}/decision
func (h *ApplicationHandler) Decide(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	id, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	var req transport.DecisionRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	app, err := h.applications.Decide(stdCtx, userID, id, service.Decision(req.Decision))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, app)
}

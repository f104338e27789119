package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_market/internal/controller/api/httpcontext"
	"github.com/Freeeeeet/tutor_market/internal/controller/api/transport"
)

// Pinger проверяет доступность хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	baseHandler
	storage Pinger
}

func NewHealthHandler(storage Pinger, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		storage:     storage,
	}
}

// Check GET /health
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	err := h.storage.Ping(stdCtx)
	payload := map[string]any{
		"timestamp": time.Now().UTC(),
		"storage":   err == nil,
	}

	if err == nil {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}

	h.logger.Warn("storage ping failed", zap.Error(err))
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "storage unavailable", payload))
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_market/internal/controller/api/httpcontext"
	"github.com/Freeeeeet/tutor_market/internal/controller/api/middleware"
	"github.com/Freeeeeet/tutor_market/internal/controller/api/transport"
	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data any) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.ByteString("path", ctx.Path()),
			zap.String("request_id", httpcontext.RequestID(ctx)),
			zap.Error(err),
		)
		msg = "internal error"
	}

	h.respondJSON(ctx, status, transport.NewError(string(code), msg, nil))
}

func (h baseHandler) badRequest(ctx *fasthttp.RequestCtx, msg string) {
	h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(model.ErrCodeValidation), msg, nil))
}

// decode разбирает тело запроса; при ошибке отвечает 400
func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dst any) bool {
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		h.badRequest(ctx, "invalid payload: "+err.Error())
		return false
	}
	return true
}

// pathID разбирает числовой параметр пути; при ошибке отвечает 400
func (h baseHandler) pathID(ctx *fasthttp.RequestCtx, name string) (int64, bool) {
	raw, _ := ctx.UserValue(name).(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.badRequest(ctx, "invalid "+name)
		return 0, false
	}
	return id, true
}

// bounds разбирает north, south, east, west из query; при ошибке отвечает 400
func (h baseHandler) bounds(ctx *fasthttp.RequestCtx) (repository.Bounds, bool) {
	args := ctx.QueryArgs()

	var v [4]float64
	for i, name := range []string{"north", "south", "east", "west"} {
		f, err := strconv.ParseFloat(string(args.Peek(name)), 64)
		if err != nil {
			h.badRequest(ctx, "invalid or missing "+name)
			return repository.Bounds{}, false
		}
		v[i] = f
	}

	return repository.Bounds{North: v[0], South: v[1], East: v[2], West: v[3]}, true
}

// userID личность из JWT; без неё отвечает 401
func (h baseHandler) userID(ctx *fasthttp.RequestCtx) (int64, bool) {
	id, ok := middleware.UserID(ctx)
	if !ok {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(model.ErrCodeUnauthorized), "missing user id", nil))
	}
	return id, ok
}

func mapError(err error) (int, model.ErrorCode) {
	var dErr *model.Error
	if !errors.As(err, &dErr) {
		return http.StatusInternalServerError, model.ErrCodeInternal
	}

	switch dErr.Code {
	case model.ErrCodeValidation:
		return http.StatusBadRequest, dErr.Code
	case model.ErrCodeNotFound:
		return http.StatusNotFound, dErr.Code
	case model.ErrCodeConflict, model.ErrCodeInvalidState:
		return http.StatusConflict, dErr.Code
	case model.ErrCodePermissionDenied:
		return http.StatusForbidden, dErr.Code
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized, dErr.Code
	default:
		return http.StatusInternalServerError, model.ErrCodeInternal
	}
}

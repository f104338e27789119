package middleware

import (
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_market/internal/controller/api/httpcontext"
)

// AccessLog пишет строку лога на каждый запрос
func AccessLog(logger *zap.Logger, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		reqID := httpcontext.RequestID(ctx)

		next(ctx)

		fields := []zap.Field{
			zap.String("request_id", reqID),
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.Int("status", ctx.Response.StatusCode()),
			zap.Duration("duration", time.Since(start)),
		}
		if id, ok := UserID(ctx); ok {
			fields = append(fields, zap.Int64("user_id", id))
		}

		switch status := ctx.Response.StatusCode(); {
		case status >= fasthttp.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= fasthttp.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// Package httpcontext переводит fasthttp.RequestCtx в context.Context.
package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

type key string

const (
	keyRequestID key = "request_id"

	// HeaderRequestID заголовок с идентификатором запроса
	HeaderRequestID = "X-Request-ID"
)

// Adapter даёт каждому запросу контекст с таймаутом и request id
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{timeout: timeout}
}

// Attach создаёт контекст запроса; вызывающий обязан вызвать cancel
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := RequestID(ctx)
	ctx.Response.Header.Set(HeaderRequestID, reqID)

	return context.WithValue(stdCtx, keyRequestID, reqID), cancel
}

// RequestID берёт id из заголовка или создаёт новый и запоминает его в запросе
func RequestID(ctx *fasthttp.RequestCtx) string {
	if id := strings.TrimSpace(string(ctx.Request.Header.Peek(HeaderRequestID))); id != "" {
		return id
	}
	id := uuid.NewString()
	ctx.Request.Header.Set(HeaderRequestID, id)
	return id
}

// RequestIDFrom достаёт request id из контекста
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(keyRequestID).(string)
	return id
}

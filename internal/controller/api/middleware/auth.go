package middleware

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_market/internal/controller/api/transport"
	"github.com/Freeeeeet/tutor_market/internal/model"
)

const (
	userIDKey = "auth_user_id"
	roleKey   = "auth_role"
)

// Claims содержимое bearer токена: sub - id пользователя
type Claims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuth проверяет HS256 токен и кладёт личность в RequestCtx
func JWTAuth(secret string, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				unauthorized(ctx, "missing bearer token")
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("invalid jwt token", zap.Error(err))
				unauthorized(ctx, "invalid token")
				return
			}

			// токен без exp действовал бы вечно
			if claims.ExpiresAt == nil {
				unauthorized(ctx, "token has no expiration")
				return
			}

			userID, err := strconv.ParseInt(claims.Subject, 10, 64)
			if err != nil || userID <= 0 {
				unauthorized(ctx, "invalid token subject")
				return
			}

			ctx.SetUserValue(userIDKey, userID)
			ctx.SetUserValue(roleKey, claims.Role)

			next(ctx)
		}
	}
}

// RequireRole пропускает только пользователей с указанной ролью
func RequireRole(role model.Role, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if Role(ctx) != role {
			writeError(ctx, fasthttp.StatusForbidden, model.ErrCodePermissionDenied, "requires role "+string(role))
			return
		}
		next(ctx)
	}
}

// UserID id аутентифицированного пользователя
func UserID(ctx *fasthttp.RequestCtx) (int64, bool) {
	id, ok := ctx.UserValue(userIDKey).(int64)
	return id, ok
}

func Role(ctx *fasthttp.RequestCtx) model.Role {
	role, _ := ctx.UserValue(roleKey).(model.Role)
	return role
}

// extractToken принимает только схему Bearer
func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func unauthorized(ctx *fasthttp.RequestCtx, msg string) {
	writeError(ctx, fasthttp.StatusUnauthorized, model.ErrCodeUnauthorized, msg)
}

func writeError(ctx *fasthttp.RequestCtx, status int, code model.ErrorCode, msg string) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(transport.NewError(string(code), msg, nil))
	ctx.SetBody(body)
}

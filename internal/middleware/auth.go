package middleware

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/focus/api/transport"
	"github.com/fastygo/focus/domain"
	"github.com/fastygo/focus/pkg/httpcontext"
)

// JWTAuth validates an HMAC-signed bearer token and exposes its user_id (or sub) claim
// as the X-User-ID header. A client-supplied X-User-ID is always discarded.
//
// With an empty secret the middleware runs in trusted mode and forwards the incoming
// X-User-ID header as is; use it only behind an authenticating proxy or in development.
func JWTAuth(secret string, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if secret == "" {
		logger.Warn("jwt secret is empty, trusting X-User-ID header")
		return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
			return func(ctx *fasthttp.RequestCtx) {
				if httpcontext.UserID(ctx) == "" {
					unauthorized(ctx, "missing user id")
					return
				}
				next(ctx)
			}
		}
	}

	key := []byte(secret)
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			ctx.Request.Header.Del(httpcontext.HeaderUserID)

			tokenString := extractToken(ctx)
			if tokenString == "" {
				unauthorized(ctx, "missing token")
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
				}
				return key, nil
			})
			if err != nil || !token.Valid {
				logger.Warn("invalid jwt token", zap.Error(err))
				unauthorized(ctx, "invalid token")
				return
			}

			userID := subject(token)
			if userID == "" {
				unauthorized(ctx, "token has no user")
				return
			}
			ctx.Request.Header.Set(httpcontext.HeaderUserID, userID)

			next(ctx)
		}
	}
}

func subject(token *jwt.Token) string {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	if userID, ok := claims["user_id"].(string); ok && userID != "" {
		return userID
	}
	sub, _ := claims["sub"].(string)
	return sub
}

func unauthorized(ctx *fasthttp.RequestCtx, msg string) {
	body, _ := json.Marshal(transport.NewError(string(domain.ErrCodeUnauthorized), msg, nil))
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	ctx.SetBody(body)
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return header
}

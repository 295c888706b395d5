package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/mbolis/quick-forms/auth"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
)

type contextKey struct{ name string }

var userIdKey = &contextKey{"user_id"}

// Authenticated rejects requests without a verifiable bearer token and
// passes the token's user id down the context.
func Authenticated(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := httpx.BearerToken(r)
			if !ok {
				httpx.LogStatus(w, r, http.StatusUnauthorized, log.DebugLevel, "auth.bearer.missing")
				return
			}

			userId, err := tokens.Verify(token)
			if err != nil {
				log.Debugf("auth.bearer.verify: %s", err)
				httpx.LogStatus(w, r, http.StatusUnauthorized, log.DebugLevel, "auth.bearer.verify")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userId)))
		})
	}
}

// UserID returns the authenticated user id; zero outside Authenticated.
func UserID(ctx context.Context) int64 {
	id, _ := ctx.Value(userIdKey).(int64)
	return id
}

func WithUserID(ctx context.Context, userId int64) context.Context {
	return context.WithValue(ctx, userIdKey, userId)
}

// RequestLogger writes one line per request through the application logger.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		log.WithFields(log.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     status,
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).Round(time.Microsecond).String(),
			"remote":     r.RemoteAddr,
		}).Info("request")
	})
}

package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	chiMid "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"takotools.com/tako-web/internal/observability"
)

// Logger emits one structured entry per request and makes a request scoped
// logger available through observability.FromContext.
func Logger(base *zap.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rid := chiMid.GetReqID(r.Context())
			ctx := r.Context()
			reqLogger := base
			if rid != "" {
				ctx = WithRequestID(ctx, rid)
				reqLogger = base.With(zap.String("request_id", rid))
			}
			ctx = observability.WithLogger(ctx, reqLogger)

			rw := NewResponseRecorder(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rw.Status()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("remote_ip", clientIP(r)),
				zap.Bool("htmx", IsHTMX(r.Context())),
			}
			switch {
			case rw.Status() >= http.StatusInternalServerError:
				reqLogger.Error("request", fields...)
			default:
				reqLogger.Info("request", fields...)
			}
		})
	}
}

func clientIP(r *http.Request) string {
	// Trust X-Forwarded-For set by Cloud Run (last IP is client)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		p := strings.Split(xff, ",")
		return strings.TrimSpace(p[len(p)-1])
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

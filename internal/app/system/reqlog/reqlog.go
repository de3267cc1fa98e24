// Package reqlog is the request logging middleware. It tags each request
// with an id, remembers the client IP for audit records, and logs one line
// per request once the response is written.
package reqlog

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HeaderRequestID is read from the request (when a proxy already set one)
// and echoed on the response.
const HeaderRequestID = "X-Request-ID"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	clientIPKey
)

// RequestID returns the request id stored by Middleware, or "".
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// ClientIP returns the client address stored by Middleware, or "".
func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey).(string)
	return v
}

// WithRequestInfo stores a request id and client IP on ctx. Middleware uses
// it; tests use it to simulate a request context.
func WithRequestInfo(ctx context.Context, requestID, clientIP string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	return context.WithValue(ctx, clientIPKey, clientIP)
}

// clientIP prefers proxy headers over RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// Middleware logs every request at Info, 4xx at Warn and 5xx at Error.
// The username query parameter is logged because it is the caller's identity
// for protected announcement routes.
func Middleware(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startedAt := time.Now()

			reqID := strings.TrimSpace(r.Header.Get(HeaderRequestID))
			if reqID == "" {
				reqID = uuid.NewString()
			}
			ip := clientIP(r)
			w.Header().Set(HeaderRequestID, reqID)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			r = r.WithContext(WithRequestInfo(r.Context(), reqID, ip))

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			fields := []zap.Field{
				zap.String("request_id", reqID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("client_ip", ip),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("status", status),
				zap.Int("size", ww.BytesWritten()),
				zap.Duration("latency", time.Since(startedAt)),
			}
			if u := r.URL.Query().Get("username"); u != "" {
				fields = append(fields, zap.String("username", u))
			}

			switch {
			case status >= 500:
				logger.Error("http request completed", fields...)
			case status >= 400:
				logger.Warn("http request completed", fields...)
			default:
				logger.Info("http request completed", fields...)
			}
		})
	}
}

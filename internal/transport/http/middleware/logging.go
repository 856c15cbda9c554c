package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"hrpay/internal/platform/logger"
)

// RequestRecorder receives per-request outcomes; the metrics collector implements it.
type RequestRecorder interface {
	Record(method string, status int, d time.Duration)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logger attaches a request-scoped logger and writes one access log line
// per request. Must run after RequestID.
func Logger(recorder RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := logger.WithFields(r.Context(), zap.String("requestId", GetRequestID(r.Context())))
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			elapsed := time.Since(start)
			if recorder != nil {
				recorder.Record(r.Method, rec.status, elapsed)
			}
			logger.Info(ctx, "http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Int64("durationMs", elapsed.Milliseconds()),
			)
		})
	}
}

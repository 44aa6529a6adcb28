package logward

import (
	"net/http"
	"time"
)

// RequestIDHeader is the header reused for request IDs when the caller
// already assigned one.
const RequestIDHeader = "X-Request-Id"

// statusRecorder captures the status code and byte count written by the
// wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	n, err := r.ResponseWriter.Write(p)
	r.bytes += n
	return n, err
}

// Middleware returns an http middleware that logs every request twice: an
// "incoming request" record at DEBUG and a "completed" record whose level
// follows the response status. The request ID from the X-Request-Id header is
// reused when present, generated otherwise, and made available to handlers
// via the request context together with a request-scoped logger.
func Middleware(l *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = GenerateRequestID()
			}

			ctx := ContextWithRequestID(r.Context(), requestID)
			reqLogger := l.Ctx(ctx)
			ctx = ContextWithLogger(ctx, reqLogger)

			reqLogger.Debug("incoming request", map[string]any{
				"http_method": r.Method,
				"http_path":   r.URL.Path,
				"user_agent":  r.UserAgent(),
				"remote_addr": r.RemoteAddr,
			})

			w.Header().Set(RequestIDHeader, requestID)
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			start := time.Now()
			next.ServeHTTP(recorder, r.WithContext(ctx))

			NewRequestLoggerWith(reqLogger).LogRequest(
				r.Method, r.URL.Path, recorder.status, time.Since(start),
				map[string]any{"response_bytes": recorder.bytes},
			)
		})
	}
}

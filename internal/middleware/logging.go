// Package middleware holds the HTTP middleware the server adds on top of
// chi's built-ins: the request logger and the Prometheus recorder.
//
// Both follow the standard net/http shape, a function that takes the next
// handler and returns a wrapper around it:
//
//	func Middleware(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        // before
//	        next.ServeHTTP(w, r)
//	        // after: status, size and duration are known here
//	    })
//	}
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// responseWriter records what the handler wrote. http.ResponseWriter has no
// getter for the status, so it is captured on the way through.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

// wrap starts at 200, which is what net/http sends when a handler writes a
// body without calling WriteHeader.
func wrap(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Logger writes one structured line per finished request: request ID,
// method, path, status, duration and response size. 5xx responses are
// logged at error level, everything else at info.
//
// The request ID comes from chi's RequestID middleware, which must be
// installed before Logger. Headers are not logged: Authorization carries the
// caller's GitHub token.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := wrap(w)

			next.ServeHTTP(rec, r)

			level := slog.LevelInfo
			if rec.statusCode >= http.StatusInternalServerError {
				level = slog.LevelError
			}

			logger.LogAttrs(r.Context(), level, "request completed",
				slog.String("request_id", chimiddleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.statusCode),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", rec.written),
			)
		})
	}
}

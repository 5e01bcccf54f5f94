// Package httpapi exposes the Evaluate entry point and the admin
// surface (blacklist management, manual refresh triggers) over HTTP,
// using the same chi router and middleware idiom the teacher's
// api-gateway used for its own HTTP-facing routes.
package httpapi

import (
	"net/http"
	"time"

	"fraud-risk-engine/pkg/logger"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// LoggingMiddlewareConfig configures NewLoggingMiddleware.
type LoggingMiddlewareConfig struct {
	Log       *logger.Logger
	SkipPaths []string
}

// NewLoggingMiddleware logs method, path, status, and duration for every
// request, skipping configured paths (health checks).
func NewLoggingMiddleware(cfg LoggingMiddlewareConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, path := range cfg.SkipPaths {
				if r.URL.Path == path {
					next.ServeHTTP(w, r)
					return
				}
			}
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)
			cfg.Log.InfoCtx(r.Context(), "http request",
				"method", r.Method, "path", r.URL.Path, "status", rw.statusCode, "duration", time.Since(start).String())
		})
	}
}

// NewCORSMiddleware mirrors the teacher's configurable-origin CORS
// middleware.
func NewCORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := false
			for _, o := range allowedOrigins {
				if o == "*" || o == origin {
					w.Header().Set("Access-Control-Allow-Origin", o)
					allowed = true
					break
				}
			}
			if !allowed && len(allowedOrigins) > 0 {
				w.Header().Set("Access-Control-Allow-Origin", allowedOrigins[0])
			}
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"bufio"
	"net"
	"net/http"
	"time"
)

// Logging logs the request start and completion with status and duration.
func (a *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriterWrapper{
			ResponseWriter: w,
		}

		// 1. Log request start
		a.log.Debug(
			r.Context(),
			"started",
			"method", r.Method,
			"URL", r.URL.Path,
			"request-host", r.Host,
		)

		// 2. Serve the request
		next.ServeHTTP(rw, r)

		// 3. Log request end
		duration := time.Since(start)
		a.log.Debug(
			r.Context(),
			"completed",
			"method", r.Method,
			"URL", r.URL.Path,
			"status", rw.status,
			"duration", duration,
		)
	})
}

// responseWriterWrapper wraps http.ResponseWriter to track response status
type responseWriterWrapper struct {
	http.ResponseWriter
	status int
}

// Hijack keeps the WebSocket upgrade working behind this wrapper:
// websocket.Upgrader requires the ResponseWriter to implement http.Hijacker.
func (rw *responseWriterWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return h.Hijack()
}

// WriteHeader intercepts the status code before writing headers
func (rw *responseWriterWrapper) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

// Write implements the http.ResponseWriter interface
func (rw *responseWriterWrapper) Write(b []byte) (int, error) {
	// If status wasn't set explicitly, default to 200 OK
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	return rw.ResponseWriter.Write(b)
}

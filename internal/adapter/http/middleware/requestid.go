package middleware

import (
	"net/http"

	wrap "github.com/transitlk/bus-tracker/pkg/logger/wrapper"
	"github.com/transitlk/bus-tracker/pkg/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID injects a request id into the log context so every record
// emitted while serving the request can be correlated. An id supplied by the
// caller is reused, otherwise a fresh one is generated.
func (a *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			id, err := uuid.New()
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			requestID = id.String()
		}

		w.Header().Set(requestIDHeader, requestID)

		ctx := wrap.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

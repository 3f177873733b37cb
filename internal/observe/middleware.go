package observe

import (
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// statusRecorder captures the response status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records per-request latency on m.HTTPDuration, labeled by
// method, path pattern, and status. A nil Metrics disables recording.
func Middleware(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if m == nil {
				next.ServeHTTP(w, req)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, req)

			m.HTTPDuration.Record(req.Context(), time.Since(start).Seconds(),
				metric.WithAttributes(
					attribute.String("method", req.Method),
					attribute.String("path", req.URL.Path),
					attribute.String("status", strconv.Itoa(rec.status)),
				))
		})
	}
}

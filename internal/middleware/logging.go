package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rpattn/engtrack/pkg/logger"
	"github.com/rpattn/engtrack/pkg/metrics"
)

// responseWriter captures HTTP status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(p []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(p)
	rw.written += n
	return n, err
}

// LoggingMiddleware logs every request and feeds the HTTP metrics.
// m may be nil.
func LoggingMiddleware(log logger.Logger, m *metrics.Manager) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			route := RouteLabel(r.URL.Path)
			m.ObserveHTTP(route, r.Method, strconv.Itoa(rw.statusCode), duration.Seconds())

			fields := []logger.Field{
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.Int("status", rw.statusCode),
				logger.Int("bytes", rw.written),
				logger.Any("duration", duration),
				logger.String("remote", r.RemoteAddr),
			}
			if rw.statusCode >= http.StatusInternalServerError {
				log.Error(r.Context(), "request failed", fields...)
				return
			}
			log.Info(r.Context(), "request", fields...)
		})
	}
}

// RouteLabel collapses a request path to its route pattern so metric
// label cardinality stays bounded.
func RouteLabel(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	switch segments[0] {
	case "":
		return "/"
	case "imports":
		if len(segments) == 3 && segments[2] == "logs" {
			return "/imports/{kind}/logs"
		}
		return "/imports/{kind}"
	case "records":
		return "/records/{kind}"
	case "templates":
		return "/templates/{kind}"
	case "exports":
		if len(segments) == 2 && segments[1] == "rows" {
			return "/exports/rows"
		}
		return "/exports/{kind}"
	case "metrics", "healthz":
		return "/" + segments[0]
	default:
		return "other"
	}
}

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/ratefit/pkg/metrics"
)

// MetricsMiddleware records request count and latency for endpoint, and
// counts 4xx/5xx responses as errors of the "http_<endpoint>" component.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next(rec, r)

		status := rec.status()
		code := strconv.Itoa(status)
		metrics.RecordHTTPRequest(endpoint, r.Method, code)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, float64(time.Since(start).Microseconds())/1000)
		if kind, failed := errorKind(status); failed {
			metrics.RecordErrorByComponent("http_"+endpoint, kind)
		}
	}
}

func errorKind(status int) (string, bool) {
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error", true
	case status == http.StatusNotFound:
		return "not_found", true
	case status == http.StatusMethodNotAllowed:
		return "method_not_allowed", true
	case status >= http.StatusBadRequest:
		return "client_error", true
	}
	return "", false
}

// statusRecorder remembers the first status written. A handler that only
// calls Write gets 200, as net/http does.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.code == 0 {
		s.code = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.code == 0 {
		s.code = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) status() int {
	if s.code == 0 {
		return http.StatusOK
	}
	return s.code
}

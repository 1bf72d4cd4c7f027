package middleware

import (
	"net/http"
	"time"

	"mimaas/internal/platform/logger"
	"mimaas/internal/platform/metrics"
	pnet "mimaas/internal/platform/net"

	"github.com/go-chi/chi/v5"
)

// AccessLogOptions configures AccessLog
type AccessLogOptions struct {
	// Slow logs requests at warn once they take at least this long; 0 disables
	Slow time.Duration
	// Metrics counts requests by route pattern when set
	Metrics *metrics.Server
}

// statusRecorder remembers the status and body size a handler produced
type statusRecorder struct {
	http.ResponseWriter
	code int
	size int64
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
	n, err := s.ResponseWriter.Write(b)
	s.size += int64(n)
	return n, err
}

// Unwrap exposes the wrapped writer to http.ResponseController
func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

func (s *statusRecorder) status() int {
	if s.code == 0 {
		return http.StatusOK
	}
	return s.code
}

// AccessLog writes one zerolog line per request and counts it by chi route pattern
// 5xx answers log at error, slow ones at warn
func AccessLog(o AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(rec, r)
			took := time.Since(start)

			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := rec.status()
			o.Metrics.Served(r.Method, route, status)

			log := logger.Named("mock")
			evt := log.Info()
			switch {
			case status >= http.StatusInternalServerError:
				evt = log.Error()
			case o.Slow > 0 && took >= o.Slow:
				evt = log.Warn().Bool("slow", true)
			}
			evt.Str("request_id", pnet.RequestID(r.Context())).
				Str("method", r.Method).
				Str("route", route).
				Int("status", status).
				Int64("size", rec.size).
				Dur("took", took).
				Msg("served")
		})
	}
}

// Package metrics defines the Prometheus collectors for client calls and the
// mock server
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Client tracks outgoing API calls
// A nil *Client is valid and records nothing
type Client struct {
	// CallsTotal counts calls per operation and HTTP status ("0" for transport failures)
	CallsTotal *prometheus.CounterVec
	// ErrorsTotal counts failed calls per operation and error class
	ErrorsTotal *prometheus.CounterVec
	// Latency tracks time to response headers per operation
	Latency *prometheus.HistogramVec
}

// NewClient builds the client collectors and registers them on reg
// With a nil reg the collectors work but are not exported anywhere
func NewClient(reg prometheus.Registerer) *Client {
	f := promauto.With(reg)
	return &Client{
		CallsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mimaas_client_calls_total",
				Help: "Total number of API calls",
			},
			[]string{"op", "status"},
		),
		ErrorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mimaas_client_errors_total",
				Help: "Total number of failed API calls",
			},
			[]string{"op", "error_type"},
		),
		Latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mimaas_client_latency_seconds",
				Help:    "API call latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
}

// Observe records one finished call
func (m *Client) Observe(op string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.CallsTotal.WithLabelValues(op, strconv.Itoa(status)).Inc()
	m.Latency.WithLabelValues(op).Observe(d.Seconds())
}

// Fail records a failed call under errType
func (m *Client) Fail(op, errType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(op, errType).Inc()
}

// Server tracks requests handled by the mock server
type Server struct {
	RequestsTotal *prometheus.CounterVec
	// QueueDepth is the number of evaluation requests not yet terminal
	QueueDepth prometheus.Gauge
}

// NewServer builds the server collectors and registers them on reg
func NewServer(reg prometheus.Registerer) *Server {
	f := promauto.With(reg)
	return &Server{
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mimaas_mock_requests_total",
				Help: "Total number of HTTP requests served",
			},
			[]string{"method", "route", "status"},
		),
		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "mimaas_mock_queue_depth",
			Help: "Evaluation requests not yet done or failed",
		}),
	}
}

// Served records one handled request
func (m *Server) Served(method, route string, status int) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

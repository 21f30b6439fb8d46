package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type Metrics struct {
	Registry *prometheus.Registry

	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	MovesCreated    prometheus.Counter
	MovesExpired    prometheus.Counter
	Votes           *prometheus.CounterVec
	MessagesSent    prometheus.Counter
}

// New registers every collector on a fresh registry so that several
// instances (one per test app) never collide.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moves_http_requests_total",
				Help: "Total number of HTTP requests by route and status code",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "moves_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		MovesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moves_created_total",
			Help: "Total number of moves proposed",
		}),
		MovesExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moves_expired_total",
			Help: "Total number of moves deleted by the cleanup sweep",
		}),
		Votes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moves_votes_total",
				Help: "Total number of vote toggles by outcome",
			},
			[]string{"action"},
		),
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moves_messages_sent_total",
			Help: "Total number of direct messages sent",
		}),
	}

	reg.MustRegister(
		m.Requests,
		m.RequestDuration,
		m.MovesCreated,
		m.MovesExpired,
		m.Votes,
		m.MessagesSent,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

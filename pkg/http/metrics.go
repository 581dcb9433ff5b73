package http

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "contentgraph"

// Metrics are the HTTP facing metrics of the query endpoint.
type Metrics struct {
	Requests        *prometheus.CounterVec
	Sentinels       prometheus.Counter
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the metrics and registers them with registerer if it isn't nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of query requests by status code",
			},
			[]string{"status"},
		),
		Sentinels: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "resolve",
				Name:      "max_nesting_level_total",
				Help:      "Total number of references answered with the maximum nesting level message",
			},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Query request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"domain"},
		),
	}
	if registerer != nil {
		registerer.MustRegister(m.Requests, m.Sentinels, m.RequestDuration)
	}
	return m
}

func (m *Metrics) observe(status int, domain string, sentinels int, duration time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(strconv.Itoa(status)).Inc()
	if sentinels > 0 {
		m.Sentinels.Add(float64(sentinels))
	}
	if domain != "" {
		m.RequestDuration.WithLabelValues(domain).Observe(duration.Seconds())
	}
}

package imagesearch

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type clientMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newClientMetrics(registerer prometheus.Registerer) *clientMetrics {
	metrics := &clientMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "imagesearch_requests_total",
			Help: "Requests sent to the image search API by action and outcome.",
		}, []string{"action", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "imagesearch_request_duration_seconds",
			Help:    "Latency of image search API requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"action"}),
	}
	if registerer == nil {
		return metrics
	}

	metrics.requests = register(registerer, metrics.requests)
	metrics.duration = register(registerer, metrics.duration)
	return metrics
}

// register returns the already registered collector when an identical one exists.
func register[C prometheus.Collector](registerer prometheus.Registerer, collector C) C {
	if err := registerer.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return collector
}

func (m *clientMetrics) observe(action string, started time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.requests.WithLabelValues(action, outcome).Inc()
	m.duration.WithLabelValues(action).Observe(time.Since(started).Seconds())
}

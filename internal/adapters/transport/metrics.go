package transport

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts transport activity. A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	attempts *prometheus.CounterVec
	retries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the transport collectors and registers them on reg when
// it is not nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "efc_api_requests_total",
			Help: "Settled API calls by method and outcome.",
		}, []string{"method", "outcome"}),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "efc_api_attempts_total",
			Help: "Individual HTTP attempts, including retries.",
		}, []string{"method"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "efc_api_retries_total",
			Help: "Attempts beyond the first for a single API call.",
		}, []string{"method"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "efc_api_request_duration_seconds",
			Help:    "Wall time of an API call across all of its attempts.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 90},
		}, []string{"method"}),
	}

	if reg != nil {
		for _, collector := range []prometheus.Collector{m.requests, m.attempts, m.retries, m.duration} {
			if err := reg.Register(collector); err != nil {
				return nil, err
			}
		}
	}

	return m, nil
}

func (m *Metrics) observeAttempt(method string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(method).Inc()
}

func (m *Metrics) observeCall(method string, outcome string, attempts int, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.requests.WithLabelValues(method, outcome).Inc()
	if attempts > 1 {
		m.retries.WithLabelValues(method).Add(float64(attempts - 1))
	}
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func outcomeFor(err *Error) string {
	if err == nil {
		return "success"
	}
	if err.Kind == KindHTTP {
		if err.Status >= 500 {
			return "http_5xx"
		}
		return "http_4xx"
	}

	return string(err.Kind)
}

package relay

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess        = "success"
	outcomeFailure        = "failure"
	outcomeTransportError = "transport_error"
)

// Metrics are optional; a nil *Metrics records nothing.
type Metrics struct {
	Fetches         *prometheus.CounterVec
	Downgrades      prometheus.Counter
	AttemptDuration *prometheus.HistogramVec
}

// NewMetrics creates the relay collectors and registers them on reg when
// reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "proxyview",
			Subsystem: "relay",
			Name:      "fetches_total",
			Help:      "Relayed requests by outcome.",
		}, []string{"outcome"}),
		Downgrades: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "proxyview",
			Subsystem: "relay",
			Name:      "downgrades_total",
			Help:      "Secure attempts that faulted and were retried over http.",
		}),
		AttemptDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "proxyview",
			Subsystem: "relay",
			Name:      "attempt_duration_seconds",
			Help:      "Duration of individual transport attempts.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"transport"}),
	}
	if reg != nil {
		reg.MustRegister(m.Fetches, m.Downgrades, m.AttemptDuration)
	}
	return m
}

func (m *Metrics) fetched(outcome string) {
	if m == nil {
		return
	}
	m.Fetches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) downgraded() {
	if m == nil {
		return
	}
	m.Downgrades.Inc()
}

func (m *Metrics) attempted(transport string, d time.Duration) {
	if m == nil {
		return
	}
	m.AttemptDuration.WithLabelValues(transport).Observe(d.Seconds())
}

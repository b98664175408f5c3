package obs

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"water-route-service/internal/domain"
)

// MetricsSink exports attempt and resolution counters to Prometheus.
type MetricsSink struct {
	attempts    *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	resolutions *prometheus.CounterVec
}

// NewMetricsSink registers the route metrics on reg.
func NewMetricsSink(reg prometheus.Registerer) (*MetricsSink, error) {
	m := &MetricsSink{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "water_route",
			Name:      "attempts_total",
			Help:      "Resolution attempts by method and outcome.",
		}, []string{"method", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "water_route",
			Name:      "attempt_duration_seconds",
			Help:      "Duration of resolution attempts.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		}, []string{"method"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "water_route",
			Name:      "resolutions_total",
			Help:      "Completed resolutions by winning method, or exhausted.",
		}, []string{"method"}),
	}

	for _, c := range []prometheus.Collector{m.attempts, m.durations, m.resolutions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *MetricsSink) RecordAttempt(_ context.Context, ev domain.AttemptEvent) {
	m.attempts.WithLabelValues(string(ev.Method), string(ev.Outcome)).Inc()
	m.durations.WithLabelValues(string(ev.Method)).Observe(ev.Duration.Seconds())
}

// ObserveResolution counts a finished resolution. method is empty when every
// strategy was exhausted.
func (m *MetricsSink) ObserveResolution(method domain.Method) {
	label := string(method)
	if label == "" {
		label = "exhausted"
	}
	m.resolutions.WithLabelValues(label).Inc()
}

package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts engine activity.
type Metrics struct {
	predictions *prometheus.CounterVec
	scoring     *prometheus.HistogramVec
}

// NewMetrics registers the engine collectors on reg. A nil reg leaves them
// unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brai_predictions_total",
			Help: "Prediction requests by mode and outcome (created, reused, failed).",
		}, []string{"mode", "outcome"}),
		scoring: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "brai_prediction_duration_seconds",
			Help:    "Time spent computing a new prediction.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"mode"}),
	}
	if reg != nil {
		reg.MustRegister(m.predictions, m.scoring)
	}
	return m
}

func (m *Metrics) observe(mode, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(mode, outcome).Inc()
	if outcome == outcomeCreated {
		m.scoring.WithLabelValues(mode).Observe(seconds)
	}
}

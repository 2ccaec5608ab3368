// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of successful predictions by verdict",
		},
		[]string{"verdict"},
	)

	PredictionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prediction_failures_total",
			Help: "Total number of failed predictions by error code",
		},
		[]string{"error_code"},
	)

	PredictionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prediction_duration_seconds",
			Help:    "Duration of prediction requests in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"transport"},
	)

	ArtifactLoaded = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "artifact_loaded",
			Help: "1 when the artifact is loaded, 0 otherwise",
		},
		[]string{"artifact"},
	)

	ClassResolution = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "class_resolution_total",
			Help: "Positive class resolutions by resolver step",
		},
		[]string{"step"},
	)

	PredictionCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prediction_cache_total",
			Help: "Prediction cache lookups by result",
		},
		[]string{"result"},
	)

	RiskAlerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_alerts_total",
			Help: "High-risk alerts by delivery status",
		},
		[]string{"status"},
	)
)

// SetArtifactLoaded flips the artifact gauge.
func SetArtifactLoaded(artifact string, loaded bool) {
	v := 0.0
	if loaded {
		v = 1
	}
	ArtifactLoaded.WithLabelValues(artifact).Set(v)
}

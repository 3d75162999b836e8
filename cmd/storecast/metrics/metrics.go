// Package metrics provides Prometheus instrumentation for the storecast server.
//
// Metrics exposed:
//   - storecast_predictions_total: Counter of completed predictions by demand label
//   - storecast_stage_duration_seconds: Histogram of pipeline stage durations
//   - storecast_errors_total: Counter of failures by component and reason
//   - storecast_last_sales_prediction: Gauge of the most recent predicted weekly sales
//   - storecast_model_info: Gauge set to 1 for each loaded model artifact
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics implements pipeline.Observer.
type Metrics struct {
	PredictionsTotal *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
	ErrorsTotal      *prometheus.CounterVec
	LastSalesPredict prometheus.Gauge
	ModelInfo        *prometheus.GaugeVec
}

// New registers all metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PredictionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storecast_predictions_total",
			Help: "Total number of completed predictions by final demand label",
		}, []string{"label"}),

		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storecast_stage_duration_seconds",
			Help:    "Duration of prediction pipeline stages",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"stage"}),

		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storecast_errors_total",
			Help: "Total number of errors by component and reason",
		}, []string{"component", "reason"}),

		LastSalesPredict: factory.NewGauge(prometheus.GaugeOpts{
			Name: "storecast_last_sales_prediction",
			Help: "Most recent predicted weekly sales",
		}),

		ModelInfo: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "storecast_model_info",
			Help: "Loaded model artifacts by pipeline role",
		}, []string{"role", "name", "kind"}),
	}
}

func (m *Metrics) ObserveStage(stage string, seconds float64) {
	m.StageDuration.WithLabelValues(stage).Observe(seconds)
}

func (m *Metrics) RecordError(component, reason string) {
	m.ErrorsTotal.WithLabelValues(component, reason).Inc()
}

func (m *Metrics) RecordPrediction(label string, salesPred float64) {
	m.PredictionsTotal.WithLabelValues(label).Inc()
	m.LastSalesPredict.Set(salesPred)
}

func (m *Metrics) SetModelInfo(role, name, kind string) {
	m.ModelInfo.WithLabelValues(role, name, kind).Set(1)
}

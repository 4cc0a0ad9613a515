package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	orderBookUpdates *prometheus.CounterVec
	streamReconnects prometheus.Counter
	errorsTotal      *prometheus.CounterVec
	lastPrice        *prometheus.GaugeVec
	latency          *prometheus.HistogramVec
	trainingRuns     prometheus.Counter
	trainingAccuracy prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		orderBookUpdates: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_orderbook_updates_total",
				Help: "Total number of order book snapshots ingested from the stream",
			},
			[]string{"figi"},
		),
		streamReconnects: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "marketpulse_stream_reconnects_total",
				Help: "Total number of streaming connection attempts after a failure",
			},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "marketpulse_last_price",
				Help: "Last analyzed close price for a ticker",
			},
			[]string{"ticker"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		trainingRuns: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "marketpulse_training_runs_total",
				Help: "Total number of successful classifier training runs",
			},
		),
		trainingAccuracy: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "marketpulse_training_accuracy",
				Help: "Training-set accuracy of the active classifier snapshot",
			},
		),
	}
}

// RecordOrderBookUpdate records a snapshot written into the market cache.
func (r *Recorder) RecordOrderBookUpdate(figi string) {
	r.orderBookUpdates.WithLabelValues(figi).Inc()
}

// RecordStreamReconnect records a streaming reconnect attempt.
func (r *Recorder) RecordStreamReconnect() {
	r.streamReconnects.Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last analyzed price for a ticker.
func (r *Recorder) RecordLastPrice(ticker string, price float64) {
	r.lastPrice.WithLabelValues(ticker).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordTraining records a successful training run and its accuracy.
func (r *Recorder) RecordTraining(accuracy float64) {
	r.trainingRuns.Inc()
	r.trainingAccuracy.Set(accuracy)
}

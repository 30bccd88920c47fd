package metrics

import (
	"net/http"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lockdrop"

// Metrics holds the collectors of one service instance on a private registry.
type Metrics struct {
	registry    *prometheus.Registry
	operations  *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	totalStaked prometheus.Gauge
	totalValue  prometheus.Gauge
	stakers     prometheus.Gauge
	height      prometheus.Gauge
	emitErrors  prometheus.Counter
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Executed messages by action and result.",
		}, []string{"action", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Time spent executing a message, including persistence.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
		totalStaked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_staked_shares",
			Help:      "Outstanding shares at the latest committed height.",
		}),
		totalValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_value",
			Help:      "Staking denom held by the contract.",
		}),
		stakers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stakers",
			Help:      "Holders with a recorded share balance.",
		}),
		height: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "block_height",
			Help:      "Height of the latest committed operation.",
		}),
		emitErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emit_errors_total",
			Help:      "Events that could not be published.",
		}),
	}
	m.registry.MustRegister(
		m.operations, m.latency, m.totalStaked, m.totalValue, m.stakers, m.height, m.emitErrors,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveOperation counts one executed message and records its latency.
func (m *Metrics) ObserveOperation(action string, err error, took time.Duration) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(action, result).Inc()
	m.latency.WithLabelValues(action).Observe(took.Seconds())
}

// SetTotals publishes the latest committed totals. A gauge keeps its previous
// value when its amount cannot be converted.
func (m *Metrics) SetTotals(height uint64, staked, value sdkmath.Int, stakers int) {
	m.height.Set(float64(height))
	m.stakers.Set(float64(stakers))
	if f, err := AmountToFloat64(staked); err == nil {
		m.totalStaked.Set(f)
	}
	if f, err := AmountToFloat64(value); err == nil {
		m.totalValue.Set(f)
	}
}

func (m *Metrics) EmitFailed() { m.emitErrors.Inc() }

// Registry returns the registry backing Handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Latency: время полного цикла вкладки (данные + шейпинг)
	RenderDuration *prometheus.HistogramVec

	// Traffic: количество рендеров по вкладкам и итогу (ok / no_data / error)
	RendersTotal *prometheus.CounterVec

	// Исходы чтения ленты уязвимостей: ok или причина отката на синтетику
	FeedFetchTotal *prometheus.CounterVec

	// Saturation: состояние Circuit Breaker ленты (0 - closed, 1 - half-open, 2 - open)
	CircuitBreakerState *prometheus.GaugeVec

	// Журнал рендеров: заполненность буфера (backpressure)
	JournalBufferFill prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		RenderDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_render_duration_seconds",
			Help:    "Histogram of view render latencies.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"view", "status"}),

		RendersTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_renders_total",
			Help: "Total number of rendered views.",
		}, []string{"view", "status"}),

		FeedFetchTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_feed_fetch_total",
			Help: "Advisory feed fetch attempts by outcome.",
		}, []string{"outcome"}), // ok, transport, status, decode, empty, circuit_open, rate_limited

		CircuitBreakerState: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "dashboard_feed_circuit_breaker_state",
			Help: "Current state of the advisory feed circuit breaker (0=closed, 1=half-open, 2=open).",
		}, []string{"feed"}),

		JournalBufferFill: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_journal_buffer_utilization",
			Help: "Current number of events in the render journal buffer.",
		}),
	}
}

// ObserveFeed реализует provider.FeedObserver
func (m *Metrics) ObserveFeed(outcome string) {
	m.FeedFetchTotal.WithLabelValues(outcome).Inc()
}

// ObserveJournalFill реализует audit.BufferObserver
func (m *Metrics) ObserveJournalFill(n int) {
	m.JournalBufferFill.Set(float64(n))
}

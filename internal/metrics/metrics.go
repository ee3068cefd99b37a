package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every metric the venue exposes. Each collector owns its
// registry so tests can construct one without tripping duplicate
// registration.
type Collector struct {
	registry *prometheus.Registry

	// Engine metrics
	CommandsTotal  *prometheus.CounterVec
	RejectsTotal   *prometheus.CounterVec
	TradesTotal    prometheus.Counter
	TradeVolume    prometheus.Counter
	LastTradePrice prometheus.Gauge
	RestingOrders  prometheus.Gauge
	BookLevels     *prometheus.GaugeVec
	CommandLatency prometheus.Histogram

	// Drift detector: stale FIFO references repaired during matching.
	// Anything above zero means a book invariant drifted in production.
	StaleSweepsTotal prometheus.Counter

	// Collaborator metrics
	PersistedRowsTotal prometheus.Counter
	PersistErrorsTotal prometheus.Counter
	PublishedTotal     *prometheus.CounterVec
	PublishErrorsTotal prometheus.Counter
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,

		CommandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_commands_total",
			Help: "Commands consumed by the matching engine, by type.",
		}, []string{"type"}),
		RejectsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_rejects_total",
			Help: "Order rejections emitted, by reason.",
		}, []string{"reason"}),
		TradesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "engine_trades_total",
			Help: "Trades emitted.",
		}),
		TradeVolume: factory.NewCounter(prometheus.CounterOpts{
			Name: "engine_trade_volume_lots_total",
			Help: "Total traded quantity in lots.",
		}),
		LastTradePrice: factory.NewGauge(prometheus.GaugeOpts{
			Name: "engine_last_trade_price_ticks",
			Help: "Price of the most recent trade in ticks.",
		}),
		RestingOrders: factory.NewGauge(prometheus.GaugeOpts{
			Name: "engine_resting_orders",
			Help: "Orders currently resting in the book.",
		}),
		BookLevels: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "engine_book_levels",
			Help: "Populated price levels per side.",
		}, []string{"side"}),
		CommandLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "engine_command_seconds",
			Help:    "Wall time spent processing one command.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		StaleSweepsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "engine_stale_sweeps_total",
			Help: "Stale FIFO references discarded by the matcher.",
		}),

		PersistedRowsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "persistence_rows_total",
			Help: "Rows written by the persistence writer.",
		}),
		PersistErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "persistence_errors_total",
			Help: "Events the persistence writer failed to store.",
		}),
		PublishedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "marketdata_published_total",
			Help: "Market-data events published, by stream.",
		}, []string{"stream"}),
		PublishErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "marketdata_publish_errors_total",
			Help: "Market-data publish failures.",
		}),
	}
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry over HTTP.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

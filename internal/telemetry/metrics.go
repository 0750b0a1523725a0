package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Polls counts refresh cycles by outcome
	Polls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "heatmap",
			Name:      "polls_total",
			Help:      "Total number of snapshot polls against the campaign API",
		},
		[]string{"result"},
	)

	// PollDuration observes the combined heatmap + stats round trip
	PollDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "heatmap",
			Name:      "poll_duration_seconds",
			Help:      "Duration of the sequential heatmap and coverage stats fetch",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// LiveUpdates counts location_update events applied to the dashboard
	LiveUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "heatmap",
			Name:      "live_updates_total",
			Help:      "Total number of live location updates received",
		},
		[]string{"result"},
	)

	// Points reports the size of the displayed point set
	Points = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "heatmap",
			Name:      "points",
			Help:      "Number of points currently on the heat overlay",
		},
	)

	// FeedReconnects counts live feed reconnect attempts
	FeedReconnects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "heatmap",
			Name:      "feed_reconnects_total",
			Help:      "Total number of live feed reconnect attempts",
		},
	)

	// LayerRebuilds counts heat overlay installations
	LayerRebuilds = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "heatmap",
			Name:      "layer_rebuilds_total",
			Help:      "Total number of heat overlays installed",
		},
	)

	// BrowserClients reports connected dashboard websocket clients
	BrowserClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "heatmap",
			Name:      "browser_clients",
			Help:      "Number of connected dashboard websocket clients",
		},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// It is idempotent.
func InitMetrics() {
	once.Do(func() {
		// Registration errors only mean the collector is already present
		prometheus.DefaultRegisterer.Register(Polls)
		prometheus.DefaultRegisterer.Register(PollDuration)
		prometheus.DefaultRegisterer.Register(LiveUpdates)
		prometheus.DefaultRegisterer.Register(Points)
		prometheus.DefaultRegisterer.Register(FeedReconnects)
		prometheus.DefaultRegisterer.Register(LayerRebuilds)
		prometheus.DefaultRegisterer.Register(BrowserClients)
	})
}

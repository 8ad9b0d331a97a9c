package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PolicyDenials counts authorization denials by action.
	PolicyDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_policy_denials_total",
		Help: "Total number of requests denied by the access policy",
	}, []string{"action"})

	// LikeToggles counts like toggles by resulting state ("liked" or "unliked").
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_like_toggles_total",
		Help: "Total number of like toggles by resulting state",
	}, []string{"state"})

	// MessagesPosted counts created messages.
	MessagesPosted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warbler_messages_posted_total",
		Help: "Total number of messages posted",
	})

	// DatabaseQueryLatency records repository call latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "warbler_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FeedConnections is the gauge of open live feed sockets.
	FeedConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "warbler_feed_connections",
		Help: "Number of open live feed WebSocket connections",
	})

	// FeedDrops counts live feed events dropped due to backpressure by reason.
	FeedDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_feed_drops_total",
		Help: "Total number of live feed events dropped",
	}, []string{"reason"})
)

// TrackQuery returns a func that records the latency of a query when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector exposes the service metrics. A nil *Collector is a valid
// no-op recorder, so components never need to check whether metrics
// are enabled.
type Collector struct {
	registry *prometheus.Registry

	chatConnections   prometheus.Gauge
	searchConnections prometheus.Gauge

	messagesPosted      prometheus.Counter
	broadcastDeliveries prometheus.Counter
	broadcastFailures   prometheus.Counter
	searchQueries       prometheus.Counter
	authDenials         *prometheus.CounterVec
	malformedFrames     *prometheus.CounterVec

	broadcastDuration prometheus.Histogram
	searchDuration    prometheus.Histogram
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,

		chatConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "classhub_chat_connections",
			Help: "Number of live chat connections across all channels",
		}),

		searchConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "classhub_search_connections",
			Help: "Number of live search connections",
		}),

		messagesPosted: factory.NewCounter(prometheus.CounterOpts{
			Name: "classhub_chat_messages_posted_total",
			Help: "Total number of chat messages accepted and persisted",
		}),

		broadcastDeliveries: factory.NewCounter(prometheus.CounterOpts{
			Name: "classhub_broadcast_deliveries_total",
			Help: "Total number of per-connection broadcast deliveries",
		}),

		broadcastFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "classhub_broadcast_failures_total",
			Help: "Total number of failed per-connection broadcast deliveries",
		}),

		searchQueries: factory.NewCounter(prometheus.CounterOpts{
			Name: "classhub_search_queries_total",
			Help: "Total number of live search queries evaluated",
		}),

		authDenials: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "classhub_authorization_denials_total",
			Help: "Total number of rejected operations by operation name",
		}, []string{"operation"}),

		malformedFrames: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "classhub_malformed_frames_total",
			Help: "Total number of dropped undecodable websocket frames",
		}, []string{"stream"}),

		broadcastDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "classhub_broadcast_duration_seconds",
			Help:    "Duration of one channel broadcast round",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),

		searchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "classhub_search_duration_seconds",
			Help:    "Duration of one search query evaluation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}
}

// Registry returns the prometheus registry backing this collector.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) SetChatConnections(n int) {
	if c == nil {
		return
	}
	c.chatConnections.Set(float64(n))
}

func (c *Collector) SetSearchConnections(n int) {
	if c == nil {
		return
	}
	c.searchConnections.Set(float64(n))
}

func (c *Collector) RecordMessagePosted() {
	if c == nil {
		return
	}
	c.messagesPosted.Inc()
}

func (c *Collector) RecordBroadcastDelivery() {
	if c == nil {
		return
	}
	c.broadcastDeliveries.Inc()
}

func (c *Collector) RecordBroadcastFailure() {
	if c == nil {
		return
	}
	c.broadcastFailures.Inc()
}

func (c *Collector) RecordSearchQuery(duration time.Duration) {
	if c == nil {
		return
	}
	c.searchQueries.Inc()
	c.searchDuration.Observe(duration.Seconds())
}

func (c *Collector) RecordBroadcastRound(duration time.Duration) {
	if c == nil {
		return
	}
	c.broadcastDuration.Observe(duration.Seconds())
}

func (c *Collector) RecordAuthDenial(operation string) {
	if c == nil {
		return
	}
	c.authDenials.WithLabelValues(operation).Inc()
}

func (c *Collector) RecordMalformedFrame(stream string) {
	if c == nil {
		return
	}
	c.malformedFrames.WithLabelValues(stream).Inc()
}

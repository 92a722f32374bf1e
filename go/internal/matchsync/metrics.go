package matchsync

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector defines the interface for collecting sync metrics
type MetricsCollector interface {
	RecordEventPublished(publisher string, action Action, success bool, duration time.Duration)
	RecordPublishAttempt(publisher string, attempt int, success bool)
	RecordQueueDepth(depth int)
	RecordDropped(action Action)
}

// NoOpMetricsCollector is a no-op implementation for when metrics aren't needed
type NoOpMetricsCollector struct{}

func (n *NoOpMetricsCollector) RecordEventPublished(publisher string, action Action, success bool, duration time.Duration) {}
func (n *NoOpMetricsCollector) RecordPublishAttempt(publisher string, attempt int, success bool)                           {}
func (n *NoOpMetricsCollector) RecordQueueDepth(depth int)                                                                 {}
func (n *NoOpMetricsCollector) RecordDropped(action Action)                                                                {}

// PrometheusMetrics implements MetricsCollector using Prometheus
type PrometheusMetrics struct {
	eventCounter    *prometheus.CounterVec
	eventDuration   *prometheus.HistogramVec
	publishAttempts *prometheus.CounterVec
	queueDepth      prometheus.Gauge
	dropped         *prometheus.CounterVec
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		eventCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scorekeeper",
			Subsystem: "sync",
			Name:      "events_published_total",
			Help:      "Sync events handed to a publisher, by outcome.",
		}, []string{"publisher", "action", "status"}),
		eventDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scorekeeper",
			Subsystem: "sync",
			Name:      "publish_duration_seconds",
			Help:      "Time spent publishing one sync event, retries included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"publisher"}),
		publishAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scorekeeper",
			Subsystem: "sync",
			Name:      "publish_attempts_total",
			Help:      "Individual publish attempts, by attempt number and outcome.",
		}, []string{"publisher", "attempt", "status"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scorekeeper",
			Subsystem: "sync",
			Name:      "queue_depth",
			Help:      "Sync events waiting to be published.",
		}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scorekeeper",
			Subsystem: "sync",
			Name:      "events_dropped_total",
			Help:      "Sync events dropped because the queue was full.",
		}, []string{"action"}),
	}

	for _, c := range []prometheus.Collector{m.eventCounter, m.eventDuration, m.publishAttempts, m.queueDepth, m.dropped} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func (m *PrometheusMetrics) RecordEventPublished(publisher string, action Action, success bool, duration time.Duration) {
	m.eventCounter.WithLabelValues(publisher, string(action), status(success)).Inc()
	m.eventDuration.WithLabelValues(publisher).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordPublishAttempt(publisher string, attempt int, success bool) {
	m.publishAttempts.WithLabelValues(publisher, strconv.Itoa(attempt), status(success)).Inc()
}

func (m *PrometheusMetrics) RecordQueueDepth(depth int) {
	m.queueDepth.Set(float64(depth))
}

func (m *PrometheusMetrics) RecordDropped(action Action) {
	m.dropped.WithLabelValues(string(action)).Inc()
}

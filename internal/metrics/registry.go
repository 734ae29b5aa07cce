package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dispatch statuses.
const (
	StatusDispatched = "dispatched"
	StatusSkipped    = "skipped"
	StatusUnknown    = "unknown"
	StatusMalformed  = "malformed"
)

// EventOther is the event label of payloads without a known event type.
const EventOther = "other"

// Registry holds the relay metrics on a private prometheus registry.
type Registry struct {
	registry *prometheus.Registry

	dispatchTotal      *prometheus.CounterVec
	dispatchDuration   *prometheus.HistogramVec
	subscriberFailures *prometheus.CounterVec
	shardsOpen         prometheus.Gauge
	startTime          prometheus.Gauge
}

func NewRegistry() *Registry {
	registry := prometheus.NewRegistry()

	r := &Registry{
		registry: registry,

		dispatchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_dispatch_total",
				Help: "Total number of gateway events received",
			},
			[]string{"event", "shard", "status"}, // status: dispatched, skipped, unknown, malformed
		),

		dispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "relay_dispatch_duration_seconds",
				Help:    "Time spent decoding an event and running its subscribers",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"event"},
		),

		subscriberFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_subscriber_failures_total",
				Help: "Total number of subscriber calls that returned an error or panicked",
			},
			[]string{"event"},
		),

		shardsOpen: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "relay_shards_open",
				Help: "Number of gateway shards currently open",
			},
		),

		startTime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "relay_start_time_seconds",
				Help: "Unix timestamp when the application started",
			},
		),
	}

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	registry.MustRegister(
		r.dispatchTotal,
		r.dispatchDuration,
		r.subscriberFailures,
		r.shardsOpen,
		r.startTime,
	)

	r.startTime.SetToCurrentTime()

	return r
}

// Handler returns an HTTP handler for the Prometheus metrics endpoint
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		Registry:          r.registry,
	})
}

// Gatherer exposes the underlying registry, mostly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// RecordDispatch records a single gateway event.
func (r *Registry) RecordDispatch(event string, shard int, status string, duration time.Duration) {
	if status == StatusUnknown || status == StatusMalformed {
		event = EventOther
	}
	r.dispatchTotal.WithLabelValues(event, strconv.Itoa(shard), status).Inc()
	if status == StatusDispatched {
		r.dispatchDuration.WithLabelValues(event).Observe(duration.Seconds())
	}
}

func (r *Registry) RecordSubscriberFailure(event string) {
	r.subscriberFailures.WithLabelValues(event).Inc()
}

func (r *Registry) ShardOpened() {
	r.shardsOpen.Inc()
}

func (r *Registry) ShardClosed() {
	r.shardsOpen.Dec()
}

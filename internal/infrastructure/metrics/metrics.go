package metrics

import (
	"net/http"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storesync"

// Pass outcomes
const (
	OutcomeSuccess = "success"
	OutcomeAborted = "aborted"
)

// Record outcomes
const (
	RecordCreated   = "created"
	RecordUpdated   = "updated"
	RecordSkipped   = "skipped"
	RecordException = "exception"
)

// SyncMetrics records pass results as Prometheus metrics
type SyncMetrics struct {
	registry *prometheus.Registry

	passes       *prometheus.CounterVec
	records      *prometheus.CounterVec
	passDuration *prometheus.HistogramVec
	lastSuccess  *prometheus.GaugeVec
	abortsByKind *prometheus.CounterVec
}

// New registers the sync metrics on a fresh registry, alongside the Go
// runtime and process collectors.
func New() *SyncMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &SyncMetrics{
		registry: registry,
		passes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "passes_total",
				Help:      "Sync passes by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		records: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_total",
				Help:      "Records processed by operation and outcome",
			},
			[]string{"channel_id", "operation", "outcome"},
		),
		passDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pass_duration_seconds",
				Help:      "Duration of sync passes",
				Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900},
			},
			[]string{"operation"},
		),
		lastSuccess: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful pass",
			},
			[]string{"channel_id", "operation"},
		),
		abortsByKind: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pass_aborts_total",
				Help:      "Aborted passes by error kind",
			},
			[]string{"operation", "kind"},
		),
	}
}

// ObservePass records one finished pass
func (m *SyncMetrics) ObservePass(result *integration.PassResult, err error) {
	if result == nil {
		return
	}
	op := string(result.Operation)
	channel := result.ChannelID.String()

	if !result.FinishedAt.IsZero() {
		m.passDuration.WithLabelValues(op).Observe(result.FinishedAt.Sub(result.StartedAt).Seconds())
	}

	m.records.WithLabelValues(channel, op, RecordCreated).Add(float64(result.Created))
	m.records.WithLabelValues(channel, op, RecordUpdated).Add(float64(result.Updated))
	m.records.WithLabelValues(channel, op, RecordSkipped).Add(float64(result.Skipped))
	m.records.WithLabelValues(channel, op, RecordException).Add(float64(len(result.Exceptions)))

	if err != nil {
		kind, ok := integration.KindOf(err)
		if !ok {
			kind = "INTERNAL"
		}
		m.passes.WithLabelValues(op, OutcomeAborted).Inc()
		m.abortsByKind.WithLabelValues(op, string(kind)).Inc()
		return
	}
	m.passes.WithLabelValues(op, OutcomeSuccess).Inc()
	m.lastSuccess.WithLabelValues(channel, op).Set(float64(result.FinishedAt.Unix()))
}

// Registry returns the registry holding the sync metrics
func (m *SyncMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *SyncMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusCollector exports measurements as Prometheus metrics.
type PrometheusCollector struct {
	rebuilds        *prometheus.CounterVec
	rebuildLatency  prometheus.Histogram
	snapshotVersion prometheus.Gauge
	records         *prometheus.GaugeVec
	mutations       *prometheus.CounterVec
	storeCalls      *prometheus.CounterVec
	storeLatency    *prometheus.HistogramVec
	evaluations     *prometheus.CounterVec
	reportCache     *prometheus.CounterVec
	events          *prometheus.CounterVec
}

var _ Collector = (*PrometheusCollector)(nil)

func NewPrometheusCollector(namespace string) *PrometheusCollector {
	return &PrometheusCollector{
		rebuilds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_rebuilds_total",
				Help:      "Total number of snapshot rebuilds by outcome",
			},
			[]string{"status"},
		),
		rebuildLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "snapshot_rebuild_duration_seconds",
				Help:      "Time to load and index a snapshot",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
			},
		),
		snapshotVersion: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "snapshot_version",
				Help:      "Version of the published snapshot",
			},
		),
		records: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "records",
				Help:      "Records in the published snapshot per entity",
			},
			[]string{"entity"},
		),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mutations_total",
				Help:      "Total number of writes per entity, operation and outcome",
			},
			[]string{"entity", "op", "status"},
		),
		storeCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_calls_total",
				Help:      "Total number of persistence calls per operation and outcome",
			},
			[]string{"op", "status"},
		),
		storeLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_call_duration_seconds",
				Help:      "Persistence call latency",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 15),
			},
			[]string{"op"},
		),
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "budget_evaluations_total",
				Help:      "Total number of budget evaluations per status",
			},
			[]string{"status"},
		),
		reportCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_cache_requests_total",
				Help:      "Report cache lookups per report and result",
			},
			[]string{"report", "result"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Ledger change events published by outcome",
			},
			[]string{"status"},
		),
	}
}

// Register adds every metric to registry.
func (pc *PrometheusCollector) Register(registry prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		pc.rebuilds,
		pc.rebuildLatency,
		pc.snapshotVersion,
		pc.records,
		pc.mutations,
		pc.storeCalls,
		pc.storeLatency,
		pc.evaluations,
		pc.reportCache,
		pc.events,
	} {
		if err := registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (pc *PrometheusCollector) RecordRebuild(success bool, duration time.Duration) {
	pc.rebuilds.WithLabelValues(statusLabel(success)).Inc()
	if success {
		pc.rebuildLatency.Observe(duration.Seconds())
	}
}

func (pc *PrometheusCollector) RecordSnapshot(version int64, categories, transactions, budgets int) {
	pc.snapshotVersion.Set(float64(version))
	pc.records.WithLabelValues("category").Set(float64(categories))
	pc.records.WithLabelValues("transaction").Set(float64(transactions))
	pc.records.WithLabelValues("budget").Set(float64(budgets))
}

func (pc *PrometheusCollector) RecordMutation(entity, op string, success bool) {
	pc.mutations.WithLabelValues(entity, op, statusLabel(success)).Inc()
}

func (pc *PrometheusCollector) RecordStoreCall(op string, success bool, duration time.Duration) {
	pc.storeCalls.WithLabelValues(op, statusLabel(success)).Inc()
	pc.storeLatency.WithLabelValues(op).Observe(duration.Seconds())
}

func (pc *PrometheusCollector) RecordEvaluation(status string) {
	pc.evaluations.WithLabelValues(status).Inc()
}

func (pc *PrometheusCollector) RecordReportCache(report string, hit bool) {
	pc.reportCache.WithLabelValues(report, resultLabel(hit)).Inc()
}

func (pc *PrometheusCollector) RecordEventPublish(success bool) {
	pc.events.WithLabelValues(statusLabel(success)).Inc()
}

// Handler serves the metrics gathered by registry.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

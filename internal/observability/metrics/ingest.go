package metrics

import (
	"fmt"
	"time"

	"github.com/kirillkom/knowledge-ingest/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
)

type IngestMetrics struct {
	registry *prometheus.Registry
	service  string

	filesTotal   *prometheus.CounterVec
	fileDuration *prometheus.HistogramVec
	runDuration  prometheus.Gauge
	lastRunAt    prometheus.Gauge
}

func NewIngestMetrics(service string) *IngestMetrics {
	registry := prometheus.NewRegistry()

	filesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kin",
			Subsystem: "ingest",
			Name:      "files_total",
			Help:      "Processed files by parser and outcome.",
		},
		[]string{"service", "parser", "outcome"},
	)
	fileDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kin",
			Subsystem: "ingest",
			Name:      "file_duration_seconds",
			Help:      "Per-file processing duration in seconds by parser.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"service", "parser"},
	)
	runDuration := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "kin",
			Subsystem:   "ingest",
			Name:        "run_duration_seconds",
			Help:        "Wall time of the last ingestion run.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	lastRunAt := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "kin",
			Subsystem:   "ingest",
			Name:        "last_run_timestamp_seconds",
			Help:        "Unix time the last ingestion run finished.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)

	registry.MustRegister(filesTotal, fileDuration, runDuration, lastRunAt)

	return &IngestMetrics{
		registry:     registry,
		service:      service,
		filesTotal:   filesTotal,
		fileDuration: fileDuration,
		runDuration:  runDuration,
		lastRunAt:    lastRunAt,
	}
}

func (m *IngestMetrics) ObserveFile(parser domain.ParserKind, outcome domain.Outcome, seconds float64) {
	label := string(parser)
	if label == "" {
		label = "unknown"
	}
	m.filesTotal.WithLabelValues(m.service, label, string(outcome)).Inc()
	if seconds >= 0 {
		m.fileDuration.WithLabelValues(m.service, label).Observe(seconds)
	}
}

func (m *IngestMetrics) FinishRun(duration time.Duration, finishedAt time.Time) {
	m.runDuration.Set(duration.Seconds())
	m.lastRunAt.Set(float64(finishedAt.Unix()))
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *IngestMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

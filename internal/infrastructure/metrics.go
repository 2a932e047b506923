package infrastructure

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "perfmerge"

// RunMetrics holds the collectors describing a single consolidation run.
// Each run owns its registry so that the textfile only carries this run.
type RunMetrics struct {
	registry *prometheus.Registry

	ReportsRead     prometheus.Gauge
	SourcesSkipped  prometheus.Gauge
	RowsMerged      prometheus.Gauge
	RowsDropped     prometheus.Gauge
	DuplicateKeys   prometheus.Gauge
	VarianceColumns prometheus.Gauge
	CellsBySeverity *prometheus.GaugeVec
	CellsByTrend    *prometheus.GaugeVec
	StepDuration    *prometheus.GaugeVec
	RunDuration     prometheus.Gauge
	LastRun         prometheus.Gauge
	RunSuccess      prometheus.Gauge
}

// NewRunMetrics creates and registers the run collectors.
func NewRunMetrics() *RunMetrics {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      name,
			Help:      help,
		})
	}

	m := &RunMetrics{
		registry:        prometheus.NewRegistry(),
		ReportsRead:     gauge("reports_read", "Number of report sources merged"),
		SourcesSkipped:  gauge("sources_skipped", "Number of report sources that could not be read"),
		RowsMerged:      gauge("rows_merged", "Number of transactions in the merged table"),
		RowsDropped:     gauge("rows_dropped", "Number of source rows dropped for an empty key"),
		DuplicateKeys:   gauge("duplicate_keys", "Number of keys repeated within one report"),
		VarianceColumns: gauge("variance_columns", "Number of derived variance columns"),
		CellsBySeverity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "report_cells",
			Help:      "Report cells per latency severity",
		}, []string{"severity"}),
		CellsByTrend: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "variance_cells",
			Help:      "Variance cells per trend",
		}, []string{"trend"}),
		StepDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of each run step in seconds",
		}, []string{"step"}),
		RunDuration: gauge("run_duration_seconds", "Total run duration in seconds"),
		LastRun:     gauge("last_run_timestamp_seconds", "Unix time the run finished"),
		RunSuccess:  gauge("last_run_success", "1 when the run finished without error"),
	}

	m.registry.MustRegister(
		m.ReportsRead,
		m.SourcesSkipped,
		m.RowsMerged,
		m.RowsDropped,
		m.DuplicateKeys,
		m.VarianceColumns,
		m.CellsBySeverity,
		m.CellsByTrend,
		m.StepDuration,
		m.RunDuration,
		m.LastRun,
		m.RunSuccess,
	)
	return m
}

// Registry exposes the run registry, mainly for tests.
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveStep records how long one step took.
func (m *RunMetrics) ObserveStep(step string, d time.Duration) {
	if m == nil {
		return
	}
	m.StepDuration.WithLabelValues(step).Set(d.Seconds())
}

// Finish stamps the run outcome.
func (m *RunMetrics) Finish(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.RunDuration.Set(d.Seconds())
	m.LastRun.Set(float64(time.Now().Unix()))
	if err != nil {
		m.RunSuccess.Set(0)
		return
	}
	m.RunSuccess.Set(1)
}

// WriteTextfile writes the registry in the Prometheus text format, for the
// node_exporter textfile collector.
func (m *RunMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", path, err)
	}
	return nil
}

package observability

import (
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	importFilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlsql_import_files_total",
			Help: "Total number of tabular files processed by the loader.",
		},
		[]string{"status"},
	)
	importRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nlsql_import_rows_total",
			Help: "Total number of rows written into the store.",
		},
	)
	importSkippedRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nlsql_import_skipped_rows_total",
			Help: "Total number of malformed rows skipped while parsing.",
		},
	)
	schemaTables = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "nlsql_schema_tables",
			Help: "Number of tables in the last generated schema document.",
		},
	)
	translateRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlsql_translate_requests_total",
			Help: "Total number of generation service calls.",
		},
		[]string{"provider", "status"},
	)
	translateLatencyMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nlsql_translate_latency_ms",
			Help:    "Generation service latency in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000},
		},
	)
	queryExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlsql_query_executions_total",
			Help: "Total number of generated statements executed against the store.",
		},
		[]string{"status"},
	)
	queryLatencyMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nlsql_query_latency_ms",
			Help:    "Statement execution latency in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		},
	)
)

func init() {
	prometheus.MustRegister(
		importFilesTotal,
		importRowsTotal,
		importSkippedRowsTotal,
		schemaTables,
		translateRequestsTotal,
		translateLatencyMs,
		queryExecutionsTotal,
		queryLatencyMs,
	)
}

func ObserveImportFile(status string, rows, skipped int) {
	importFilesTotal.WithLabelValues(status).Inc()
	if rows > 0 {
		importRowsTotal.Add(float64(rows))
	}
	if skipped > 0 {
		importSkippedRowsTotal.Add(float64(skipped))
	}
}

func SetSchemaTables(count int) {
	schemaTables.Set(float64(count))
}

func ObserveTranslation(provider, status string, elapsed time.Duration) {
	translateRequestsTotal.WithLabelValues(provider, status).Inc()
	translateLatencyMs.Observe(float64(elapsed.Milliseconds()))
}

func ObserveQuery(status string, elapsed time.Duration) {
	queryExecutionsTotal.WithLabelValues(status).Inc()
	queryLatencyMs.Observe(float64(elapsed.Milliseconds()))
}

// WriteTextfile dumps the default registry in the node-exporter textfile
// format. An empty path is a no-op.
func WriteTextfile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

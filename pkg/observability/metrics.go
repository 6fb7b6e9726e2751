package observability

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Suite runner metrics
var (
	CasesExecutedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cqltest_cases_total",
		Help: "Total number of test cases executed",
	}, []string{"status"}) // ok, error

	StatementDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "cqltest_statement_duration_seconds",
		Help: "Duration of individual CQL statement execution",
	})

	SuiteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "cqltest_suite_duration_seconds",
		Help: "Duration of a full suite run",
	})

	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cqltest_runs_total",
		Help: "Total number of suite runs",
	}, []string{"status"}) // passed, failed
)

// Sink metrics
var (
	ReportUploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cqltest_report_uploads_total",
		Help: "Total number of report artifact uploads to S3",
	}, []string{"status"})

	EventPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cqltest_event_publish_errors_total",
		Help: "Total number of Kafka result event publish errors",
	})
)

// ServeMetrics starts the Prometheus metrics endpoint on addr. Used in
// schedule/soak mode; a one-shot run normally leaves it off.
func ServeMetrics(addr string) {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		log.Printf("Metrics endpoint listening on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("Metrics server failed: %v", err)
		}
	}()
}

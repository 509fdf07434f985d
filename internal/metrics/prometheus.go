package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	SourceAPI   = "api"
	SourceBatch = "batch"
)

var (
	// AnalysisCount counts pairwise analyses by where they were requested
	AnalysisCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verbatim_analyses_total",
			Help: "Total number of pairwise overlap analyses",
		},
		[]string{"source"},
	)

	// AnalysisDuration measures the time spent in a single analysis
	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "verbatim_analysis_duration_seconds",
			Help:    "Pairwise analysis duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		},
		[]string{"source"},
	)

	// ComparisonCount counts collection runs by outcome
	ComparisonCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verbatim_comparisons_total",
			Help: "Total number of collection comparison runs",
		},
		[]string{"status"},
	)

	// RequestCount counts HTTP requests
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verbatim_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "verbatim_http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "route"},
	)

	// StreamMessages counts consumed stream messages by result
	StreamMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verbatim_stream_messages_total",
			Help: "Total number of consumed document submissions",
		},
		[]string{"result"},
	)
)

// InitPrometheus registers every collector with the default registry
func InitPrometheus() {
	prometheus.MustRegister(AnalysisCount)
	prometheus.MustRegister(AnalysisDuration)
	prometheus.MustRegister(ComparisonCount)
	prometheus.MustRegister(RequestCount)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(StreamMessages)
}

// ObserveAnalysis records one finished analysis
func ObserveAnalysis(source string, d time.Duration) {
	AnalysisCount.WithLabelValues(source).Inc()
	AnalysisDuration.WithLabelValues(source).Observe(d.Seconds())
}

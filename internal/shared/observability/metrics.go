package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cstyle_parsing_seconds",
		Help:    "Time spent parsing a document into a syntax tree.",
		Buckets: prometheus.DefBuckets,
	}, []string{"grammar"})

	ExtractionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cstyle_extraction_seconds",
		Help:    "Time spent extracting symbols and scopes from a syntax tree.",
		Buckets: prometheus.DefBuckets,
	})

	ExtractionSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cstyle_extraction_skipped_total",
		Help: "Total number of malformed declarations skipped during extraction.",
	})

	ParseFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cstyle_parse_failures_total",
		Help: "Total number of documents for which no syntax tree could be produced.",
	}, []string{"grammar"})

	OpenDocuments = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cstyle_open_documents",
		Help: "Number of documents currently open in the session.",
	})

	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cstyle_requests_total",
		Help: "Total number of language server messages handled, by method and outcome.",
	}, []string{"method", "outcome"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cstyle_request_seconds",
		Help:    "Latency of language server requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cstyle_rate_limited_total",
		Help: "Total number of requests rejected by the rate limiter.",
	})

	CompletionItems = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cstyle_completion_items",
		Help:    "Number of items returned per completion request.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	FactReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cstyle_fact_reloads_total",
		Help: "Total number of fact table reloads triggered by file changes.",
	}, []string{"outcome"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cstyle_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	SymbolIndexWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cstyle_symbol_index_writes_total",
		Help: "Total number of symbol index writes, by result.",
	}, []string{"result"})
)

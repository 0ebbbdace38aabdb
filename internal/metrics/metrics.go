package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tubenotes_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tubenotes_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Cache Metrics
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tubenotes_cache_hits_total",
			Help: "Total number of transcript cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tubenotes_cache_misses_total",
			Help: "Total number of transcript cache misses",
		},
		[]string{"cache_type"},
	)

	CacheEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tubenotes_cache_evictions_total",
			Help: "Total number of expired entries removed by the cache sweep",
		},
	)

	// Transcript Metrics
	TranscriptFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tubenotes_transcript_fetches_total",
			Help: "Total number of upstream transcript fetches",
		},
		[]string{"status"},
	)

	TranscriptFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tubenotes_transcript_fetch_duration_seconds",
			Help:    "Upstream transcript fetch latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	// Token Metrics
	TokensChargedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tubenotes_tokens_charged_total",
			Help: "Total number of tokens deducted from user balances",
		},
	)

	TokenChargesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tubenotes_token_charges_total",
			Help: "Charge decisions by result (charged, skipped, insufficient)",
		},
		[]string{"result"},
	)

	UsageRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tubenotes_usage_records_total",
			Help: "Usage records by output type and final status",
		},
		[]string{"output_type", "status"},
	)

	// Content generation Metrics
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tubenotes_provider_calls_total",
			Help: "Total number of content generation calls",
		},
		[]string{"provider", "task", "status"},
	)

	ProviderCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tubenotes_provider_call_duration_seconds",
			Help:    "Content generation latency in seconds, retries included",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
		[]string{"provider", "task"},
	)

	// Storage Metrics
	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tubenotes_storage_operations_total",
			Help: "Total number of transcript archive operations",
		},
		[]string{"operation", "status"},
	)

	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tubenotes_storage_operation_duration_seconds",
			Help:    "Archive operation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"operation"},
	)

	// Database Metrics
	DatabaseOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tubenotes_database_operations_total",
			Help: "Total number of ledger operations",
		},
		[]string{"operation", "status"},
	)

	DatabaseOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tubenotes_database_operation_duration_seconds",
			Help:    "Ledger operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Queue Metrics
	UsageEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tubenotes_usage_events_total",
			Help: "Usage events by type and direction (published, consumed)",
		},
		[]string{"event", "direction"},
	)

	ConsumedTokensByOutput = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tubenotes_consumed_tokens_by_output_total",
			Help: "Tokens charged, aggregated from usage events by output type",
		},
		[]string{"output_type"},
	)

	// Error Metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tubenotes_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordHTTPRequest records an HTTP request
func RecordHTTPRequest(method, endpoint, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordCacheAccess records a cache hit or miss
func RecordCacheAccess(cacheType string, hit bool) {
	if hit {
		CacheHitsTotal.WithLabelValues(cacheType).Inc()
	} else {
		CacheMissesTotal.WithLabelValues(cacheType).Inc()
	}
}

// RecordCacheEvictions records entries purged by the sweep
func RecordCacheEvictions(n int) {
	CacheEvictionsTotal.Add(float64(n))
}

// RecordTranscriptFetch records an upstream transcript fetch
func RecordTranscriptFetch(status string, duration float64) {
	TranscriptFetchesTotal.WithLabelValues(status).Inc()
	TranscriptFetchDuration.Observe(duration)
}

// RecordTokenCharge records a charge decision. Tokens are only counted
// for the charged result.
func RecordTokenCharge(result string, tokens int) {
	TokenChargesTotal.WithLabelValues(result).Inc()
	if result == "charged" {
		TokensChargedTotal.Add(float64(tokens))
	}
}

// RecordUsage records a usage record reaching a status
func RecordUsage(outputType, status string) {
	UsageRecordsTotal.WithLabelValues(outputType, status).Inc()
}

// RecordProviderCall records a content generation call
func RecordProviderCall(provider, task string, err error, duration float64) {
	ProviderCallsTotal.WithLabelValues(provider, task, status(err)).Inc()
	ProviderCallDuration.WithLabelValues(provider, task).Observe(duration)
}

// RecordStorageOperation records an archive operation
func RecordStorageOperation(operation string, err error, duration float64) {
	StorageOperationsTotal.WithLabelValues(operation, status(err)).Inc()
	StorageOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordDatabaseOperation records a ledger operation
func RecordDatabaseOperation(operation string, err error, duration float64) {
	DatabaseOperationsTotal.WithLabelValues(operation, status(err)).Inc()
	DatabaseOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordUsageEvent records a usage event crossing the queue
func RecordUsageEvent(event, direction string) {
	UsageEventsTotal.WithLabelValues(event, direction).Inc()
}

// RecordConsumedTokens aggregates charged tokens by output type
func RecordConsumedTokens(outputType string, tokens int) {
	ConsumedTokensByOutput.WithLabelValues(outputType).Add(float64(tokens))
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

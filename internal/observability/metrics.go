package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	httpErrorsTotal      *prometheus.CounterVec
	cacheOperationsTotal *prometheus.CounterVec
	storageUploadsTotal  *prometheus.CounterVec
	storageUploadBytes   *prometheus.HistogramVec
	searchRequestsTotal  *prometheus.CounterVec
	searchLatencySeconds *prometheus.HistogramVec
	emailDeliveriesTotal *prometheus.CounterVec
	eventsPublishedTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors exported by the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cubis_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cubis_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cubis_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		cacheOperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cubis_cache_operations_total",
			Help: "Cache operations grouped by operation and result.",
		}, []string{"operation", "result"})

		storageUploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cubis_storage_uploads_total",
			Help: "File uploads grouped by storage provider and result.",
		}, []string{"provider", "result"})

		storageUploadBytes = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cubis_storage_upload_bytes",
			Help:    "Size distribution of stored files.",
			Buckets: prometheus.ExponentialBuckets(16*1024, 4, 7),
		}, []string{"provider"})

		searchRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cubis_search_requests_total",
			Help: "Course search requests grouped by executed mode.",
		}, []string{"mode"})

		searchLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cubis_search_latency_seconds",
			Help:    "Latency distribution for course search queries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode"})

		emailDeliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cubis_email_deliveries_total",
			Help: "Transactional email deliveries grouped by provider and result.",
		}, []string{"provider", "result"})

		eventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cubis_events_published_total",
			Help: "Domain events published grouped by subject and result.",
		}, []string{"subject", "result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			cacheOperationsTotal,
			storageUploadsTotal,
			storageUploadBytes,
			searchRequestsTotal,
			searchLatencySeconds,
			emailDeliveriesTotal,
			eventsPublishedTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// CacheOperations exposes the cache operation counter.
func CacheOperations() *prometheus.CounterVec {
	RegisterMetrics()
	return cacheOperationsTotal
}

// StorageUploads exposes the storage upload counter.
func StorageUploads() *prometheus.CounterVec {
	RegisterMetrics()
	return storageUploadsTotal
}

// StorageUploadBytes exposes the stored file size histogram.
func StorageUploadBytes() *prometheus.HistogramVec {
	RegisterMetrics()
	return storageUploadBytes
}

// SearchRequests exposes the search request counter.
func SearchRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return searchRequestsTotal
}

// SearchLatency exposes the search latency histogram.
func SearchLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return searchLatencySeconds
}

// EmailDeliveries exposes the email delivery counter.
func EmailDeliveries() *prometheus.CounterVec {
	RegisterMetrics()
	return emailDeliveriesTotal
}

// EventsPublished exposes the domain event counter.
func EventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsPublishedTotal
}

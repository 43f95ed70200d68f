package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Preview metrics
	PreviewRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meridian_preview_requests_total",
			Help: "Total number of preview resolutions",
		},
		[]string{"trade_type", "source", "status"},
	)

	PreviewDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meridian_preview_duration_seconds",
			Help:    "Preview resolution duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	FallbackActivations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meridian_fallback_activations_total",
		Help: "Times the on-chain fallback was consulted after a remote failure or empty path",
	})

	NoRouteResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meridian_no_route_results_total",
			Help: "Terminal no-route outcomes by reason",
		},
		[]string{"reason"},
	)

	StalePreviewsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meridian_stale_previews_dropped_total",
		Help: "In-flight results dropped because a newer input superseded them",
	})

	BackgroundRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meridian_background_refreshes_total",
			Help: "Silent re-queries of a resolved preview after the refresh window",
		},
		[]string{"status"},
	)

	// Debounce metrics
	DebounceDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meridian_debounce_drops_total",
		Help: "Raw inputs discarded inside the quiet interval without side effects",
	})

	// Remote route finder metrics
	RemoteRouteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meridian_remote_route_requests_total",
			Help: "Requests to the remote route finder",
		},
		[]string{"status"},
	)

	RemoteRouteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "meridian_remote_route_duration_seconds",
		Help:    "Remote route finder request duration in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	// Chain read metrics
	PoolReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meridian_pool_reads_total",
			Help: "On-chain pool state reads",
		},
		[]string{"status"},
	)

	// Cache metrics
	PreviewCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meridian_preview_cache_hits_total",
		Help: "Total number of preview cache hits",
	})

	PreviewCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meridian_preview_cache_misses_total",
		Help: "Total number of preview cache misses",
	})

	PreviewCacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "meridian_preview_cache_size",
		Help: "Current number of entries in the preview cache",
	})

	MetadataCacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "meridian_metadata_cache_size",
		Help: "Current number of entries in the asset metadata cache",
	})

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meridian_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meridian_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

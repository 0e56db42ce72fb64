package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "video_platform",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "video_platform",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 120},
		},
		[]string{"method", "endpoint"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "video_platform",
			Subsystem: "videos",
			Name:      "uploads_total",
			Help:      "Video uploads by outcome",
		},
		[]string{"status"},
	)

	UploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "video_platform",
			Subsystem: "videos",
			Name:      "upload_bytes_total",
			Help:      "Total video bytes uploaded",
		},
	)

	// ThumbnailsTotal counts thumbnails by source: generated or placeholder.
	ThumbnailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "video_platform",
			Subsystem: "videos",
			Name:      "thumbnails_total",
			Help:      "Thumbnails recorded by source",
		},
		[]string{"source"},
	)

	ProcessingJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "video_platform",
			Subsystem: "jobs",
			Name:      "processing_total",
			Help:      "Video processing jobs by outcome",
		},
		[]string{"status"},
	)

	ProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "video_platform",
			Subsystem: "jobs",
			Name:      "processing_duration_seconds",
			Help:      "Video processing duration in seconds",
			Buckets:   []float64{0.5, 1, 5, 15, 60, 300, 900},
		},
	)

	ReactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "video_platform",
			Subsystem: "engagement",
			Name:      "reactions_total",
			Help:      "Reaction changes by reaction and action",
		},
		[]string{"reaction", "action"},
	)

	SubscriptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "video_platform",
			Subsystem: "engagement",
			Name:      "subscriptions_total",
			Help:      "Subscription changes by action",
		},
		[]string{"action"},
	)

	StorageErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "video_platform",
			Subsystem: "storage",
			Name:      "errors_total",
			Help:      "Object storage failures by operation",
		},
		[]string{"operation"},
	)
)

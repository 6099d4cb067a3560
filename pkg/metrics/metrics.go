package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// HTTPRequestDuration observes request latency per route.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "skinscan",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestsTotal counts requests per route and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skinscan",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// RateLimited counts requests rejected by the per-IP limiter.
	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skinscan",
			Name:      "http_rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		},
		[]string{"path"},
	)

	// HTTPRetries counts replayed POST requests after a 5xx.
	HTTPRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skinscan",
			Name:      "http_retries_total",
			Help:      "POST requests replayed after a server error",
		},
		[]string{"path"},
	)

	// ChatReplies counts assistant replies by the branch that answered.
	ChatReplies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skinscan",
			Name:      "chat_replies_total",
			Help:      "Chat replies by response source",
		},
		[]string{"source"},
	)

	// Detections counts completed lesion analyses by predicted class.
	Detections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skinscan",
			Name:      "detections_total",
			Help:      "Lesion analyses by predicted class",
		},
		[]string{"class"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(RateLimited)
	prometheus.MustRegister(HTTPRetries)
	prometheus.MustRegister(ChatReplies)
	prometheus.MustRegister(Detections)
}

package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	GenerationsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "resume_generations_started_total",
			Help: "Generations whose provider stream was opened",
		},
	)

	GenerationOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_generation_outcomes_total",
			Help: "Finished generations by outcome",
		},
		[]string{"outcome"}, // success|parse_error|schema_error|provider_error|timeout
	)

	GenerationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resume_generation_duration_seconds",
			Help:    "Wall time from stream open to payload written",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s..256s
		},
	)

	GenerationFragments = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resume_generation_fragments",
			Help:    "Provider fragments received per generation",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	ProviderRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_provider_retries_total",
			Help: "Provider stream retries before the first fragment",
		},
		[]string{"provider"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		GenerationsStarted,
		GenerationOutcomes,
		GenerationDurationSeconds,
		GenerationFragments,
		ProviderRetries,
		HTTPRequests,
	)
}

// IncGenerationStarted counts a generation whose stream was opened.
func IncGenerationStarted() {
	GenerationsStarted.Inc()
}

// ObserveGeneration records the outcome of a finished generation.
func ObserveGeneration(outcome string, duration time.Duration, fragments int) {
	GenerationOutcomes.WithLabelValues(outcome).Inc()
	GenerationDurationSeconds.Observe(duration.Seconds())
	GenerationFragments.Observe(float64(fragments))
}

// IncProviderRetry counts a retried provider stream.
func IncProviderRetry(provider string) {
	ProviderRetries.WithLabelValues(provider).Inc()
}

// ObserveHTTPRequest counts a served request. Route is the matched pattern, not the raw path.
func ObserveHTTPRequest(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

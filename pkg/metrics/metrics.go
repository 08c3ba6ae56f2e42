package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registry holds every metric exposed on /api/metrics
	Registry = prometheus.NewRegistry()

	factory = promauto.With(Registry)

	// Buckets tuned for request handling and outbound email provider calls.
	// Provider calls regularly take one to several seconds.
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34}

	// HTTP Metrics
	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Business Metrics
	ContactFormSubmissions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itmade_contact_form_submissions_total",
			Help: "Total number of contact form submissions by pipeline outcome",
		},
		[]string{"status"},
	)

	// Email transport metrics
	EmailSendDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "email_client_operation_duration_seconds",
			Help:    "Outbound email provider call duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"transport", "status"},
	)

	EmailSendTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_client_operation_total",
			Help: "Total number of outbound email provider calls",
		},
		[]string{"transport", "status"},
	)

	CircuitBreakerState = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"breaker"},
	)

	// Rate limiting
	RateLimitRejections = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_rate_limited_total",
			Help: "Total number of requests rejected by a rate limiter",
		},
		[]string{"limiter"},
	)

	RateLimitStoreErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_store_errors_total",
			Help: "Total number of rate limit store failures (requests fall back to memory)",
		},
		[]string{"store"},
	)

	FrontendLogsReceived = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "itmade_frontend_logs_received_total",
			Help: "Total number of frontend log entries received",
		},
	)

	// Infrastructure Metrics
	GoRoutines = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

func init() {
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// RecordInfrastructureMetrics collects infrastructure metrics periodically until stop is closed
func RecordInfrastructureMetrics(stop <-chan struct{}) {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				var m runtime.MemStats
				runtime.ReadMemStats(&m)

				GoRoutines.Set(float64(runtime.NumGoroutine()))
				HeapAlloc.Set(float64(m.HeapAlloc))
			}
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}

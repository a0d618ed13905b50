// Package metrics provides Prometheus metrics for the rostr service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Grading
	gradesComputed *prometheus.CounterVec
	gradingLatency prometheus.Histogram

	// Roster and catalog scale
	usersTotal     prometheus.Gauge
	teamsTotal     prometheus.Gauge
	playersTotal   prometheus.Gauge
	catalogSeasons prometheus.Gauge
	catalogImports prometheus.Counter

	// Features
	tradesEvaluated  *prometheus.CounterVec
	recommendations  prometheus.Counter
	authAttempts     *prometheus.CounterVec
	authRateLimited  prometheus.Counter
	regradeDuplicate prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Repository
	repositoryQueryLatency *prometheus.HistogramVec

	// Regrade queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Regrade workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter
	regradesCompleted       prometheus.Counter

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

// latencyBuckets suit the millisecond latencies recorded here.
var latencyBuckets = []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500} //nolint:gochecknoglobals

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(
		WithNamespace("rostr"),
		WithSubsystem("service"),
		WithHistogramBuckets(latencyBuckets),
		WithPrometheusRegistry(customRegistry),
	)
}

// NewManager creates a metrics manager. Without WithPrometheusRegistry the
// collectors go to the default registerer.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "rostr",
		subsystem:        "service",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.gradesComputed = m.counterVec("grades_computed_total", "Pitcher grades computed by tier", "tier")
	m.gradingLatency = m.histogram("grading_latency_milliseconds", "Latency of grading one pitcher", m.histogramBuckets)

	m.usersTotal = m.gauge("users_total", "Registered users")
	m.teamsTotal = m.gauge("teams_total", "Teams across all users")
	m.playersTotal = m.gauge("players_total", "Rostered players across all teams")
	m.catalogSeasons = m.gauge("catalog_pitcher_seasons", "Pitcher seasons in the stats catalog")
	m.catalogImports = m.counter("catalog_imports_total", "Catalog import runs")

	m.tradesEvaluated = m.counterVec("trades_evaluated_total", "Trade evaluations by winner", "winner")
	m.recommendations = m.counter("pitcher_recommendations_total", "Pitcher recommendation requests served")
	m.authAttempts = m.counterVec("auth_attempts_total", "Sign-up and sign-in attempts", "action", "result")
	m.authRateLimited = m.counter("auth_rate_limited_total", "Auth requests rejected by the rate limiter")
	m.regradeDuplicate = m.counter("regrade_duplicate_total", "Regrade requests skipped because one was pending")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		"endpoint", "method", "status_code")

	m.repositoryQueryLatency = m.histogramVec("repository_query_latency_milliseconds", "Repository operation latency",
		"operation")

	m.queueSize = m.gauge("regrade_queue_size", "Jobs waiting in the regrade queue")
	m.queueCapacity = m.gauge("regrade_queue_capacity", "Capacity of the regrade queue")
	m.queueUtilization = m.gauge("regrade_queue_utilization_ratio", "Regrade queue fill ratio (0-1)")
	m.queueEnqueueRate = m.counter("regrade_queue_enqueue_total", "Jobs enqueued")
	m.queueDequeueRate = m.counter("regrade_queue_dequeue_total", "Jobs dequeued")
	m.queueEnqueueErrors = m.counter("regrade_queue_enqueue_errors_total", "Enqueue failures")

	m.workerCount = m.gauge("regrade_worker_count", "Configured regrade workers")
	m.workerActiveCount = m.gauge("regrade_worker_active", "Regrade workers currently processing a job")
	m.workerProcessingLatency = m.histogram("regrade_worker_latency_milliseconds", "Time to regrade one player",
		m.histogramBuckets)
	m.workerErrors = m.counter("regrade_worker_errors_total", "Regrade jobs that failed")
	m.regradesCompleted = m.counter("regrades_completed_total", "Regrade jobs that stored a new grade")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component", "component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint",
		"endpoint", "method", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordGrade counts a computed grade and its latency.
func RecordGrade(tier string, latencyMs float64) {
	globalManager.gradesComputed.WithLabelValues(tier).Inc()
	globalManager.gradingLatency.Observe(latencyMs)
}

// UpdateUsersTotal sets the registered user count.
func UpdateUsersTotal(n int) {
	globalManager.usersTotal.Set(float64(n))
}

// UpdateTeamsTotal sets the team count.
func UpdateTeamsTotal(n int) {
	globalManager.teamsTotal.Set(float64(n))
}

// UpdatePlayersTotal sets the rostered player count.
func UpdatePlayersTotal(n int) {
	globalManager.playersTotal.Set(float64(n))
}

// UpdateCatalogSeasons sets the number of catalog rows.
func UpdateCatalogSeasons(n int) {
	globalManager.catalogSeasons.Set(float64(n))
}

// RecordCatalogImport counts a catalog import run.
func RecordCatalogImport() {
	globalManager.catalogImports.Inc()
}

// RecordTradeEvaluated counts a trade evaluation.
func RecordTradeEvaluated(winner string) {
	globalManager.tradesEvaluated.WithLabelValues(winner).Inc()
}

// RecordRecommendation counts a pitcher recommendation request.
func RecordRecommendation() {
	globalManager.recommendations.Inc()
}

// RecordAuthAttempt counts a sign-up or sign-in by result.
func RecordAuthAttempt(action, result string) {
	globalManager.authAttempts.WithLabelValues(action, result).Inc()
}

// RecordAuthRateLimited counts a rate-limited auth request.
func RecordAuthRateLimited() {
	globalManager.authRateLimited.Inc()
}

// RecordRegradeDuplicate counts a skipped duplicate regrade.
func RecordRegradeDuplicate() {
	globalManager.regradeDuplicate.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRepositoryQueryLatency records the latency of a repository operation.
func RecordRepositoryQueryLatency(operation string, latencyMs float64) {
	globalManager.repositoryQueryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordRegradeCompleted counts a stored regrade.
func RecordRegradeCompleted() {
	globalManager.regradesCompleted.Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// UpdateSystemMemoryUsage sets the memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

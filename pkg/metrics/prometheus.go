// Package metrics provides Prometheus metrics for the ratefit estimator.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the estimator.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	metricPrefix     string
	registry         prometheus.Registerer

	// Rating replay
	contestsProcessed *prometheus.CounterVec
	contestsSkipped   *prometheus.CounterVec
	contestantsRated  prometheus.Gauge
	solveLatency      prometheus.Histogram
	solveEvaluations  prometheus.Histogram

	// Problem fitting
	problemsFitted   prometheus.Counter
	problemsUnsolved prometheus.Counter
	fitRejections    *prometheus.CounterVec
	fitLatency       prometheus.Histogram

	// Model store
	storeMerges  *prometheus.CounterVec
	storeModels  prometheus.Gauge
	storeLatency *prometheus.HistogramVec

	// Leaderboard
	leaderboardEntries prometheus.Gauge
	leaderboardQuery   prometheus.Histogram

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Runs
	runDuration prometheus.Histogram
	runLastUnix prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorRateByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ratefit",
		subsystem:        "estimator",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	m.contestsProcessed = m.counterVec("contests_processed_total", "Contests replayed, by contest kind", "kind")
	m.contestsSkipped = m.counterVec("contests_skipped_total", "Contests that produced no problem data, by reason", "reason")
	m.contestantsRated = m.gauge("contestants_rated", "Contestants with at least one recorded performance")
	m.solveLatency = m.histogram("performance_solve_latency_milliseconds", "Time to solve every performance of one contest", m.histogramBuckets)
	m.solveEvaluations = m.histogram("performance_solve_evaluations", "Distinct midpoints evaluated per contest",
		prometheus.ExponentialBuckets(16, 2, 12))

	m.problemsFitted = m.counter("problems_fitted_total", "Problem models produced")
	m.problemsUnsolved = m.counter("problems_unsolved_total", "Problems skipped because nobody scored")
	m.fitRejections = m.counterVec("fit_rejections_total", "Sub-models left out of a problem model", "sub_model", "reason")
	m.fitLatency = m.histogram("fit_latency_milliseconds", "Time to fit one problem", m.histogramBuckets)

	m.storeMerges = m.counterVec("store_merges_total", "Model store merges, by driver", "driver")
	m.storeModels = m.gauge("store_models", "Problem models held by the store")
	m.storeLatency = m.histogramVec("store_latency_milliseconds", "Model store operation latency", "driver", "op")

	m.leaderboardEntries = m.gauge("leaderboard_entries", "Contestants on the leaderboard")
	m.leaderboardQuery = m.histogram("leaderboard_query_latency_milliseconds", "Leaderboard query latency", m.histogramBuckets)

	m.queueSize = m.gauge("queue_size", "Fit jobs waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Fit jobs enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Fit jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Failed enqueues")

	m.workerCount = m.gauge("worker_count", "Configured fit workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Workers currently fitting")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Worker time per job", m.histogramBuckets)
	m.workerErrorRate = m.counter("worker_errors_total", "Jobs whose sink returned an error")

	m.runDuration = m.histogram("run_duration_seconds", "Wall time of an estimation run",
		[]float64{1, 5, 15, 60, 300, 900, 3600})
	m.runLastUnix = m.gauge("run_last_unix", "Unix time the last estimation run finished")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		"endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordContestProcessed counts a replayed contest.
func RecordContestProcessed(kind string) {
	globalManager.contestsProcessed.WithLabelValues(kind).Inc()
}

// RecordContestSkipped counts a contest that yielded no problem rows.
func RecordContestSkipped(reason string) {
	globalManager.contestsSkipped.WithLabelValues(reason).Inc()
}

// UpdateContestantsRated sets the number of rated contestants.
func UpdateContestantsRated(n int) {
	globalManager.contestantsRated.Set(float64(n))
}

// RecordSolveLatency records how long one contest's performance solve took.
func RecordSolveLatency(latencyMs float64) {
	globalManager.solveLatency.Observe(latencyMs)
}

// RecordSolveEvaluations records the midpoints evaluated for one contest.
func RecordSolveEvaluations(n int) {
	globalManager.solveEvaluations.Observe(float64(n))
}

// RecordProblemFitted counts a produced problem model.
func RecordProblemFitted() {
	globalManager.problemsFitted.Inc()
}

// RecordProblemUnsolved counts a problem nobody scored on.
func RecordProblemUnsolved() {
	globalManager.problemsUnsolved.Inc()
}

// RecordFitRejection counts a rejected sub-model.
func RecordFitRejection(subModel, reason string) {
	globalManager.fitRejections.WithLabelValues(subModel, reason).Inc()
}

// RecordFitLatency records the time to fit one problem.
func RecordFitLatency(latencyMs float64) {
	globalManager.fitLatency.Observe(latencyMs)
}

// RecordStoreMerge counts a merge into the model store.
func RecordStoreMerge(driver string) {
	globalManager.storeMerges.WithLabelValues(driver).Inc()
}

// UpdateStoreModels sets the number of stored problem models.
func UpdateStoreModels(n int) {
	globalManager.storeModels.Set(float64(n))
}

// RecordStoreLatency records one store operation.
func RecordStoreLatency(driver, op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(driver, op).Observe(latencyMs)
}

// UpdateLeaderboardEntries sets the number of leaderboard entries.
func UpdateLeaderboardEntries(n int) {
	globalManager.leaderboardEntries.Set(float64(n))
}

// RecordLeaderboardQueryLatency records one leaderboard query.
func RecordLeaderboardQueryLatency(latencyMs float64) {
	globalManager.leaderboardQuery.Observe(latencyMs)
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
	globalManager.workerErrorRate.Inc()
}

// RecordRun records a finished estimation run.
func RecordRun(d time.Duration) {
	globalManager.runDuration.Observe(d.Seconds())
	globalManager.runLastUnix.Set(float64(time.Now().Unix()))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

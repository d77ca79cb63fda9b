// Package metrics provides Prometheus metrics for the Wordle score tracker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	constLabels    map[string]string
	registry       prometheus.Registerer

	// Ingest
	messagesReceived    prometheus.Counter
	messagesRedelivered prometheus.Counter
	messagesProcessed   prometheus.Counter
	outcomes            *prometheus.CounterVec

	// Store
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec
	scoresTotal  prometheus.Gauge

	// Leaderboard
	leaderboardQueries *prometheus.CounterVec
	leaderboardUsers   *prometheus.GaugeVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Dedupe
	dedupeSize prometheus.Gauge

	// Chat
	chatCommands  *prometheus.CounterVec
	chatLogsSent  prometheus.Counter
	chatLogsDrops prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegisterer(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "wordle",
		subsystem:      "tracker",
		latencyBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		constLabels:    map[string]string{},
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	auto := promauto.With(m.registry)

	m.messagesReceived = m.counter("messages_received_total", "Chat messages accepted for processing")
	m.messagesRedelivered = m.counter("messages_redelivered_total", "Chat messages dropped because their ID was already seen")
	m.messagesProcessed = m.counter("messages_processed_total", "Chat messages run through the parser")
	m.outcomes = m.counterVec("outcomes_total", "Recording outcomes by kind", "outcome")

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_latency_milliseconds",
		Help:        "SQLite operation latency in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: m.constLabels,
	}, []string{"op"})
	m.storeErrors = m.counterVec("store_errors_total", "SQLite operation failures", "op")
	m.scoresTotal = m.gauge("scores_total", "Score records currently stored")

	m.leaderboardQueries = m.counterVec("leaderboard_queries_total", "Leaderboard computations by scope", "scope")
	m.leaderboardUsers = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "leaderboard_users",
		Help:        "Ranked users in the most recent leaderboard by scope",
		ConstLabels: m.constLabels,
	}, []string{"scope"})

	m.queueSize = m.gauge("queue_size", "Messages waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_percent", "Queue fill level in percent")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Messages enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Messages dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Enqueue attempts rejected by backpressure or shutdown")

	m.workerCount = m.gauge("worker_count", "Configured message workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Workers currently processing a message")
	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_processing_latency_milliseconds",
		Help:        "Time to process one message in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: m.constLabels,
	})
	m.workerErrors = m.counter("worker_errors_total", "Messages whose processing returned an error")

	m.dedupeSize = m.gauge("dedupe_size", "Message IDs held by the deduper")

	m.chatCommands = m.counterVec("chat_commands_total", "Chat commands handled", "command")
	m.chatLogsSent = m.counter("chat_log_lines_sent_total", "Log lines mirrored to a chat channel")
	m.chatLogsDrops = m.counter("chat_log_lines_dropped_total", "Log lines dropped by the chat mirror buffer")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_seconds",
		Help:        "HTTP request duration in seconds",
		Buckets:     prometheus.DefBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordMessageReceived increments the accepted message counter.
func RecordMessageReceived() { globalManager.messagesReceived.Inc() }

// RecordMessageRedelivered increments the redelivery counter.
func RecordMessageRedelivered() { globalManager.messagesRedelivered.Inc() }

// RecordMessageProcessed increments the processed message counter.
func RecordMessageProcessed() { globalManager.messagesProcessed.Inc() }

// RecordOutcome counts a recording outcome such as "inserted".
func RecordOutcome(outcome string) { globalManager.outcomes.WithLabelValues(outcome).Inc() }

// RecordStoreLatency records the latency of a store operation in milliseconds.
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordStoreError counts a failed store operation.
func RecordStoreError(op string) { globalManager.storeErrors.WithLabelValues(op).Inc() }

// UpdateScoresTotal sets the number of stored score records.
func UpdateScoresTotal(count int64) { globalManager.scoresTotal.Set(float64(count)) }

// RecordLeaderboardQuery counts a leaderboard computation and the number of ranked users.
func RecordLeaderboardQuery(scope string, users int) {
	globalManager.leaderboardQueries.WithLabelValues(scope).Inc()
	globalManager.leaderboardUsers.WithLabelValues(scope).Set(float64(users))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue fill level in percent.
func UpdateQueueUtilization(percent float64) { globalManager.queueUtilization.Set(percent) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError increments the rejected enqueue counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) { globalManager.workerActiveCount.Set(float64(count)) }

// RecordWorkerProcessingLatency records per-message processing time in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// UpdateDedupeSize sets the number of IDs held by the deduper.
func UpdateDedupeSize(size int64) { globalManager.dedupeSize.Set(float64(size)) }

// RecordChatCommand counts a handled chat command.
func RecordChatCommand(command string) { globalManager.chatCommands.WithLabelValues(command).Inc() }

// RecordChatLogSent counts a log line delivered to a chat channel.
func RecordChatLogSent() { globalManager.chatLogsSent.Inc() }

// RecordChatLogDropped counts a log line dropped by the chat mirror.
func RecordChatLogDropped() { globalManager.chatLogsDrops.Inc() }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in seconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap memory in use.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

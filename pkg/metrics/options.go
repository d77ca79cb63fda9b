package metrics

import (
	"slices"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Manager before its metrics are registered.
type Option func(*Manager)

// WithName replaces the metric name prefix. Empty parts keep the default.
func WithName(namespace, subsystem string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithLatencyBuckets sets the millisecond buckets of every latency histogram.
// Buckets are sorted and deduplicated; an empty list keeps the default.
func WithLatencyBuckets(buckets ...float64) Option {
	return func(m *Manager) {
		if len(buckets) == 0 {
			return
		}
		b := slices.Clone(buckets)
		slices.Sort(b)
		m.latencyBuckets = slices.Compact(b)
	}
}

// WithConstLabel adds a label carried by every metric, e.g. the deployment.
func WithConstLabel(key, value string) Option {
	return func(m *Manager) {
		if key == "" {
			return
		}
		m.constLabels[key] = value
	}
}

// WithRegisterer registers the metrics on r instead of the default registry.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

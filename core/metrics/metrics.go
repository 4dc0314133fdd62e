package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "objstore"
	subsystem = "client"
)

// Observer is implemented by anything that records object store operations.
type Observer interface {
	Observe(op string, bytes int64, err error, dur time.Duration)
	ObserveDeleted(count int)
}

// StorageMetrics holds Prometheus collectors for object store operations.
type StorageMetrics struct {
	ops     *prometheus.CounterVec
	bytes   *prometheus.CounterVec
	latency *prometheus.HistogramVec
	deleted prometheus.Counter
}

// NewStorageMetrics registers the collectors on reg.
// Registration errors are ignored so the same registry can be reused.
func NewStorageMetrics(reg prometheus.Registerer) *StorageMetrics {
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "ops_total",
		Help:      "Total number of object store operations by result.",
	}, []string{"op", "result"}) // result = "ok" | "error"
	bytes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "bytes_total",
		Help:      "Total payload bytes moved by object store operations.",
	}, []string{"op"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "op_duration_seconds",
		Help:      "Histogram of object store operation durations in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})
	deleted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "deleted_keys_total",
		Help:      "Total number of keys removed by batch deletes.",
	})

	_ = reg.Register(ops)
	_ = reg.Register(bytes)
	_ = reg.Register(latency)
	_ = reg.Register(deleted)

	return &StorageMetrics{
		ops:     ops,
		bytes:   bytes,
		latency: latency,
		deleted: deleted,
	}
}

// Observe records one operation. dur must be the total time spent in it.
func (m *StorageMetrics) Observe(op string, bytes int64, err error, dur time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	if bytes > 0 {
		m.bytes.WithLabelValues(op).Add(float64(bytes))
	}
	m.ops.WithLabelValues(op, result).Inc()
	m.latency.WithLabelValues(op).Observe(dur.Seconds())
}

// ObserveDeleted adds count to the deleted keys counter.
func (m *StorageMetrics) ObserveDeleted(count int) {
	if count > 0 {
		m.deleted.Add(float64(count))
	}
}

// Nop discards every observation.
type Nop struct{}

func (Nop) Observe(string, int64, error, time.Duration) {}

func (Nop) ObserveDeleted(int) {}

var (
	_ Observer = (*StorageMetrics)(nil)
	_ Observer = Nop{}
)

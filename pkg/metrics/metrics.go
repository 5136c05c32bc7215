package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ssargent/osuvault/pkg/archive"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// DefaultNamespace prefixes every metric name unless another is configured.
const DefaultNamespace = "osuvault"

// Metrics holds all Prometheus metrics for archiving and storage.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Archive metrics
	encodeTotal       *prometheus.CounterVec
	decodeTotal       *prometheus.CounterVec
	decodeErrorsTotal *prometheus.CounterVec
	encodedBytes      prometheus.Histogram

	// Store operation metrics
	storeOperationsTotal   *prometheus.CounterVec
	storeOperationDuration *prometheus.HistogramVec
	storeSnapshotsTotal    prometheus.Gauge
	storeDataSizeBytes     prometheus.Gauge
}

// New creates all metrics on a private registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		encodeTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "archive_encode_total",
				Help:      "Total number of values archived",
			},
			[]string{"status"},
		),

		decodeTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "archive_decode_total",
				Help:      "Total number of archives decoded",
			},
			[]string{"status"},
		),

		decodeErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "archive_decode_errors_total",
				Help:      "Total number of decode failures by kind",
			},
			[]string{"kind"},
		),

		encodedBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "archive_encoded_bytes",
				Help:      "Size of encoded archives in bytes",
				Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
			},
		),

		storeOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Total number of archive store operations",
			},
			[]string{"operation", "status"},
		),

		storeOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Archive store operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		storeSnapshotsTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "store_snapshots",
				Help:      "Number of snapshots seen by the last verification",
			},
		),

		storeDataSizeBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "store_data_size_bytes",
				Help:      "Total envelope bytes seen by the last verification",
			},
		),
	}
}

// Registry returns the registry all metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordEncode records an archive encode and, on success, its size.
func (m *Metrics) RecordEncode(err error, size int) {
	if m == nil {
		return
	}
	if err != nil {
		m.encodeTotal.WithLabelValues(statusError).Inc()
		return
	}
	m.encodeTotal.WithLabelValues(statusSuccess).Inc()
	m.encodedBytes.Observe(float64(size))
}

// RecordDecode records an archive decode. Failures are also counted by their
// decode error kind, or "other" when err is not a decode error.
func (m *Metrics) RecordDecode(err error) {
	if m == nil {
		return
	}
	if err == nil {
		m.decodeTotal.WithLabelValues(statusSuccess).Inc()
		return
	}
	m.decodeTotal.WithLabelValues(statusError).Inc()
	m.decodeErrorsTotal.WithLabelValues(errorKind(err)).Inc()
}

func errorKind(err error) string {
	if kind, ok := archive.KindOf(err); ok {
		return kind.String()
	}
	return "other"
}

// RecordStoreOperation records a store operation
func (m *Metrics) RecordStoreOperation(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := statusSuccess
	if err != nil {
		status = statusError
	}

	m.storeOperationsTotal.WithLabelValues(operation, status).Inc()
	m.storeOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateStoreStats updates store statistics
func (m *Metrics) UpdateStoreStats(snapshots int, dataSize int64) {
	if m == nil {
		return
	}
	m.storeSnapshotsTotal.Set(float64(snapshots))
	m.storeDataSizeBytes.Set(float64(dataSize))
}

// WriteTextfile writes all metrics to path in the text exposition format, for
// collection by the node exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return errors.New("metrics are disabled")
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

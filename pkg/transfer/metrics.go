// pkg/transfer/metrics.go
package transfer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TransferMetrics exposes persistence counters. A nil *TransferMetrics is
// valid and records nothing.
type TransferMetrics struct {
	rowsWritten   *prometheus.CounterVec
	batchDuration prometheus.Histogram
	failures      *prometheus.CounterVec
	lastLoad      prometheus.Gauge
}

// NewTransferMetrics creates the collectors and registers them with reg
func NewTransferMetrics(reg prometheus.Registerer) (*TransferMetrics, error) {
	m := &TransferMetrics{
		rowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "irma",
			Subsystem: "transfer",
			Name:      "rows_written_total",
			Help:      "Rows inserted into PostgreSQL, by table.",
		}, []string{"table"}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "irma",
			Subsystem: "transfer",
			Name:      "batch_duration_seconds",
			Help:      "Time taken by one multi-row insert.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 3, 8),
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "irma",
			Subsystem: "transfer",
			Name:      "failures_total",
			Help:      "Dataset writes aborted, by stage.",
		}, []string{"stage"}),
		lastLoad: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "irma",
			Subsystem: "transfer",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last verified dataset write.",
		}),
	}

	collectors := []prometheus.Collector{m.rowsWritten, m.batchDuration, m.failures, m.lastLoad}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *TransferMetrics) observeBatch(table string, rows int64, d time.Duration) {
	if m == nil {
		return
	}
	m.rowsWritten.WithLabelValues(table).Add(float64(rows))
	m.batchDuration.Observe(d.Seconds())
}

func (m *TransferMetrics) observeFailure(stage string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(stage).Inc()
}

func (m *TransferMetrics) observeSuccess(at time.Time) {
	if m == nil {
		return
	}
	m.lastLoad.Set(float64(at.Unix()))
}

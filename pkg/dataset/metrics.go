package dataset

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/David-Botos/irma-ingress/pkg/model"
)

const metricsNamespace = "irma"

// LoadMetrics exposes dataset load and image decoding counters. A nil
// *LoadMetrics is valid and records nothing.
type LoadMetrics struct {
	recordsLoaded *prometheus.CounterVec
	labels        *prometheus.CounterVec
	loadFailures  *prometheus.CounterVec
	loadDuration  prometheus.Histogram
	images        *prometheus.CounterVec
}

// NewLoadMetrics creates the collectors and registers them with reg
func NewLoadMetrics(reg prometheus.Registerer) (*LoadMetrics, error) {
	m := &LoadMetrics{
		recordsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "records_loaded_total",
			Help:      "Dataset records decoded, by partition.",
		}, []string{"partition"}),
		labels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "records_by_label_total",
			Help:      "Dataset records by binary label (0 extremity, 1 central).",
		}, []string{"binary_label"}),
		loadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "load_failures_total",
			Help:      "Dataset loads aborted, by failing partition.",
		}, []string{"partition"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "load_duration_seconds",
			Help:      "Time taken to load and decode the whole dataset.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		images: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "images_total",
			Help:      "Images loaded, by outcome.",
		}, []string{"outcome"}),
	}

	collectors := []prometheus.Collector{m.recordsLoaded, m.labels, m.loadFailures, m.loadDuration, m.images}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *LoadMetrics) observeLoad(ds *model.Dataset, d time.Duration) {
	if m == nil {
		return
	}
	for _, p := range ds.Partitions {
		m.recordsLoaded.WithLabelValues(p.Name).Add(float64(p.Count))
	}
	for _, r := range ds.Records {
		m.labels.WithLabelValues(strconv.Itoa(r.BinaryLabel)).Inc()
	}
	m.loadDuration.Observe(d.Seconds())
}

func (m *LoadMetrics) observeFailure(partition string) {
	if m == nil {
		return
	}
	m.loadFailures.WithLabelValues(partition).Inc()
}

func (m *LoadMetrics) observeImage(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	switch {
	case err == nil:
	case isNotFound(err):
		outcome = "not_found"
	default:
		outcome = "decode_error"
	}
	m.images.WithLabelValues(outcome).Inc()
}

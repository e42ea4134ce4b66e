package measure

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMeasure exports edge metrics to a prometheus registerer. It keeps the in-memory
// totals as well so that AllMetrics stays usable for reporting.
type PrometheusMeasure struct {
	inner *DefaultMeasure

	pushes   *prometheus.CounterVec
	pops     *prometheus.CounterVec
	drops    *prometheus.CounterVec
	depth    *prometheus.GaugeVec
	capacity *prometheus.GaugeVec
	blocked  *prometheus.HistogramVec

	mu      sync.Mutex
	metrics map[string]Metric
}

// NewPrometheusMeasure creates the edge collectors under namespace and registers them with reg.
func NewPrometheusMeasure(reg prometheus.Registerer, namespace string) (*PrometheusMeasure, error) {
	pm := &PrometheusMeasure{
		inner:   NewDefaultMeasure(),
		metrics: make(map[string]Metric),
		pushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "edge",
			Name:      "pushed_total",
			Help:      "Total number of datums pushed to the edge",
		}, []string{"edge"}),
		pops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "edge",
			Name:      "popped_total",
			Help:      "Total number of datums removed from the edge",
		}, []string{"edge"}),
		drops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "edge",
			Name:      "dropped_total",
			Help:      "Total number of datums discarded because the edge was full",
		}, []string{"edge"}),
		depth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "edge",
			Name:      "depth",
			Help:      "Current number of datums queued on the edge",
		}, []string{"edge"}),
		capacity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "edge",
			Name:      "capacity",
			Help:      "Capacity of the edge, 0 when unbounded",
		}, []string{"edge"}),
		blocked: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "edge",
			Name:      "push_blocked_seconds",
			Help:      "Time a producer waited for space on a full edge",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"edge"}),
	}

	for _, c := range []prometheus.Collector{pm.pushes, pm.pops, pm.drops, pm.depth, pm.capacity, pm.blocked} {
		err := reg.Register(c)
		if err != nil {
			return nil, errors.Wrap(err, "unable to register edge collector")
		}
	}

	return pm, nil
}

func (pm *PrometheusMeasure) AddMetric(edgeName string, capacity int) Metric {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.capacity.WithLabelValues(edgeName).Set(float64(capacity))

	mt := &prometheusMetric{
		Metric:  pm.inner.AddMetric(edgeName, capacity),
		pushes:  pm.pushes.WithLabelValues(edgeName),
		pops:    pm.pops.WithLabelValues(edgeName),
		drops:   pm.drops.WithLabelValues(edgeName),
		depth:   pm.depth.WithLabelValues(edgeName),
		blocked: pm.blocked.WithLabelValues(edgeName),
	}
	pm.metrics[edgeName] = mt

	return mt
}

func (pm *PrometheusMeasure) AllMetrics() map[string]Metric {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	all := make(map[string]Metric, len(pm.metrics))
	for name, mt := range pm.metrics {
		all[name] = mt
	}

	return all
}

type prometheusMetric struct {
	Metric

	pushes  prometheus.Counter
	pops    prometheus.Counter
	drops   prometheus.Counter
	depth   prometheus.Gauge
	blocked prometheus.Observer
}

func (m *prometheusMetric) AddPush() {
	m.Metric.AddPush()
	m.pushes.Inc()
}

func (m *prometheusMetric) AddPop() {
	m.Metric.AddPop()
	m.pops.Inc()
}

func (m *prometheusMetric) AddDrop() {
	m.Metric.AddDrop()
	m.drops.Inc()
}

func (m *prometheusMetric) SetDepth(depth int) {
	m.Metric.SetDepth(depth)
	m.depth.Set(float64(depth))
}

func (m *prometheusMetric) AddBlockedDuration(elapsed time.Duration) {
	m.Metric.AddBlockedDuration(elapsed)
	m.blocked.Observe(elapsed.Seconds())
}

var (
	_ Measure = (*PrometheusMeasure)(nil)
	_ Metric  = (*prometheusMetric)(nil)
)

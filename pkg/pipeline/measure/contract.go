// Package measure records transport metrics for the edges of a pipeline.
package measure

import "time"

// Measure creates and keeps the metrics of every edge.
type Measure interface {
	AddMetric(edgeName string, capacity int) Metric
	AllMetrics() map[string]Metric
}

// Metric receives the transport events of one edge.
type Metric interface {
	AddPush()
	AddPop()
	AddDrop()
	SetDepth(depth int)
	AddBlockedDuration(elapsed time.Duration)
	AVGBlockedDuration() time.Duration
	Totals() Totals
}

// Totals is a snapshot of the counters of a metric.
type Totals struct {
	Pushed  int64
	Popped  int64
	Dropped int64
	Blocked int64
	Depth   int
}

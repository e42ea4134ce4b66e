package measure

import (
	"sync"
	"time"
)

type DefaultMetric struct {
	mu             *sync.Mutex
	totals         Totals
	blockedElapsed time.Duration
	capacity       int
}

func (mt *DefaultMetric) AddPush() {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.totals.Pushed++
}

func (mt *DefaultMetric) AddPop() {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.totals.Popped++
}

func (mt *DefaultMetric) AddDrop() {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.totals.Dropped++
}

func (mt *DefaultMetric) SetDepth(depth int) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.totals.Depth = depth
}

func (mt *DefaultMetric) AddBlockedDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.totals.Blocked++
	mt.blockedElapsed += elapsed
}

func (mt *DefaultMetric) AVGBlockedDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.totals.Blocked == 0 {
		return time.Duration(0)
	}

	return round(time.Duration(float64(mt.blockedElapsed) / float64(mt.totals.Blocked)))
}

func (mt *DefaultMetric) Totals() Totals {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.totals
}

// Capacity returns the capacity of the measured edge, 0 when unbounded.
func (mt *DefaultMetric) Capacity() int {
	return mt.capacity
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		d = d.Round(time.Hour)
	case d > time.Minute:
		d = d.Round(time.Minute)
	case d > time.Second:
		d = d.Round(time.Second)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond)
	}

	return d
}

var _ Metric = (*DefaultMetric)(nil)

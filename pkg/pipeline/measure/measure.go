package measure

import (
	"sync"
)

// DefaultMeasure keeps metrics in memory.
type DefaultMeasure struct {
	mu    sync.Mutex
	Edges map[string]Metric
}

func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		Edges: make(map[string]Metric),
	}
}

func (m *DefaultMeasure) AddMetric(name string, capacity int) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	mt := &DefaultMetric{
		mu:       &sync.Mutex{},
		capacity: capacity,
	}
	m.Edges[name] = mt

	return mt
}

func (m *DefaultMeasure) GetMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Edges[name]
}

func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make(map[string]Metric, len(m.Edges))
	for name, mt := range m.Edges {
		all[name] = mt
	}

	return all
}

var _ Measure = (*DefaultMeasure)(nil)

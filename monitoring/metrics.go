package monitoring

import (
	"sync"
	"time"
)

// Metrics counts scoring traffic per risk tier.
type Metrics struct {
	mu       sync.Mutex
	total    int64
	failures int64
	byLevel  map[string]int64
	started  time.Time
}

type MetricsSnapshot struct {
	Total         int64            `json:"total"`
	Failures      int64            `json:"failures"`
	ByLevel       map[string]int64 `json:"by_level"`
	UptimeSeconds float64          `json:"uptime_seconds"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		byLevel: make(map[string]int64),
		started: time.Now(),
	}
}

func (m *Metrics) RecordAssessment(level string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total++
	m.byLevel[level]++
}

func (m *Metrics) RecordFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total++
	m.failures++
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	byLevel := make(map[string]int64, len(m.byLevel))
	for level, count := range m.byLevel {
		byLevel[level] = count
	}
	return MetricsSnapshot{
		Total:         m.total,
		Failures:      m.failures,
		ByLevel:       byLevel,
		UptimeSeconds: time.Since(m.started).Seconds(),
	}
}

package gate

import "sync"

// Metrics tracks gate evaluation counts across runs. Safe for concurrent use.
type Metrics struct {
	mu              sync.RWMutex
	evaluationCount int64
	passCount       int64
	failCount       int64
	totalDurationMs int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// Record registers one gate evaluation.
func (m *Metrics) Record(passed bool, durationMs int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evaluationCount++
	m.totalDurationMs += durationMs
	if passed {
		m.passCount++
	} else {
		m.failCount++
	}
}

// Stats returns evaluation totals and the average evaluation time.
func (m *Metrics) Stats() (evaluations, passes, failures, avgDurationMs int64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	evaluations = m.evaluationCount
	passes = m.passCount
	failures = m.failCount
	if m.evaluationCount > 0 {
		avgDurationMs = m.totalDurationMs / m.evaluationCount
	}
	return
}

package dispatcher

import (
	"sort"
	"sync"
	"time"
)

// Metrics collects dispatch statistics.
type Metrics struct {
	mu sync.RWMutex

	actionMetrics map[string]*ActionMetrics

	totalDispatches uint64
	totalErrors     uint64
	totalPanics     uint64
	totalDuration   time.Duration
}

// ActionMetrics holds metrics for a specific action.
type ActionMetrics struct {
	Name          string
	DispatchCount uint64
	ErrorCount    uint64
	TotalDuration time.Duration
	MinDuration   time.Duration
	MaxDuration   time.Duration
	LastStatus    Status
	LastDispatch  time.Time
}

// AverageDuration returns the action's average dispatch duration.
func (am *ActionMetrics) AverageDuration() time.Duration {
	if am.DispatchCount == 0 {
		return 0
	}
	return am.TotalDuration / time.Duration(am.DispatchCount)
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		actionMetrics: make(map[string]*ActionMetrics),
	}
}

// RecordDispatch records a dispatch event.
func (m *Metrics) RecordDispatch(actionName string, duration time.Duration, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalDispatches++
	m.totalDuration += duration
	if status == StatusError {
		m.totalErrors++
	}

	am := m.actionMetrics[actionName]
	if am == nil {
		am = &ActionMetrics{
			Name:        actionName,
			MinDuration: duration,
			MaxDuration: duration,
		}
		m.actionMetrics[actionName] = am
	}

	am.DispatchCount++
	am.TotalDuration += duration
	am.LastStatus = status
	am.LastDispatch = time.Now()
	if duration < am.MinDuration {
		am.MinDuration = duration
	}
	if duration > am.MaxDuration {
		am.MaxDuration = duration
	}
	if status == StatusError {
		am.ErrorCount++
	}
}

// RecordPanic records a recovered handler panic.
func (m *Metrics) RecordPanic(actionName string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalPanics++
	if am := m.actionMetrics[actionName]; am != nil {
		am.ErrorCount++
	}
}

// TotalDispatches returns the total number of dispatches.
func (m *Metrics) TotalDispatches() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalDispatches
}

// TotalErrors returns the total number of error results.
func (m *Metrics) TotalErrors() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalErrors
}

// TotalPanics returns the total number of panics recovered.
func (m *Metrics) TotalPanics() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalPanics
}

// AverageDuration returns the average dispatch duration.
func (m *Metrics) AverageDuration() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.totalDispatches == 0 {
		return 0
	}
	return m.totalDuration / time.Duration(m.totalDispatches)
}

// ActionStats returns a copy of the metrics for a specific action, or
// nil when the action has never been dispatched.
func (m *Metrics) ActionStats(actionName string) *ActionMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	am := m.actionMetrics[actionName]
	if am == nil {
		return nil
	}
	c := *am
	return &c
}

// TopActions returns the n most dispatched actions, busiest first.
func (m *Metrics) TopActions(n int) []*ActionMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	actions := make([]*ActionMetrics, 0, len(m.actionMetrics))
	for _, am := range m.actionMetrics {
		c := *am
		actions = append(actions, &c)
	}
	sort.Slice(actions, func(i, j int) bool {
		return actions[i].DispatchCount > actions[j].DispatchCount
	})
	if n > len(actions) {
		n = len(actions)
	}
	return actions[:n]
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.actionMetrics = make(map[string]*ActionMetrics)
	m.totalDispatches = 0
	m.totalErrors = 0
	m.totalPanics = 0
	m.totalDuration = 0
}

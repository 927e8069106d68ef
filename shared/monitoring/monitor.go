package monitoring

import (
	"fmt"
	"sync"
	"time"

	"video-insights/shared/logging"
)

// Monitor tracks the outcome of the most recent scheduled run
type Monitor struct {
	mu             sync.RWMutex
	lastRunSuccess bool
	lastRunTime    time.Time
	lastSummary    string
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) RecordSuccess(summary string, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = true
	m.lastRunTime = time.Now()
	m.lastSummary = summary
	m.mu.Unlock()

	runDuration.WithLabelValues("success").Observe(duration.Seconds())
	logging.Component("monitor").Info().
		Str("summary", summary).
		Dur("duration", duration).
		Msg("✅ Run completed successfully")
}

// RecordPartialFailure logs a degraded run without changing health status
func (m *Monitor) RecordPartialFailure(err error, duration time.Duration) {
	runDuration.WithLabelValues("partial").Observe(duration.Seconds())
	logging.Component("monitor").Warn().
		Err(err).
		Dur("duration", duration).
		Msg("⚠️  PARTIAL FAILURE")
}

func (m *Monitor) RecordCriticalFailure(err error, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = false
	m.lastRunTime = time.Now()
	m.lastSummary = err.Error()
	m.mu.Unlock()

	runDuration.WithLabelValues("critical").Observe(duration.Seconds())
	logging.Component("monitor").Error().
		Err(err).
		Dur("duration", duration).
		Msg("🚨 CRITICAL FAILURE")
}

func (m *Monitor) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRunTime.IsZero() {
		return true // No runs yet
	}
	return m.lastRunSuccess
}

func (m *Monitor) GetStatusSummary() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRunTime.IsZero() {
		return "No runs yet"
	}

	if m.lastRunSuccess {
		return fmt.Sprintf("✅ Last run: %s (%s)", m.lastRunTime.Format("Jan 2 15:04"), m.lastSummary)
	}
	return fmt.Sprintf("❌ Last run failed: %s (%s)", m.lastRunTime.Format("Jan 2 15:04"), m.lastSummary)
}

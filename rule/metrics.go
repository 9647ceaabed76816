package rule

import (
	"sync"

	"go.uber.org/atomic"
)

// MetricsSink is the external collaborator C7/C8 increment counters on.
// Inc never raises.
type MetricsSink interface {
	Inc(id, counter string)
}

// The three counters the core ever increments.
const (
	CounterRulesMatched   = "rules.matched"
	CounterActionsSuccess = "actions.success"
	CounterActionsFailure = "actions.failure"
)

// AtomicMetrics is the default MetricsSink: per-key counters built on
// go.uber.org/atomic, the counter package already pulled in (indirectly,
// via Viper) by solatis-trapperkeeper's configuration stack. The map from
// key to counter is guarded by a mutex, taken on every Inc and Value.
type AtomicMetrics struct {
	mu       sync.Mutex
	counters map[string]*atomic.Int64
}

// NewAtomicMetrics builds an empty AtomicMetrics.
func NewAtomicMetrics() *AtomicMetrics {
	return &AtomicMetrics{counters: make(map[string]*atomic.Int64)}
}

// Inc implements MetricsSink.
func (m *AtomicMetrics) Inc(id, counter string) {
	m.counter(id, counter).Inc()
}

// Value returns the current count for (id, counter), for tests and
// observability dashboards. Unknown keys read as zero.
func (m *AtomicMetrics) Value(id, counter string) int64 {
	return m.counter(id, counter).Load()
}

func (m *AtomicMetrics) counter(id, counter string) *atomic.Int64 {
	key := id + "\x00" + counter
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.counters[key]
	if !ok {
		c = atomic.NewInt64(0)
		m.counters[key] = c
	}
	return c
}

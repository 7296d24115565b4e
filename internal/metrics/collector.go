// Package metrics provides an in-memory, fire-and-forget metrics sink.
package metrics

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"
)

// Counter names used across the routing core.
const (
	CounterRouted             = "messages_routed"
	CounterEscalated          = "messages_escalated"
	CounterFallbackUsed       = "fallback_used"
	CounterPrimaryTimeout     = "primary_timeout"
	CounterHandoverInitiated  = "handover_initiated"
	CounterHandoverCompleted  = "handover_completed"
	CounterHandoverFailed     = "handover_failed"
	CounterRetrievalFetchFail = "retrieval_fetch_failed"
)

// Timed operation names.
const (
	OpRetrieve = "retrieve"
	OpAnalyze  = "analyze"
	OpGenerate = "generate"
)

// OperationMetrics holds aggregated timings for one operation type.
type OperationMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// OperationSnapshot provides computed stats from raw timings.
type OperationSnapshot struct {
	Count       int64   `json:"count"`
	TotalTimeMs int64   `json:"total_time_ms"`
	AvgTimeMs   float64 `json:"avg_time_ms"`
	MinTimeMs   int64   `json:"min_time_ms"`
	MaxTimeMs   int64   `json:"max_time_ms"`
}

// Snapshot is a point-in-time view of all counters and timings.
type Snapshot struct {
	UptimeSeconds float64                       `json:"uptime_seconds"`
	Counters      map[string]int64              `json:"counters"`
	Operations    map[string]*OperationSnapshot `json:"operations"`
}

// Collector aggregates counters and timings in memory. All methods are
// thread-safe and never block on anything external or return an error,
// so callers can treat every call as fire-and-forget.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	counters  map[string]int64
	ops       map[string]*OperationMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		counters:  make(map[string]int64),
		ops:       make(map[string]*OperationMetrics),
	}
}

// counterKey folds labels into a stable counter key: name{k=v,k=v}.
func counterKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
	}
	b.WriteByte('}')
	return b.String()
}

// Increment bumps a labeled counter.
func (c *Collector) Increment(name string, labels map[string]string) {
	key := counterKey(name, labels)
	c.mu.Lock()
	c.counters[key]++
	c.mu.Unlock()
}

// RecordTiming records the duration of one operation.
func (c *Collector) RecordTiming(op string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}
	m.Count++
	m.TotalTime += duration
	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// Count returns the current value of a labeled counter.
func (c *Collector) Count(name string, labels map[string]string) int64 {
	key := counterKey(name, labels)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counters[key]
}

// Snapshot returns a point-in-time copy of all metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	counters := make(map[string]int64, len(c.counters))
	for k, v := range c.counters {
		counters[k] = v
	}

	ops := make(map[string]*OperationSnapshot, len(c.ops))
	for name, m := range c.ops {
		if m.Count == 0 {
			continue
		}
		ops[name] = &OperationSnapshot{
			Count:       m.Count,
			TotalTimeMs: m.TotalTime.Milliseconds(),
			AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
			MinTimeMs:   m.MinTime.Milliseconds(),
			MaxTimeMs:   m.MaxTime.Milliseconds(),
		}
	}

	return Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		Counters:      counters,
		Operations:    ops,
	}
}

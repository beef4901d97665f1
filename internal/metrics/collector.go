// Package metrics provides in-memory request statistics collection.
package metrics

import (
	"math"
	"sync"
	"time"
)

// RequestMetrics holds aggregated timings for one endpoint.
type RequestMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// RequestSnapshot provides computed stats from raw metrics.
type RequestSnapshot struct {
	Count       int64
	TotalTimeMs int64
	AvgTimeMs   float64
	MinTimeMs   int64
	MaxTimeMs   int64
}

// Snapshot represents the full client statistics at a point in time,
// keyed by "METHOD /path" with numeric segments normalized.
type Snapshot struct {
	UptimeSeconds float64
	Requests      map[string]RequestSnapshot
}

// Collector aggregates in-memory request statistics.
// All methods are thread-safe.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	requests  map[string]*RequestMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		requests:  make(map[string]*RequestMetrics),
	}
}

// Record adds one request timing for an endpoint.
func (c *Collector) Record(endpoint string, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.requests[endpoint]
	if !ok {
		m = &RequestMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.requests[endpoint] = m
	}
	m.Count++
	m.TotalTime += d
	if d < m.MinTime {
		m.MinTime = d
	}
	if d > m.MaxTime {
		m.MaxTime = d
	}
}

// Snapshot returns the current statistics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		Requests:      make(map[string]RequestSnapshot, len(c.requests)),
	}
	for endpoint, m := range c.requests {
		if m.Count == 0 {
			continue
		}
		snap.Requests[endpoint] = RequestSnapshot{
			Count:       m.Count,
			TotalTimeMs: m.TotalTime.Milliseconds(),
			AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
			MinTimeMs:   m.MinTime.Milliseconds(),
			MaxTimeMs:   m.MaxTime.Milliseconds(),
		}
	}
	return snap
}

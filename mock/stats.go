// Package mock holds test doubles for the wdk interfaces.
package mock

import (
	"fmt"
	"sync"
	"time"
)

// RecordingStatter is used for testing. It is safe for use by concurrent
// ingest workers.
type RecordingStatter struct {
	mu      sync.Mutex
	Counts  map[string]int64
	Timings map[string]int
}

// Count implements Count.
func (r *RecordingStatter) Count(name string, value int64, rate float64, tags ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Counts == nil {
		r.Counts = make(map[string]int64)
	}
	r.Counts[name] += value
}

// Gauge implements Gauge.
func (r *RecordingStatter) Gauge(name string, value float64, rate float64, tags ...string) {}

// Histogram implements Histogram.
func (r *RecordingStatter) Histogram(name string, value float64, rate float64, tags ...string) {}

// Set implements Set.
func (r *RecordingStatter) Set(name string, value string, rate float64, tags ...string) {}

// Timing records how many timings were reported under name.
func (r *RecordingStatter) Timing(name string, value time.Duration, rate float64, tags ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Timings == nil {
		r.Timings = make(map[string]int)
	}
	r.Timings[name]++
}

// RecordingLogger keeps every message for inspection by tests.
type RecordingLogger struct {
	mu     sync.Mutex
	Lines  []string
	Debugs []string
}

// Printf implements Logger.
func (l *RecordingLogger) Printf(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Lines = append(l.Lines, fmt.Sprintf(format, v...))
}

// Debugf implements Logger.
func (l *RecordingLogger) Debugf(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, fmt.Sprintf(format, v...))
}

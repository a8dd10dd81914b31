// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

// Package termstat provides a wdk.Statter which periodically prints the
// counters and timings of a running job on one terminal line. It stands in
// for a real metrics collector during crawls run by hand.
package termstat

import (
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/webdata/wdk"
)

var _ wdk.Statter = &Collector{}

type timing struct {
	n     int64
	total time.Duration
}

// Collector accumulates counts and timings and prints them to out.
type Collector struct {
	lock    sync.Mutex
	counts  map[string]int64
	timings map[string]*timing
	changed bool
	out     io.Writer

	done chan struct{}
	once sync.Once
}

// NewCollector returns a Collector printing to out every interval. A zero
// interval disables periodic printing; Flush can still be called.
func NewCollector(out io.Writer, interval time.Duration) *Collector {
	c := &Collector{
		counts:  make(map[string]int64),
		timings: make(map[string]*timing),
		out:     out,
		done:    make(chan struct{}),
	}
	if interval > 0 {
		go func() {
			tick := time.NewTicker(interval)
			defer tick.Stop()
			for {
				select {
				case <-tick.C:
					c.write("\r")
				case <-c.done:
					return
				}
			}
		}()
	}
	return c
}

// Count adds value to the named counter at the specified sample rate.
func (c *Collector) Count(name string, value int64, rate float64, tags ...string) {
	if rate < 1 && rand.Float64() > rate {
		return
	}
	c.lock.Lock()
	c.counts[name] += value
	c.changed = true
	c.lock.Unlock()
}

// Timing adds value to the named timing, which is printed as an average.
func (c *Collector) Timing(name string, value time.Duration, rate float64, tags ...string) {
	c.lock.Lock()
	tm, ok := c.timings[name]
	if !ok {
		tm = &timing{}
		c.timings[name] = tm
	}
	tm.n++
	tm.total += value
	c.changed = true
	c.lock.Unlock()
}

// Gauge does nothing.
func (c *Collector) Gauge(name string, value float64, rate float64, tags ...string) {}

// Histogram does nothing.
func (c *Collector) Histogram(name string, value float64, rate float64, tags ...string) {}

// Set does nothing.
func (c *Collector) Set(name string, value string, rate float64, tags ...string) {}

// Counts returns a copy of the current counters.
func (c *Collector) Counts() map[string]int64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	ret := make(map[string]int64, len(c.counts))
	for k, v := range c.counts {
		ret[k] = v
	}
	return ret
}

// Flush prints the current stats on their own line.
func (c *Collector) Flush() {
	c.lock.Lock()
	c.changed = true
	c.lock.Unlock()
	c.write("\n")
}

// Close stops periodic printing and flushes.
func (c *Collector) Close() error {
	c.once.Do(func() { close(c.done) })
	c.Flush()
	return nil
}

func (c *Collector) line() string {
	names := make([]string, 0, len(c.counts)+len(c.timings))
	for name := range c.counts {
		names = append(names, name)
	}
	for name := range c.timings {
		if _, ok := c.counts[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	sb := strings.Builder{}
	for _, name := range names {
		if v, ok := c.counts[name]; ok {
			fmt.Fprintf(&sb, "%s: %d ", name, v)
		}
		if tm, ok := c.timings[name]; ok {
			fmt.Fprintf(&sb, "%s: %d avg %v ", name, tm.n, tm.total/time.Duration(tm.n))
		}
	}
	return strings.TrimSuffix(sb.String(), " ")
}

func (c *Collector) write(end string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if !c.changed {
		return
	}
	c.changed = false
	if end == "\r" {
		fmt.Fprint(c.out, "\r"+c.line())
		return
	}
	fmt.Fprintln(c.out, c.line())
}

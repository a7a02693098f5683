// Package termstat provides a stats implementation which periodically
// prints the ingest counters (records, indexed, skipped, errors, ...) to
// the given writer. It is meant for watching a batch run at the terminal
// in lieu of a real collector.
package termstat

import (
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Collector collects counters and prints them to the terminal.
type Collector struct {
	lock    sync.Mutex
	indexes map[string]int
	names   []string
	counts  []int64
	timings map[string]time.Duration
	changed bool
	out     io.Writer
	done    chan struct{}
}

// NewCollector returns a Collector writing to out every couple of seconds
// while counters keep changing.
func NewCollector(out io.Writer) *Collector {
	c := &Collector{
		indexes: make(map[string]int),
		timings: make(map[string]time.Duration),
		out:     out,
		done:    make(chan struct{}),
	}
	go func() {
		tick := time.NewTicker(time.Second * 2)
		defer tick.Stop()
		for {
			select {
			case <-tick.C:
				c.write()
			case <-c.done:
				c.write()
				return
			}
		}
	}()
	return c
}

// Count adds value to the named counter at the specified rate.
func (c *Collector) Count(name string, value int64, rate float64, tags ...string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.changed = true

	idx, ok := c.indexes[name]
	if !ok {
		idx = len(c.counts)
		c.counts = append(c.counts, 0)
		c.names = append(c.names, name)
		c.indexes[name] = idx
	}
	if rate < 1 && rand.Float64() > rate {
		return
	}
	c.counts[idx] += value
}

// Timing keeps a running total per name.
func (c *Collector) Timing(name string, value time.Duration, rate float64, tags ...string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.changed = true
	c.timings[name] += value
}

// Stop flushes one final line and stops the background writer.
func (c *Collector) Stop() {
	close(c.done)
}

func (c *Collector) write() {
	sb := strings.Builder{}
	c.lock.Lock()
	if !c.changed {
		c.lock.Unlock()
		return
	}
	for i := 0; i < len(c.counts); i++ {
		_, _ = sb.WriteString(fmt.Sprintf("%s: %d ", c.names[i], c.counts[i]))
	}
	for name, total := range c.timings {
		_, _ = sb.WriteString(fmt.Sprintf("%s: %v ", name, total))
	}
	c.changed = false
	fmt.Fprintf(c.out, "\r"+sb.String())
	c.lock.Unlock()
}

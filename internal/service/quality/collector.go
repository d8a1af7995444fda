package quality

import (
	"sync"
	"time"

	applogger "VoltWatch/pkg/logger"
)

// Collector aggregates skipped-record counts so a noisy producer does
// not emit one log line per malformed row. Counts are flushed as a
// single summary on a ticker and at Close.
type Collector struct {
	flushInterval time.Duration
	l             *applogger.Logger

	mutex  sync.Mutex
	counts map[skipKey]int

	done chan struct{}
	wg   sync.WaitGroup
}

type skipKey struct {
	collection string
	reason     string
}

func NewCollector(flushInterval time.Duration, l *applogger.Logger) *Collector {
	c := &Collector{
		flushInterval: flushInterval,
		l:             l,
		counts:        make(map[skipKey]int),
		done:          make(chan struct{}),
	}

	c.wg.Add(1)
	go c.periodicFlush()

	return c
}

// RecordSkip counts one dropped record.
func (c *Collector) RecordSkip(collection, reason string) {
	c.mutex.Lock()
	c.counts[skipKey{collection: collection, reason: reason}]++
	c.mutex.Unlock()
}

// Totals returns a snapshot of accumulated counts since the last flush,
// keyed by "collection/reason".
func (c *Collector) Totals() map[string]int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	out := make(map[string]int, len(c.counts))
	for k, n := range c.counts {
		out[k.collection+"/"+k.reason] = n
	}
	return out
}

func (c *Collector) periodicFlush() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.flush()
		case <-c.done:
			// Final flush before shutdown
			c.flush()
			return
		}
	}
}

func (c *Collector) flush() {
	c.mutex.Lock()
	if len(c.counts) == 0 {
		c.mutex.Unlock()
		return
	}
	counts := c.counts
	c.counts = make(map[skipKey]int)
	c.mutex.Unlock()

	if c.l == nil {
		return
	}
	for k, n := range counts {
		c.l.Warn("malformed records skipped",
			applogger.String("collection", k.collection),
			applogger.String("reason", k.reason),
			applogger.Int("count", n),
		)
	}
}

// Close flushes remaining counts and stops the ticker.
func (c *Collector) Close() {
	close(c.done)
	c.wg.Wait()
}

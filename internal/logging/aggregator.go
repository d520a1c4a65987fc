package logging

import (
	"log/slog"
	"sync"
	"time"
)

// aggKey identifies one event stream for batching.
type aggKey struct {
	component string
	event     string
}

// aggCounter tracks a batched event's count and last-seen fields.
type aggCounter struct {
	count  int64
	fields []slog.Attr
}

// Aggregator batches high-frequency events and emits periodic summaries.
// The clipboard daemon records one event per poll tick and the apps daemon
// one per filesystem notification; without batching those would dominate
// the log file.
type Aggregator struct {
	logger   *slog.Logger
	interval time.Duration

	mu       sync.Mutex
	counters map[aggKey]*aggCounter

	done chan struct{}
	wg   sync.WaitGroup
}

// NewAggregator creates an aggregator that flushes every intervalSecs
// seconds. If logger is nil, recorded events are silently dropped.
func NewAggregator(logger *slog.Logger, intervalSecs int) *Aggregator {
	if intervalSecs <= 0 {
		intervalSecs = 30
	}
	return &Aggregator{
		logger:   logger,
		interval: time.Duration(intervalSecs) * time.Second,
		counters: make(map[aggKey]*aggCounter),
		done:     make(chan struct{}),
	}
}

// Start begins the background flush goroutine.
func (a *Aggregator) Start() {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				a.flush()
			case <-a.done:
				return
			}
		}
	}()
}

// Stop halts the background goroutine and flushes remaining entries.
func (a *Aggregator) Stop() {
	close(a.done)
	a.wg.Wait()
	a.flush()
}

// Record increments the counter for an event stream. Fields are kept from
// the most recent call.
func (a *Aggregator) Record(component, event string, fields ...slog.Attr) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := aggKey{component: component, event: event}
	c, ok := a.counters[key]
	if !ok {
		c = &aggCounter{}
		a.counters[key] = c
	}
	c.count++
	if len(fields) > 0 {
		c.fields = fields
	}
}

func (a *Aggregator) flush() {
	a.mu.Lock()
	if len(a.counters) == 0 {
		a.mu.Unlock()
		return
	}
	counters := a.counters
	a.counters = make(map[aggKey]*aggCounter)
	a.mu.Unlock()

	if a.logger == nil {
		return
	}

	for key, c := range counters {
		attrs := []any{
			slog.String("component", key.component),
			slog.String("event", key.event),
			slog.Int64("count", c.count),
			slog.Int("window_seconds", int(a.interval.Seconds())),
		}
		for _, f := range c.fields {
			attrs = append(attrs, f)
		}
		a.logger.Info("event_summary", attrs...)
	}
}

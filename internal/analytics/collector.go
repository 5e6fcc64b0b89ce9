// Package analytics records served searches: counts and latency percentiles
// in process, and the raw events on a Kafka topic when one is configured.
package analytics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/logger"
)

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// Collector takes events off the request path. Aggregation happens inline;
// publishing goes through a buffered channel drained by one goroutine, and
// events are dropped when the buffer is full.
type Collector struct {
	publisher  Publisher
	aggregator *Aggregator
	eventCh    chan SearchEvent
	logger     *slog.Logger
	done       chan struct{}

	// mu guards closed and the send side of eventCh.
	mu     sync.RWMutex
	closed bool
}

// NewCollector builds a collector. publisher and aggregator may each be nil.
func NewCollector(publisher Publisher, aggregator *Aggregator, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		publisher:  publisher,
		aggregator: aggregator,
		eventCh:    make(chan SearchEvent, bufferSize),
		logger:     logger.WithComponent("analytics-collector"),
		done:       make(chan struct{}),
	}
}

func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.publish(ctx, event)
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh), "publishing", c.publisher != nil)
}

func (c *Collector) Track(event SearchEvent) {
	if c.aggregator != nil {
		c.aggregator.Record(event)
	}
	if c.publisher == nil {
		return
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		c.logger.Debug("analytics event after close not published", "type", event.Type)
		return
	}
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

// Close stops accepting events and waits for queued ones to be published.
// Start must have been called. Track remains safe to call afterwards, and
// only aggregates. Close is idempotent.
func (c *Collector) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		<-c.done
		return
	}
	c.closed = true
	close(c.eventCh)
	c.mu.Unlock()
	<-c.done
}

func (c *Collector) publish(ctx context.Context, event SearchEvent) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx, kafka.Event{Key: event.Mode, Value: event}); err != nil {
		c.logger.Error("failed to publish analytics event", "error", err)
	}
}

func (c *Collector) drainRemaining() {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.publish(context.Background(), event)
		default:
			return
		}
	}
}

package stats

import (
	"sync"
	"time"

	"taboo.local/internal/platform/metrics"
)

// ClickEvent is one followed share link.
type ClickEvent struct {
	ContentID string    `json:"content_id"`
	Code      string    `json:"code"`
	ClickedAt time.Time `json:"clicked_at"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Referer   string    `json:"referer"`
}

// Collector takes click events off the request path. Collect must never block.
type Collector interface {
	Collect(event ClickEvent)
	Close()
}

// ChannelCollector buffers events in process for Consumer. Events are dropped when the
// buffer is full or the collector is closed.
type ChannelCollector struct {
	mu     sync.RWMutex
	ch     chan ClickEvent
	closed bool
}

func NewChannelCollector(bufferSize int) *ChannelCollector {
	return &ChannelCollector{
		ch: make(chan ClickEvent, bufferSize),
	}
}

func (c *ChannelCollector) Collect(event ClickEvent) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		metrics.ClickEventsDropped.Inc()
		return
	}
	select {
	case c.ch <- event:
	default:
		metrics.ClickEventsDropped.Inc()
	}
}

func (c *ChannelCollector) Events() <-chan ClickEvent {
	return c.ch
}

// Close stops accepting events; buffered ones stay readable from Events.
func (c *ChannelCollector) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}

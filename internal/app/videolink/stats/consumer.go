package stats

import (
	"context"
	"log/slog"
	"time"
)

// Consumer drains a ChannelCollector into a Sink in batches.
type Consumer struct {
	sink      Sink
	collector *ChannelCollector
	batchSize int
	interval  time.Duration
}

func NewConsumer(sink Sink, collector *ChannelCollector) *Consumer {
	return &Consumer{
		sink:      sink,
		collector: collector,
		batchSize: defaultBatchSize,
		interval:  defaultInterval,
	}
}

// Run blocks until ctx ends or the collector is closed, then flushes what is pending.
func (c *Consumer) Run(ctx context.Context) {
	runBatches(ctx, c.collector.Events(), c.batchSize, c.interval, c.flush)
}

func (c *Consumer) flush(batch []ClickEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.sink.WriteClicks(ctx, batch); err != nil {
		slog.Error("click stats: flush failed", "err", err, "dropped", len(batch))
	}
}

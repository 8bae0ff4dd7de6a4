package stats

import (
	"context"
	"time"
)

const (
	defaultBatchSize = 100
	defaultInterval  = time.Second
)

// runBatches groups events into batches of up to size, flushing early every interval.
// The pending batch is flushed when events closes or ctx ends.
func runBatches(ctx context.Context, events <-chan ClickEvent, size int, interval time.Duration, flush func([]ClickEvent)) {
	batch := make([]ClickEvent, 0, size)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	emit := func() {
		if len(batch) == 0 {
			return
		}
		flush(batch)
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			// drain what is already buffered without waiting for more
			for {
				select {
				case event, ok := <-events:
					if !ok {
						emit()
						return
					}
					batch = append(batch, event)
					if len(batch) >= size {
						emit()
					}
				default:
					emit()
					return
				}
			}
		case event, ok := <-events:
			if !ok {
				emit()
				return
			}
			batch = append(batch, event)
			if len(batch) >= size {
				emit()
			}
		case <-ticker.C:
			emit()
		}
	}
}

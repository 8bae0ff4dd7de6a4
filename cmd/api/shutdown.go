package main

import (
	"time"

	"taboo.local/internal/app/videolink/stats"
)

// closeAndDrain runs once the public server has drained: no handler can collect anymore, so
// closing the collector lets the consumer flush what is buffered and return. It reports
// whether done closed within timeout.
func closeAndDrain(collector stats.Collector, done <-chan struct{}, timeout time.Duration) bool {
	if collector != nil {
		collector.Close()
	}
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

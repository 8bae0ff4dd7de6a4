package stats

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"taboo.local/internal/platform/metrics"
)

// KafkaCollector publishes click events so any instance's KafkaConsumer can persist them.
type KafkaCollector struct {
	writer *kafka.Writer
}

func NewKafkaCollector(brokers []string, topic string) *KafkaCollector {
	return &KafkaCollector{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
			Async:    true,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					metrics.ClickEventsDropped.Add(float64(len(messages)))
					slog.Error("kafka write failed", "err", err, "count", len(messages))
				}
			},
		},
	}
}

// Collect keys messages by content id so clicks on one video stay ordered in a partition.
func (k *KafkaCollector) Collect(event ClickEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		metrics.ClickEventsDropped.Inc()
		return
	}
	if err := k.writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(event.ContentID),
		Value: data,
	}); err != nil {
		metrics.ClickEventsDropped.Inc()
		slog.Error("kafka enqueue failed", "err", err)
	}
}

func (k *KafkaCollector) Close() {
	if err := k.writer.Close(); err != nil {
		slog.Error("kafka writer close failed", "err", err)
	}
}

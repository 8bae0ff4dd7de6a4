package stats

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const consumerGroup = "videolink-click-stats"

// messageReader is the part of *kafka.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer persists click events from Kafka. Offsets are committed only after the batch
// holding them was written, so a crash replays rather than loses clicks.
type KafkaConsumer struct {
	reader    messageReader
	sink      Sink
	batchSize int
	interval  time.Duration
}

func NewKafkaConsumer(brokers []string, topic string, sink Sink) *KafkaConsumer {
	return newKafkaConsumer(kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  consumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
	}), sink)
}

func newKafkaConsumer(reader messageReader, sink Sink) *KafkaConsumer {
	return &KafkaConsumer{
		reader:    reader,
		sink:      sink,
		batchSize: defaultBatchSize,
		interval:  defaultInterval,
	}
}

type fetched struct {
	event ClickEvent
	msg   kafka.Message
}

func (k *KafkaConsumer) Run(ctx context.Context) {
	msgCh := make(chan fetched, k.batchSize)
	go k.fetch(ctx, msgCh)

	batch := make([]fetched, 0, k.batchSize)
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	emit := func() {
		if len(batch) == 0 {
			return
		}
		k.flush(batch)
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			emit()
			return
		case f, ok := <-msgCh:
			if !ok {
				emit()
				return
			}
			batch = append(batch, f)
			if len(batch) >= k.batchSize {
				emit()
			}
		case <-ticker.C:
			emit()
		}
	}
}

func (k *KafkaConsumer) fetch(ctx context.Context, out chan<- fetched) {
	defer close(out)
	for {
		msg, err := k.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			slog.Error("kafka fetch failed", "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		var event ClickEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil || event.ContentID == "" {
			slog.Error("kafka click event undecodable", "err", err, "offset", msg.Offset)
			// poison messages are committed immediately so they are not redelivered forever
			if err := k.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
				slog.Error("kafka commit failed", "err", err)
			}
			continue
		}

		select {
		case out <- fetched{event: event, msg: msg}:
		case <-ctx.Done():
			return
		}
	}
}

func (k *KafkaConsumer) flush(batch []fetched) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events := make([]ClickEvent, len(batch))
	msgs := make([]kafka.Message, len(batch))
	for i, f := range batch {
		events[i] = f.event
		msgs[i] = f.msg
	}

	if err := k.sink.WriteClicks(ctx, events); err != nil {
		// left uncommitted; the group redelivers after a rebalance or restart
		slog.Error("kafka consumer: flush failed", "err", err, "count", len(batch))
		return
	}
	if err := k.reader.CommitMessages(ctx, msgs...); err != nil {
		slog.Error("kafka consumer: commit failed", "err", err)
	}
}

func (k *KafkaConsumer) Close() {
	if err := k.reader.Close(); err != nil {
		slog.Error("kafka reader close failed", "err", err)
	}
}
